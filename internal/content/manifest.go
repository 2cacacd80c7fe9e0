package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Manifest is a deterministic description of a corpus. Two corpora with the same sources
// and contents have the same Hash.
type Manifest struct {
	Files []ManifestEntry `json:"files"`
	Hash  string          `json:"hash"`
}

// ManifestEntry describes one source file.
type ManifestEntry struct {
	Path        string `json:"path"`
	Kind        string `json:"kind"`
	URL         string `json:"url,omitempty"`
	ContentHash string `json:"content_hash"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

const emptyManifestSeed = "empty-docs-set"

// Manifest hashes every page and asset of the corpus.
func (c *Corpus) Manifest() (*Manifest, error) {
	entries := make([]ManifestEntry, 0, len(c.Pages)+len(c.Assets))
	for _, p := range c.Pages {
		entries = append(entries, ManifestEntry{
			Path:        p.Src,
			Kind:        "page",
			URL:         p.URL,
			ContentHash: sum(p.Raw),
			Fingerprint: p.Fingerprint,
		})
	}
	for _, a := range c.Assets {
		data, err := os.ReadFile(a.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("hash asset %s: %w", a.Src, err)
		}
		entries = append(entries, ManifestEntry{Path: a.Src, Kind: "asset", ContentHash: sum(data)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return &Manifest{Files: entries, Hash: hashEntries(entries)}, nil
}

func hashEntries(entries []ManifestEntry) string {
	if len(entries) == 0 {
		h := sha256.Sum256([]byte(emptyManifestSeed))
		return hex.EncodeToString(h[:])
	}
	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s|%s|%s|%s\n", e.Path, e.Kind, e.URL, e.ContentHash)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// ToJSON serializes the manifest to indented JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Lookup finds an entry by source path.
func (m *Manifest) Lookup(p string) (ManifestEntry, bool) {
	i := sort.Search(len(m.Files), func(i int) bool { return m.Files[i].Path >= p })
	if i < len(m.Files) && m.Files[i].Path == p {
		return m.Files[i], true
	}
	return ManifestEntry{}, false
}
