package frontmatter

import (
	"errors"
	"strings"

	"github.com/inful/mdfp"
)

// FingerprintField is the front-matter key holding a page's content fingerprint.
const FingerprintField = mdfp.FingerprintField

// ComputeFingerprint hashes the canonical form of a page: its fields without the
// fingerprint itself, serialized with LF newlines and no trailing newline, plus the body.
func ComputeFingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == FingerprintField {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		out, err := SerializeYAML(hashed, Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

// UpsertFingerprint stores the current fingerprint in fields and reports whether it changed.
func UpsertFingerprint(fields map[string]any, body []byte) (string, bool, error) {
	fp, err := ComputeFingerprint(fields, body)
	if err != nil {
		return "", false, err
	}
	if existing, ok := fields[FingerprintField].(string); ok && existing == fp {
		return fp, false, nil
	}
	fields[FingerprintField] = fp
	return fp, true, nil
}
