// Package sitemap writes sitemap.xml and its gzip twin.
package sitemap

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []entry  `xml:"url"`
}

type entry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Build renders the sitemap for pages in the given order. lastmod is only set from a
// page's front-matter date so output does not depend on file times.
func Build(siteURL string, pages []*content.Page) ([]byte, error) {
	base := strings.TrimSuffix(siteURL, "/") + "/"
	set := urlset{Xmlns: xmlns}
	for _, p := range pages {
		set.URLs = append(set.URLs, entry{Loc: base + p.URL, LastMod: lastMod(p.Meta.Date)})
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "encode sitemap").Build()
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// lastMod normalizes a front-matter date to YYYY-MM-DD; unparseable dates are dropped.
func lastMod(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}

// Gzip compresses data with a zero header time, so identical input gives identical bytes.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "create gzip writer").Build()
	}
	zw.ModTime = time.Time{}
	if _, err := zw.Write(data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "compress sitemap").Build()
	}
	if err := zw.Close(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "compress sitemap").Build()
	}
	return buf.Bytes(), nil
}
