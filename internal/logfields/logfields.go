package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyLink       = "link"
	KeyNav        = "nav"
	KeyVersion    = "version"
	KeyAlias      = "alias"
	KeyBranch     = "branch"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyRule       = "rule"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Link(l string) slog.Attr         { return slog.String(KeyLink, l) }
func Nav(label string) slog.Attr      { return slog.String(KeyNav, label) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Alias(a string) slog.Attr        { return slog.String(KeyAlias, a) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Rule(r string) slog.Attr         { return slog.String(KeyRule, r) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
