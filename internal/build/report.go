package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageDiscover  StageName = "discover"
	StageNav       StageName = "nav"
	StageRedirects StageName = "redirects"
	StageMacros    StageName = "macros"
	StageRender    StageName = "render"
	StageAssets    StageName = "assets"
	StageSearch    StageName = "search"
	StageSitemap   StageName = "sitemap"
	StageWrite     StageName = "write"
)

// Severity of a report issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding recorded during a build.
type Issue struct {
	Stage    StageName `json:"stage"`
	Severity Severity  `json:"severity"`
	Kind     string    `json:"kind"`
	Page     string    `json:"page,omitempty"`
	Message  string    `json:"message"`
}

const reportSchemaVersion = 1

// Report summarizes one build.
type Report struct {
	SchemaVersion  int
	BuildID        string
	Start          time.Time
	End            time.Time
	Outcome        Outcome
	Pages          int
	Assets         int
	Redirects      int
	OutputFiles    int
	SourceHash     string
	OutputHash     string
	StageDurations map[StageName]time.Duration
	Issues         []Issue
	Error          string
}

func newReport(id string, start time.Time) *Report {
	return &Report{
		SchemaVersion:  reportSchemaVersion,
		BuildID:        id,
		Start:          start,
		StageDurations: map[StageName]time.Duration{},
	}
}

func (r *Report) addIssue(stage StageName, sev Severity, kind, page, msg string) {
	r.Issues = append(r.Issues, Issue{Stage: stage, Severity: sev, Kind: kind, Page: page, Message: msg})
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// finish sets the end time and derives the outcome from err and the recorded issues.
func (r *Report) finish(end time.Time, err error, canceled bool) {
	r.End = end
	switch {
	case canceled:
		r.Outcome = OutcomeCanceled
	case err != nil:
		r.Outcome = OutcomeFailed
	case r.Count(SeverityWarning) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
	if err != nil {
		r.Error = err.Error()
	}
}

// Summary is the one-line human form used in logs and build-report.txt.
func (r *Report) Summary() string {
	return fmt.Sprintf("build %s: %s, %d pages, %d assets, %d redirects, %d warnings, %d infos in %s",
		r.BuildID, r.Outcome, r.Pages, r.Assets, r.Redirects,
		r.Count(SeverityWarning), r.Count(SeverityInfo), r.End.Sub(r.Start).Round(time.Millisecond))
}

type reportJSON struct {
	SchemaVersion    int                `json:"schema_version"`
	BuildID          string             `json:"build_id"`
	Start            time.Time          `json:"start"`
	End              time.Time          `json:"end"`
	Outcome          Outcome            `json:"outcome"`
	Pages            int                `json:"pages"`
	Assets           int                `json:"assets"`
	Redirects        int                `json:"redirects"`
	OutputFiles      int                `json:"output_files"`
	SourceHash       string             `json:"source_hash,omitempty"`
	OutputHash       string             `json:"output_hash,omitempty"`
	StageDurationsMS map[string]float64 `json:"stage_durations_ms"`
	Issues           []Issue            `json:"issues"`
	Error            string             `json:"error,omitempty"`
}

// MarshalJSON writes durations in milliseconds with string stage keys.
func (r *Report) MarshalJSON() ([]byte, error) {
	ms := make(map[string]float64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		ms[string(k)] = float64(v.Microseconds()) / 1000
	}
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(reportJSON{
		SchemaVersion: r.SchemaVersion, BuildID: r.BuildID, Start: r.Start, End: r.End,
		Outcome: r.Outcome, Pages: r.Pages, Assets: r.Assets, Redirects: r.Redirects,
		OutputFiles: r.OutputFiles, SourceHash: r.SourceHash, OutputHash: r.OutputHash,
		StageDurationsMS: ms, Issues: issues, Error: r.Error,
	})
}

// text renders build-report.txt: the summary, then one line per issue.
func (r *Report) text() string {
	var b strings.Builder
	b.WriteString(r.Summary())
	b.WriteByte('\n')
	if r.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", r.Error)
	}
	stages := make([]string, 0, len(r.StageDurations))
	for s := range r.StageDurations {
		stages = append(stages, string(s))
	}
	sort.Strings(stages)
	for _, s := range stages {
		fmt.Fprintf(&b, "stage %-10s %s\n", s, r.StageDurations[StageName(s)].Round(time.Microsecond))
	}
	for _, i := range r.Issues {
		if i.Page != "" {
			fmt.Fprintf(&b, "%s [%s] %s: %s\n", i.Severity, i.Stage, i.Page, i.Message)
		} else {
			fmt.Fprintf(&b, "%s [%s] %s\n", i.Severity, i.Stage, i.Message)
		}
	}
	return b.String()
}

// Persist writes build-report.json and build-report.txt atomically into dir.
func (r *Report) Persist(dir string) error {
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "build-report.json"), append(jb, '\n')); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, "build-report.txt"), []byte(r.text()))
}

// writeAtomic writes data to a temporary sibling and renames it into place.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory for %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
