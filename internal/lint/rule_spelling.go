package lint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCorrections are misspellings common in engineering prose.
var DefaultCorrections = map[string]string{
	"accross":      "across",
	"acheive":      "achieve",
	"adress":       "address",
	"alot":         "a lot",
	"begining":     "beginning",
	"calender":     "calendar",
	"definately":   "definitely",
	"dependancy":   "dependency",
	"dependancies": "dependencies",
	"enviroment":   "environment",
	"existance":    "existence",
	"independant":  "independent",
	"langauge":     "language",
	"occured":      "occurred",
	"occurence":    "occurrence",
	"paramter":     "parameter",
	"recieve":      "receive",
	"seperate":     "separate",
	"succesful":    "successful",
	"teh":          "the",
	"untill":       "until",
	"wich":         "which",
}

var wordPattern = regexp.MustCompile(`\p{L}+(?:'\p{L}+)*`)

// SpellingRule flags words from a corrections map. Code spans, fenced blocks, URLs and
// link destinations are not checked; allowlisted words are never flagged.
type SpellingRule struct {
	Corrections map[string]string
	Allow       map[string]bool
}

// Name returns the rule identifier.
func (r *SpellingRule) Name() string { return RuleSpelling }

// AppliesTo returns true for documentation files.
func (r *SpellingRule) AppliesTo(filePath string) bool { return IsDocFile(filePath) }

// Check reports one issue per misspelled word.
func (r *SpellingRule) Check(src *Source) []Issue {
	var issues []Issue
	for _, m := range r.matches(src) {
		issues = append(issues, Issue{
			FilePath: src.Path,
			Severity: SeverityWarning,
			Rule:     r.Name(),
			Line:     m.line,
			Message:  fmt.Sprintf("%q is misspelled", m.word),
			Fix:      fmt.Sprintf("Replace with %q", m.correction),
			Fixable:  true,
		})
	}
	return issues
}

type misspelling struct {
	line       int
	start, end int // byte offsets in the file
	word       string
	correction string
}

func (r *SpellingRule) matches(src *Source) []misspelling {
	var out []misspelling
	for _, l := range src.Lines {
		if l.Front || l.Code {
			continue
		}
		prose := Prose(l.Text)
		for _, loc := range wordPattern.FindAllStringIndex(prose, -1) {
			word := prose[loc[0]:loc[1]]
			lower := strings.ToLower(word)
			if r.Allow[lower] {
				continue
			}
			fix, ok := r.Corrections[lower]
			if !ok {
				continue
			}
			out = append(out, misspelling{
				line:       l.Num,
				start:      l.Start + loc[0],
				end:        l.Start + loc[1],
				word:       word,
				correction: matchCase(word, fix),
			})
		}
	}
	return out
}

// matchCase carries the capitalization of word over to fix.
func matchCase(word, fix string) string {
	if word == strings.ToUpper(word) && utf8.RuneCountInString(word) > 1 {
		return strings.ToUpper(fix)
	}
	first, _ := utf8.DecodeRuneInString(word)
	if unicode.IsUpper(first) {
		f, n := utf8.DecodeRuneInString(fix)
		return string(unicode.ToUpper(f)) + fix[n:]
	}
	return fix
}
