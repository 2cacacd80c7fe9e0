package macros

import (
	"fmt"
	"strings"
)

// protect swaps fenced code blocks and inline code spans for placeholders so template
// syntax shown in code samples is not executed.
func protect(body string) (string, []string) {
	var kept []string
	var out strings.Builder
	lines := strings.SplitAfter(body, "\n")

	fence := ""
	var block strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if fence == "" {
			if f := openingFence(trimmed); f != "" && len(line)-len(trimmed) <= 3 {
				fence = f
				block.Reset()
				block.WriteString(line)
				continue
			}
			out.WriteString(protectInline(line, &kept))
			continue
		}
		block.WriteString(line)
		if strings.HasPrefix(strings.TrimRight(trimmed, "\r\n"), fence) {
			fence = ""
			out.WriteString(placeholder(len(kept)))
			kept = append(kept, block.String())
		}
	}
	if fence != "" {
		// Unclosed fence runs to the end of the document.
		out.WriteString(placeholder(len(kept)))
		kept = append(kept, block.String())
	}
	return out.String(), kept
}

func openingFence(line string) string {
	for _, ch := range []string{"`", "~"} {
		n := len(line) - len(strings.TrimLeft(line, ch))
		if n >= 3 {
			return strings.Repeat(ch, n)
		}
	}
	return ""
}

func protectInline(line string, kept *[]string) string {
	if !strings.Contains(line, "`") {
		return line
	}
	var out strings.Builder
	for {
		start := strings.Index(line, "`")
		if start < 0 {
			break
		}
		run := len(line[start:]) - len(strings.TrimLeft(line[start:], "`"))
		delim := line[start : start+run]
		end := strings.Index(line[start+run:], delim)
		if end < 0 {
			break
		}
		stop := start + run + end + run
		out.WriteString(line[:start])
		out.WriteString(placeholder(len(*kept)))
		*kept = append(*kept, line[start:stop])
		line = line[stop:]
	}
	out.WriteString(line)
	return out.String()
}

func placeholder(i int) string {
	return fmt.Sprintf("\x00macro-code-%d\x00", i)
}

func restore(s string, kept []string) string {
	if len(kept) == 0 {
		return s
	}
	pairs := make([]string, 0, 2*len(kept))
	for i, k := range kept {
		pairs = append(pairs, placeholder(i), k)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
