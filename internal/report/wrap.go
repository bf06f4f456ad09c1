package report

import "strings"

// WrapText greedily packs the whitespace-separated words of s into lines
// of at most maxChars bytes. A word longer than maxChars gets a line of
// its own. Blank input yields a single empty line.
func WrapText(s string, maxChars int) []string {
	var lines []string
	var line strings.Builder
	for _, w := range strings.Fields(s) {
		switch {
		case line.Len() == 0:
			line.WriteString(w)
		case line.Len()+1+len(w) <= maxChars:
			line.WriteByte(' ')
			line.WriteString(w)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(w)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
