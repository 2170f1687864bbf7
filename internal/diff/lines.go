package diff

import "strings"

// SplitLines splits text into lines. A final newline terminates the last line
// rather than starting an empty one, so "a\nb\n" and "a\nb" both give two
// lines. Empty text gives no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines, terminating every line with a
// newline.
func JoinLines(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
