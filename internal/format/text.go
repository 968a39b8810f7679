// Package format renders domain values as chat messages. Nothing here touches
// storage or session state: every view is a function of its arguments.
package format

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Truncation widths.
const (
	ListWidth   = 40
	ButtonWidth = 25
)

// DefaultMaxChars is the split threshold, a little under Telegram's 4096 limit.
const DefaultMaxChars = 4000

// Escape makes dynamic text safe inside an HTML message.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// Hours renders an hour amount with at most two decimals: 4, 2.5, 3.33.
func Hours(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func fixed1(v float64) string { return fmt.Sprintf("%.1f", v) }

func fixed2(v float64) string { return fmt.Sprintf("%.2f", v) }

// Split breaks text into chunks of at most limit runes, preferring to cut right
// after the last line break that fits. With more than one chunk every part is
// prefixed with "Parte i de N:".
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxChars
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for start := 0; start < len(runes); {
		end := min(start+limit, len(runes))
		if end < len(runes) {
			if nl := lastNewline(runes[start:end]); nl > 0 {
				end = start + nl + 1
			}
		}
		parts = append(parts, string(runes[start:end]))
		start = end
	}

	for i := range parts {
		parts[i] = fmt.Sprintf("Parte %d de %d:\n\n%s", i+1, len(parts), parts[i])
	}
	return parts
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// lines is a small builder for multi-line messages.
type lines struct {
	b strings.Builder
}

func (l *lines) add(format string, args ...any) {
	fmt.Fprintf(&l.b, format, args...)
	l.b.WriteByte('\n')
}

func (l *lines) blank() {
	l.b.WriteByte('\n')
}

func (l *lines) String() string {
	return strings.TrimRight(l.b.String(), "\n")
}
