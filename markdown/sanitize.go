package markdown

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize removes terminal escape sequences and control characters from
// text received from a remote party. Tabs and newlines survive; CRLF
// becomes LF. A lone CR rewinds to the start of the line the way a
// terminal would, so "10%\r99%" reads "99%".
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r <= 0x1f, r == 0x7f:
			return -1
		}
		return r
	}, s)
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = overwrite(line)
	}
	return strings.Join(lines, "\n")
}

// overwrite applies each CR-separated segment over the previous ones.
func overwrite(line string) string {
	segs := strings.Split(line, "\r")
	buf := []rune(segs[0])
	for _, seg := range segs[1:] {
		for j, r := range []rune(seg) {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}
