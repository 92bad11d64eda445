package note

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Delimiter starts every record in a notes file.
const Delimiter = "----"

// DefaultPrefix is assigned to notes whose title carries no marker.
const DefaultPrefix = "%"

// HiddenPrefix marks notes that are left out of unfiltered selections.
const HiddenPrefix = "."

var prefixes = map[string]struct{}{
	".": {}, "%": {}, "%%": {}, "%%%": {},
	"!": {}, "!!": {}, "!!!": {},
	"?": {}, "??": {}, "???": {},
}

// IsPrefix reports whether tok is one of the recognised title markers.
func IsPrefix(tok string) bool {
	_, ok := prefixes[tok]
	return ok
}

// NormalizeText puts note text into the form it has after a save/load
// cycle: leading blank lines dropped, lines starting with the record
// delimiter escaped with a space, trailing whitespace trimmed and a single
// trailing newline.
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for i, line := range lines {
		if strings.HasPrefix(line, Delimiter) {
			lines[i] = " " + line
		}
	}
	return strings.TrimRightFunc(strings.Join(lines, "\n"), unicode.IsSpace) + "\n"
}

type derived struct {
	title  string
	tags   map[string]struct{}
	words  map[string]struct{}
	prefix string
}

func derive(text string) derived {
	d := derived{
		tags:  make(map[string]struct{}),
		words: make(map[string]struct{}),
	}
	for _, line := range strings.Split(text, "\n") {
		if d.title == "" {
			d.title = strings.TrimSpace(line)
		}
		for _, tok := range strings.Fields(line) {
			tok = strings.ToLower(tok)
			if strings.HasPrefix(tok, "#") {
				if utf8.RuneCountInString(tok) >= 3 && isAlnum(tok[1:]) {
					d.tags[tok] = struct{}{}
				}
			} else if isAlnum(tok) {
				d.words[tok] = struct{}{}
			}
		}
	}
	d.prefix = titlePrefix(d.title)
	return d
}

func titlePrefix(title string) string {
	if fields := strings.Fields(title); len(fields) > 0 && IsPrefix(fields[0]) {
		return fields[0]
	}
	if strings.HasPrefix(title, HiddenPrefix) {
		return HiddenPrefix
	}
	return DefaultPrefix
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
