package note

import (
	"strings"
	"time"
)

// Layout is the canonical timestamp format written into headers. It is
// zero-padded, so timestamps compare correctly as plain strings.
const Layout = "2006-01-02 15:04:05"

// dateLayouts are tried in order; the first one that parses wins.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102",
}

// FarFuture is the sort-only stand-in for a missing or unparsable
// created date. It is never formatted for display.
var FarFuture = time.Date(9000, 1, 1, 0, 0, 0, 0, time.Local)

// ParseDate parses s with the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FieldKind tags the variant held by a HeaderField.
type FieldKind int

const (
	FieldID FieldKind = iota
	FieldCreated
	FieldModified
	// FieldLegacy is a bare date token, the header format used before
	// key:value pairs. It is read as the created date.
	FieldLegacy
	// FieldUnknown is a key:value pair with an unrecognised key.
	FieldUnknown
)

// HeaderField is one comma-separated part of a record header.
type HeaderField struct {
	Kind  FieldKind
	Key   string
	Value string
}

// Header is the typed form of a record header.
type Header struct {
	ID       string
	Created  string
	Modified string
	// Extra holds unknown key:value pairs in their original order so that
	// regenerating the header does not drop them.
	Extra []HeaderField
}

// ParseHeaderFields splits a raw header line into typed fields. Outer
// dashes are trimmed first. Colons are kept so that a trailing "x:" stays
// an empty unknown field instead of turning into a legacy date.
func ParseHeaderFields(raw string) []HeaderField {
	raw = strings.Trim(raw, " \t\n\r-")
	if raw == "" {
		return nil
	}
	var out []HeaderField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch {
		case key == "id":
			out = append(out, HeaderField{Kind: FieldID, Key: "id", Value: value})
		case key == "c" || key == "created":
			out = append(out, HeaderField{Kind: FieldCreated, Key: "c", Value: value})
		case key == "m" || key == "modified":
			out = append(out, HeaderField{Kind: FieldModified, Key: "m", Value: value})
		case !found || isDate(part):
			// "2013-05-01 12:30" contains colons but is still a bare date.
			out = append(out, HeaderField{Kind: FieldLegacy, Value: part})
		default:
			out = append(out, HeaderField{Kind: FieldUnknown, Key: key, Value: value})
		}
	}
	return out
}

// ParseHeader folds the fields of a raw header into a Header. Later fields
// override earlier ones.
func ParseHeader(raw string) Header {
	var h Header
	for _, f := range ParseHeaderFields(raw) {
		switch f.Kind {
		case FieldID:
			h.ID = f.Value
		case FieldCreated, FieldLegacy:
			h.Created = f.Value
		case FieldModified:
			h.Modified = f.Value
		case FieldUnknown:
			h.Extra = append(h.Extra, f)
		}
	}
	return h
}

// String renders the canonical header: "id:<id>, c:<created>, m:<modified>"
// followed by any unknown pairs.
func (h Header) String() string {
	var b strings.Builder
	b.WriteString("id:")
	b.WriteString(h.ID)
	b.WriteString(", c:")
	b.WriteString(h.Created)
	b.WriteString(", m:")
	b.WriteString(h.Modified)
	for _, f := range h.Extra {
		b.WriteString(", ")
		b.WriteString(f.Key)
		b.WriteString(":")
		b.WriteString(f.Value)
	}
	return b.String()
}

func isDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}
