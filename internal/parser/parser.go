// Package parser splits notes files into records and joins records back
// into file content.
//
// A file is a sequence of records. Each record starts with a line beginning
// with "----", followed by the header on the same line and the body on the
// lines after it, up to the next delimiter line or end of file.
package parser

import (
	"strings"
)

// Record is one header/body pair as found in a file.
type Record struct {
	Header string
	Body   string
}

const delim = "\n----"

// Parse splits raw file content into records. Chunks with neither header
// nor body are dropped, so blank runs between delimiters produce nothing.
// Invalid UTF-8 sequences are removed.
func Parse(data []byte) []Record {
	content := strings.ToValidUTF8(string(data), "")

	var out []Record
	for _, chunk := range strings.Split(content, delim) {
		header, body, _ := strings.Cut(chunk, "\n")
		header = strings.Trim(header, " \t\r\n-")
		if header == "" && strings.TrimSpace(body) == "" {
			continue
		}
		out = append(out, Record{Header: header, Body: body})
	}
	return out
}

// Format renders records in file order. Bodies are written as given; callers
// escape delimiter lines and terminate bodies with a newline.
func Format(records []Record) []byte {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(delim)
		b.WriteString(" ")
		b.WriteString(r.Header)
		b.WriteString("\n")
		b.WriteString(r.Body)
	}
	return []byte(b.String())
}
