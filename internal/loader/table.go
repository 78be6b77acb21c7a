package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrParse is matched by every *ParseError
var ErrParse = errors.New("malformed table")

// ParseError reports a malformed or incomplete input table
type ParseError struct {
	Source string
	Line   int // 0 when the problem is not tied to a line
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	if e.Source != "" {
		b.WriteString(e.Source)
	} else {
		b.WriteString("table")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// row is one data line of a whitespace-separated table
type row struct {
	line   int
	fields []string
}

// scanTable splits r into whitespace-separated rows, dropping blank lines and
// '#' comments. When header is true the first non-blank line is returned
// separately as column names, with a leading '#' allowed.
func scanTable(r io.Reader, header bool) (names []string, rows []row, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if header && names == nil {
			names = strings.Fields(strings.TrimSpace(strings.TrimPrefix(text, "#")))
			if len(names) == 0 {
				return nil, nil, &ParseError{Line: line, Msg: "empty header"}
			}
			continue
		}
		if strings.HasPrefix(text, "#") {
			continue
		}
		rows = append(rows, row{line: line, fields: strings.Fields(text)})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, &ParseError{Line: line, Msg: "read failed", Err: err}
	}
	if header && names == nil {
		return nil, nil, &ParseError{Msg: "missing header"}
	}
	if len(rows) == 0 {
		return nil, nil, &ParseError{Msg: "no data rows"}
	}
	return names, rows, nil
}

// column extracts field idx of every row as float64
func column(rows []row, idx int, name string) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		if idx >= len(r.fields) {
			return nil, &ParseError{Line: r.line, Msg: fmt.Sprintf("row has %d fields, column %q needs %d", len(r.fields), name, idx+1)}
		}
		v, err := strconv.ParseFloat(r.fields[idx], 64)
		if err != nil {
			return nil, &ParseError{Line: r.line, Msg: fmt.Sprintf("column %q", name), Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// withSource stamps the source name on a *ParseError
func withSource(err error, source string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Source == "" {
		pe.Source = source
	}
	return err
}
