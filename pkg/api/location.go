package api

import "fmt"

// Location identifies a position in Dana source, used to enrich faults and
// call frames. A zero Location means the position is unknown
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<unknown>"
	}
	if l.Line == 0 {
		return file
	}
	if l.Column == 0 {
		return fmt.Sprintf("%s:%d", file, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// IsZero reports whether the location carries no position information
func (l Location) IsZero() bool {
	return l == Location{}
}
