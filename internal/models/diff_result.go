package models

// DiffResult holds a rendered, size-bounded content diff between the
// previous and current canonical texts of a URL.
type DiffResult struct {
	Text         string `json:"text"`
	LinesAdded   int    `json:"lines_added"`
	LinesRemoved int    `json:"lines_removed"`
	Truncated    bool   `json:"truncated"`
}

// IsEmpty reports whether the diff carries no changed lines.
func (d *DiffResult) IsEmpty() bool {
	return d.LinesAdded == 0 && d.LinesRemoved == 0
}
