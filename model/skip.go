package model

import "fmt"

// Skip records a content element that was left out of a conversion. Skips
// never fail a conversion; they are reported next to its output.
type Skip struct {
	Page    int    // 1-based page number, 0 when the element has no page
	Element string // "image", "table", "text", "content"
	Reason  string
	Err     error
}

func (s Skip) String() string {
	msg := s.Element + ": " + s.Reason
	if s.Page > 0 {
		msg = fmt.Sprintf("page %d: %s", s.Page, msg)
	}
	if s.Err != nil {
		msg += ": " + s.Err.Error()
	}
	return msg
}
