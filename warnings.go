package reflow

import (
	"fmt"
	"strings"

	"github.com/tsawler/reflow/model"
)

// Warning describes an element that was left out of the output. The
// conversion itself succeeded.
type Warning struct {
	Page    int    // 1-based source page, 0 when not tied to a page
	Element string // image, table, text or content
	Message string
	Err     error
}

// String renders the warning on one line
func (w Warning) String() string {
	var b strings.Builder
	if w.Page > 0 {
		fmt.Fprintf(&b, "page %d: ", w.Page)
	}
	b.WriteString(w.Element)
	b.WriteString(": ")
	b.WriteString(w.Message)
	if w.Err != nil {
		b.WriteString(": ")
		b.WriteString(w.Err.Error())
	}
	return b.String()
}

// FormatWarnings joins warnings into a single human readable string, one
// warning per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

func warningsFromSkips(skips []model.Skip) []Warning {
	if len(skips) == 0 {
		return nil
	}
	out := make([]Warning, len(skips))
	for i, s := range skips {
		out[i] = Warning{Page: s.Page, Element: s.Element, Message: s.Reason, Err: s.Err}
	}
	return out
}
