package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/reflow/model"
)

// parseTable flattens a table to cell text on the column grid. A cell
// spanning several columns keeps its text in the first one and leaves the
// others empty; a cell continuing a vertical merge is empty as well.
func parseTable(tbl *tableXML) *model.Table {
	t := &model.Table{}
	for _, row := range tbl.Rows {
		var cells []string
		for _, cell := range row.Cells {
			text := cellText(cell)
			if cell.Properties.VMerge.continues() {
				text = ""
			}
			cells = append(cells, text)
			for i := 1; i < gridSpan(cell); i++ {
				cells = append(cells, "")
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// cellText joins the text of the cell's paragraphs with newlines
func cellText(cell tableCellXML) string {
	parts := make([]string, 0, len(cell.Paragraphs))
	for i := range cell.Paragraphs {
		parts = append(parts, cell.Paragraphs[i].Text())
	}
	return strings.Join(parts, "\n")
}

func gridSpan(cell tableCellXML) int {
	span, err := strconv.Atoi(cell.Properties.GridSpan.Val)
	if err != nil || span < 1 {
		return 1
	}
	return span
}
