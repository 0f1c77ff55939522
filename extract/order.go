package extract

import (
	"sort"

	"github.com/tsawler/reflow/model"
)

// Order returns the units sorted top to bottom by YPosition. Units at the
// same position keep their collection order. The input is not modified.
func Order(units []model.PageContentUnit) []model.PageContentUnit {
	ordered := make([]model.PageContentUnit, len(units))
	copy(ordered, units)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].YPosition() < ordered[j].YPosition()
	})
	return ordered
}
