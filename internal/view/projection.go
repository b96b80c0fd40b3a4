package view

import (
	"github.com/jmylchreest/toastd/internal/model"
)

// Project derives the ordered list of master indices whose toast category is
// in the allow-list. A nil or empty allow-list is the identity projection.
// Relative store order is always preserved; recomputed in full per mutation
// since toast counts are bounded by the visible UI.
func Project(toasts []model.Toast, allow []model.Category) []int {
	indices := make([]int, 0, len(toasts))

	if len(allow) == 0 {
		for i := range toasts {
			indices = append(indices, i)
		}
		return indices
	}

	allowed := make(map[model.Category]bool, len(allow))
	for _, cat := range allow {
		allowed[cat] = true
	}

	for i, t := range toasts {
		if allowed[t.Category] {
			indices = append(indices, i)
		}
	}
	return indices
}
