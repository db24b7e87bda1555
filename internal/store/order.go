package store

import (
	"sort"
	"strings"

	"kanban-cli/internal/model"
)

// sortTasksByRank orders tasks the way the board renders them: rank
// (lexicographic) first, rankless tasks after ranked ones in fetch order.
func sortTasksByRank(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri := strings.TrimSpace(tasks[i].Rank)
		rj := strings.TrimSpace(tasks[j].Rank)
		if ri != "" && rj != "" {
			return ri < rj
		}
		if ri != "" {
			return true
		}
		return false
	})
}

// rankForInsert computes a rank for a task entering tasks at idx, where
// tasks is the column content after removal of the moved task. ok=false
// means the neighbor gap is exhausted and the column needs a rebalance.
func rankForInsert(tasks []model.Task, idx int) (rank string, ok bool) {
	lower := ""
	upper := ""
	if idx > 0 {
		lower = strings.TrimSpace(tasks[idx-1].Rank)
	}
	if idx < len(tasks) {
		upper = strings.TrimSpace(tasks[idx].Rank)
	}
	if lower != "" && upper != "" && !(lower < upper) {
		return "", false
	}
	r, err := RankBetween(lower, upper)
	if err != nil {
		return "", false
	}
	return r, true
}

// rebalanceRanks assigns fresh, evenly spaced ranks to every task in the
// column, preserving the given order. Returns the ids whose rank changed.
func rebalanceRanks(tasks []model.Task) []string {
	var changed []string
	prev := ""
	for i := range tasks {
		var r string
		var err error
		if prev == "" {
			r, err = RankInitial()
		} else {
			r, err = RankAfter(prev)
		}
		if err != nil {
			r = prev + "0"
		}
		if tasks[i].Rank != r {
			tasks[i].Rank = r
			if tasks[i].ID != "" {
				changed = append(changed, tasks[i].ID)
			}
		}
		prev = r
	}
	return changed
}

func clampIndex(idx, max int) int {
	if idx < 0 {
		return 0
	}
	if idx > max {
		return max
	}
	return idx
}
