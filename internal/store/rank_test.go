package store

import (
	"testing"

	"kanban-cli/internal/model"
)

func TestRankBetween(t *testing.T) {
	t.Parallel()
	cases := []struct {
		a, b string
	}{
		{"", ""},
		{"h", ""},
		{"", "h"},
		{"h", "i"},
		{"h", "q"},
		{"10", "11"},
		{"hz", "i"},
		{"abc", "abd"},
	}
	for _, tc := range cases {
		r, err := RankBetween(tc.a, tc.b)
		if err != nil {
			t.Fatalf("RankBetween(%q, %q): %v", tc.a, tc.b, err)
		}
		if tc.a != "" && !(tc.a < r) {
			t.Fatalf("RankBetween(%q, %q) = %q, not above lower bound", tc.a, tc.b, r)
		}
		if tc.b != "" && !(r < tc.b) {
			t.Fatalf("RankBetween(%q, %q) = %q, not below upper bound", tc.a, tc.b, r)
		}
	}
}

func TestRankBetween_NoSpace(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ a, b string }{
		{"h", "h0"},
		{"", "0"},
		{"h", "h"},
		{"i", "h"},
	} {
		if r, err := RankBetween(tc.a, tc.b); err == nil {
			t.Fatalf("RankBetween(%q, %q) = %q, want error", tc.a, tc.b, r)
		}
	}
}

func TestRankBetween_RepeatedInsertAtHead(t *testing.T) {
	t.Parallel()
	upper := "h"
	for i := 0; i < 50; i++ {
		r, err := RankBefore(upper)
		if err != nil {
			t.Fatalf("RankBefore(%q) after %d inserts: %v", upper, i, err)
		}
		if !(r < upper) {
			t.Fatalf("RankBefore(%q) = %q", upper, r)
		}
		upper = r
	}
}

func TestRankForInsert(t *testing.T) {
	t.Parallel()
	tasks := []model.Task{{Rank: "c"}, {Rank: "h"}, {Rank: "q"}}

	r, ok := rankForInsert(tasks, 0)
	if !ok || !(r < "c") {
		t.Fatalf("head insert: %q, %v", r, ok)
	}
	r, ok = rankForInsert(tasks, 2)
	if !ok || !("h" < r && r < "q") {
		t.Fatalf("middle insert: %q, %v", r, ok)
	}
	r, ok = rankForInsert(tasks, 3)
	if !ok || !("q" < r) {
		t.Fatalf("tail insert: %q, %v", r, ok)
	}

	// Exhausted gap demands a rebalance.
	packed := []model.Task{{Rank: "h"}, {Rank: "h0"}}
	if _, ok := rankForInsert(packed, 1); ok {
		t.Fatalf("expected no room between h and h0")
	}
}

func TestRebalanceRanks(t *testing.T) {
	t.Parallel()
	tasks := []model.Task{
		{ID: "a", Rank: "h"},
		{ID: "b", Rank: "h0"},
		{ID: "c", Rank: "h00"},
	}
	changed := rebalanceRanks(tasks)
	if len(changed) == 0 {
		t.Fatalf("expected rewrites")
	}
	for i := 1; i < len(tasks); i++ {
		if !(tasks[i-1].Rank < tasks[i].Rank) {
			t.Fatalf("not strictly increasing after rebalance: %q >= %q", tasks[i-1].Rank, tasks[i].Rank)
		}
	}
}

func TestSortTasksByRank(t *testing.T) {
	t.Parallel()
	tasks := []model.Task{
		{ID: "late", Rank: "q"},
		{ID: "unranked1"},
		{ID: "early", Rank: "c"},
		{ID: "unranked2"},
	}
	sortTasksByRank(tasks)
	got := taskIDs(tasks)
	want := []string{"early", "late", "unranked1", "unranked2"}
	if !sameIDs(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}
