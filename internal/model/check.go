package model

import "fmt"

// CheckBoard verifies the board's structural invariants:
// every task's Status equals its owning column's Name, no task id appears
// twice, and no two columns share a name.
func CheckBoard(b Board) error {
	seenTasks := map[string]string{}
	seenCols := map[string]bool{}
	for _, col := range b.Columns {
		if col.Name != "" {
			if seenCols[col.Name] {
				return fmt.Errorf("duplicate column name %q", col.Name)
			}
			seenCols[col.Name] = true
		}
		for _, t := range col.Tasks {
			if t.Status != col.Name {
				return fmt.Errorf("task %q has status %q but lives in column %q", t.Title, t.Status, col.Name)
			}
			if t.ID == "" {
				continue
			}
			if prev, ok := seenTasks[t.ID]; ok {
				return fmt.Errorf("task id %s appears in columns %q and %q", t.ID, prev, col.Name)
			}
			seenTasks[t.ID] = col.Name
		}
	}
	return nil
}
