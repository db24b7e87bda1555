package model

// Subtask is a checklist line item owned by a task. It has no lifecycle of
// its own; it is persisted as part of its task's subtask list.
type Subtask struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// Task is a work item. Status is a denormalized copy of the name of the
// column the task currently lives in; the two must never disagree. A task
// has no ID until the gateway has persisted it.
//
// Rank is the persisted position inside the column: a lexicographic
// fractional-indexing string maintained by the store, so in-column order
// survives a refetch. In-memory slice order stays authoritative for
// rendering; Rank trails it.
type Task struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Rank        string    `json:"rank,omitempty"`
	Subtasks    []Subtask `json:"subtasks"`
}

// Column is an ordered list of tasks under a status label. ID is a stable
// identifier assigned at creation; Name doubles as the status label tasks
// carry. Renames keep ID fixed, which is what task migration keys off.
type Column struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// Board is a named, ordered collection of columns.
type Board struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// DoneSubtasks returns how many of the task's subtasks are completed.
func (t Task) DoneSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.IsCompleted {
			n++
		}
	}
	return n
}

// FindColumn returns the index of the column with the given name, or -1.
func (b Board) FindColumn(name string) int {
	for i := range b.Columns {
		if b.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// FindColumnID returns the index of the column with the given id, or -1.
func (b Board) FindColumnID(id string) int {
	if id == "" {
		return -1
	}
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask locates a task by id and returns its column and task indexes,
// or (-1, -1) when absent.
func (b Board) FindTask(taskID string) (col, idx int) {
	if taskID == "" {
		return -1, -1
	}
	for ci := range b.Columns {
		for ti := range b.Columns[ci].Tasks {
			if b.Columns[ci].Tasks[ti].ID == taskID {
				return ci, ti
			}
		}
	}
	return -1, -1
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	n := 0
	for i := range b.Columns {
		n += len(b.Columns[i].Tasks)
	}
	return n
}

// CloneBoard returns a deep copy of b. Mutations on the copy never alias
// the original's column or task slices.
func CloneBoard(b Board) Board {
	out := b
	out.Columns = make([]Column, len(b.Columns))
	for i, c := range b.Columns {
		cc := c
		cc.Tasks = make([]Task, len(c.Tasks))
		for j, t := range c.Tasks {
			cc.Tasks[j] = CloneTask(t)
		}
		out.Columns[i] = cc
	}
	return out
}

// CloneColumn returns a deep copy of c.
func CloneColumn(c Column) Column {
	out := c
	out.Tasks = make([]Task, len(c.Tasks))
	for i, t := range c.Tasks {
		out.Tasks[i] = CloneTask(t)
	}
	return out
}

// CloneTask returns a deep copy of t.
func CloneTask(t Task) Task {
	out := t
	out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	return out
}

// CloneBoards deep-copies a board slice.
func CloneBoards(bs []Board) []Board {
	out := make([]Board, len(bs))
	for i := range bs {
		out[i] = CloneBoard(bs[i])
	}
	return out
}
