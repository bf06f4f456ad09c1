package model

// Todo is a task inside a project. Insertion order in Project.Todos is the
// display order.
type Todo struct {
	ID        uint64 `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Completed bool   `json:"completed" db:"completed"`

	// Subtasks and Description are absent from the legacy todos.json
	// format and decode to their zero values.
	Subtasks    []Subtask `json:"subtasks" db:"-"`
	Description string    `json:"description" db:"description"`
}

// Subtask is a checklist item nested under a todo.
// Its lifecycle is bound to the parent todo.
type Subtask struct {
	ID        uint64 `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Completed bool   `json:"completed" db:"completed"`
}

// SubtaskProgress returns how many subtasks are done out of the total.
func (t Todo) SubtaskProgress() (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

func (t *Todo) subtaskIndex(id uint64) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// syncCompletion recomputes Completed from the subtasks. A todo without
// subtasks keeps whatever value it has.
func (t *Todo) syncCompletion() {
	if len(t.Subtasks) == 0 {
		return
	}
	for _, s := range t.Subtasks {
		if !s.Completed {
			t.Completed = false
			return
		}
	}
	t.Completed = true
}

func (t *Todo) nextSubtaskID() uint64 {
	var highest uint64
	for _, s := range t.Subtasks {
		if s.ID > highest {
			highest = s.ID
		}
	}
	return highest + 1
}
