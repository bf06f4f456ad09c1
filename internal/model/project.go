package model

// DefaultProjectName is the name given to the project synthesized when a
// legacy flat todo list is migrated.
const DefaultProjectName = "Default Project"

// Project is a named container of todos, the top-level organizational unit.
type Project struct {
	ID    uint64 `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Todos []Todo `json:"todos" db:"-"`
}

// Stats holds the completion counters shown in list badges and reports.
type Stats struct {
	Total     int
	Completed int
	Active    int
	Subtasks  int
}

// CompletionPercent returns the share of completed todos, 0 when empty.
func (s Stats) CompletionPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// Stats computes the counters for p.
func (p Project) Stats() Stats {
	var s Stats
	s.Total = len(p.Todos)
	for _, t := range p.Todos {
		if t.Completed {
			s.Completed++
		}
		s.Subtasks += len(t.Subtasks)
	}
	s.Active = s.Total - s.Completed
	return s
}

func (p *Project) todoIndex(id uint64) int {
	for i := range p.Todos {
		if p.Todos[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneProjects returns a deep copy of projects so it can be handed to a
// background save without sharing slices with the live state.
func CloneProjects(projects []Project) []Project {
	if projects == nil {
		return nil
	}
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = Project{ID: p.ID, Name: p.Name, Todos: cloneTodos(p.Todos)}
	}
	return out
}

func cloneTodos(todos []Todo) []Todo {
	if todos == nil {
		return nil
	}
	out := make([]Todo, len(todos))
	for i, t := range todos {
		out[i] = t
		if t.Subtasks != nil {
			out[i].Subtasks = append([]Subtask(nil), t.Subtasks...)
		}
	}
	return out
}

// Normalize replaces nil todo and subtask slices with empty ones so the
// persisted form always carries "todos": [] and "subtasks": [].
func Normalize(projects []Project) []Project {
	if projects == nil {
		return []Project{}
	}
	for i := range projects {
		if projects[i].Todos == nil {
			projects[i].Todos = []Todo{}
		}
		for j := range projects[i].Todos {
			if projects[i].Todos[j].Subtasks == nil {
				projects[i].Todos[j].Subtasks = []Subtask{}
			}
		}
	}
	return projects
}
