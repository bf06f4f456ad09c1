package model

import "strings"

// State is the in-memory application state shared by every view. All
// mutations are pure transformations; persisting the result is the
// caller's job.
//
// Operations addressed by an unknown id, or given a blank title where one
// is required, are silent no-ops and report false.
type State struct {
	Projects        []Project
	ActiveProjectID *uint64
	// NextID is the next todo id. It only ever grows.
	NextID uint64
	Filter Filter
}

// NewState builds a State from loaded projects, seeding NextID from the
// highest todo id across all projects and activating the first project.
func NewState(projects []Project) *State {
	s := &State{Projects: projects, NextID: 1}
	for _, p := range projects {
		for _, t := range p.Todos {
			if t.ID >= s.NextID {
				s.NextID = t.ID + 1
			}
		}
	}
	if len(projects) > 0 {
		id := projects[0].ID
		s.ActiveProjectID = &id
	}
	return s
}

// Project returns a pointer into s.Projects, or nil.
func (s *State) Project(id uint64) *Project {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return &s.Projects[i]
		}
	}
	return nil
}

// ActiveProject returns the selected project, or nil.
func (s *State) ActiveProject() *Project {
	if s.ActiveProjectID == nil {
		return nil
	}
	return s.Project(*s.ActiveProjectID)
}

// Todo returns a pointer to the todo inside its project, or nil.
func (s *State) Todo(projectID, todoID uint64) *Todo {
	p := s.Project(projectID)
	if p == nil {
		return nil
	}
	if i := p.todoIndex(todoID); i >= 0 {
		return &p.Todos[i]
	}
	return nil
}

// SelectProject makes id the active project.
func (s *State) SelectProject(id uint64) bool {
	if s.Project(id) == nil {
		return false
	}
	s.ActiveProjectID = &id
	return true
}

// AddProject appends a project named name (trimmed) and activates it.
func (s *State) AddProject(name string) (Project, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, false
	}
	var highest uint64
	for _, p := range s.Projects {
		if p.ID > highest {
			highest = p.ID
		}
	}
	p := Project{ID: highest + 1, Name: name, Todos: []Todo{}}
	s.Projects = append(s.Projects, p)
	s.ActiveProjectID = &p.ID
	return p, true
}

// RenameProject replaces the project name; blank names are rejected.
func (s *State) RenameProject(id uint64, name string) bool {
	name = strings.TrimSpace(name)
	p := s.Project(id)
	if p == nil || name == "" {
		return false
	}
	p.Name = name
	return true
}

// DeleteProject removes the project. When it was active, the first
// remaining project becomes active, or none.
func (s *State) DeleteProject(id uint64) bool {
	idx := -1
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.Projects = append(s.Projects[:idx], s.Projects[idx+1:]...)
	if s.ActiveProjectID != nil && *s.ActiveProjectID == id {
		s.ActiveProjectID = nil
		if len(s.Projects) > 0 {
			first := s.Projects[0].ID
			s.ActiveProjectID = &first
		}
	}
	return true
}

// AddTodo appends a new incomplete todo to the project.
func (s *State) AddTodo(projectID uint64, title string) (Todo, bool) {
	title = strings.TrimSpace(title)
	p := s.Project(projectID)
	if p == nil || title == "" {
		return Todo{}, false
	}
	t := Todo{ID: s.NextID, Title: title, Subtasks: []Subtask{}}
	s.NextID++
	p.Todos = append(p.Todos, t)
	return t, true
}

// ToggleTodo flips the todo and gives every subtask the same value.
func (s *State) ToggleTodo(projectID, todoID uint64) bool {
	t := s.Todo(projectID, todoID)
	if t == nil {
		return false
	}
	t.Completed = !t.Completed
	for i := range t.Subtasks {
		t.Subtasks[i].Completed = t.Completed
	}
	return true
}

// EditTodoTitle replaces the title verbatim. Unlike AddTodo, an empty
// title is accepted.
func (s *State) EditTodoTitle(projectID, todoID uint64, title string) bool {
	t := s.Todo(projectID, todoID)
	if t == nil {
		return false
	}
	t.Title = title
	return true
}

// RemoveTodo deletes the todo from its project.
func (s *State) RemoveTodo(projectID, todoID uint64) bool {
	p := s.Project(projectID)
	if p == nil {
		return false
	}
	i := p.todoIndex(todoID)
	if i < 0 {
		return false
	}
	p.Todos = append(p.Todos[:i], p.Todos[i+1:]...)
	return true
}

// ClearCompleted removes every completed todo, keeping the order of the
// rest. It returns how many were removed.
func (s *State) ClearCompleted(projectID uint64) int {
	p := s.Project(projectID)
	if p == nil {
		return 0
	}
	kept := p.Todos[:0]
	removed := 0
	for _, t := range p.Todos {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	p.Todos = kept
	return removed
}

// ReorderTodo moves the src todo to the slot of dst: after removal it is
// inserted at dst-1 when it came from above, otherwise at dst. The todo
// slice is left untouched when src == dst or either id is unknown.
func (s *State) ReorderTodo(projectID, srcID, dstID uint64) bool {
	if srcID == dstID {
		return false
	}
	p := s.Project(projectID)
	if p == nil {
		return false
	}
	src, dst := p.todoIndex(srcID), p.todoIndex(dstID)
	if src < 0 || dst < 0 {
		return false
	}
	item := p.Todos[src]
	p.Todos = append(p.Todos[:src], p.Todos[src+1:]...)
	at := dst
	if src < dst {
		at = dst - 1
	}
	p.Todos = append(p.Todos, Todo{})
	copy(p.Todos[at+1:], p.Todos[at:])
	p.Todos[at] = item
	return true
}

// AddSubtask appends an incomplete subtask and marks the todo incomplete.
func (s *State) AddSubtask(projectID, todoID uint64, title string) (Subtask, bool) {
	title = strings.TrimSpace(title)
	t := s.Todo(projectID, todoID)
	if t == nil || title == "" {
		return Subtask{}, false
	}
	st := Subtask{ID: t.nextSubtaskID(), Title: title}
	t.Subtasks = append(t.Subtasks, st)
	t.Completed = false
	return st, true
}

// ToggleSubtask flips the subtask and recomputes the todo's completion.
func (s *State) ToggleSubtask(projectID, todoID, subtaskID uint64) bool {
	t := s.Todo(projectID, todoID)
	if t == nil {
		return false
	}
	i := t.subtaskIndex(subtaskID)
	if i < 0 {
		return false
	}
	t.Subtasks[i].Completed = !t.Subtasks[i].Completed
	t.syncCompletion()
	return true
}

// RemoveSubtask deletes the subtask. Removing the last one leaves the
// todo's completion as it was.
func (s *State) RemoveSubtask(projectID, todoID, subtaskID uint64) bool {
	t := s.Todo(projectID, todoID)
	if t == nil {
		return false
	}
	i := t.subtaskIndex(subtaskID)
	if i < 0 {
		return false
	}
	t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
	t.syncCompletion()
	return true
}

// UpdateDescription replaces the free-text description.
func (s *State) UpdateDescription(projectID, todoID uint64, text string) bool {
	t := s.Todo(projectID, todoID)
	if t == nil {
		return false
	}
	t.Description = text
	return true
}
