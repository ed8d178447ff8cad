package localstore

import (
	"sync"
	"time"

	"desksync/internal/models"

	"github.com/google/uuid"
)

// Slice names one of the four independently synced data categories.
type Slice string

const (
	SliceTasks    Slice = "tasks"
	SliceNotes    Slice = "notes"
	SliceSessions Slice = "sessions"
	SliceSettings Slice = "settings"
)

var Slices = []Slice{SliceTasks, SliceNotes, SliceSessions, SliceSettings}

// Store is the client-side state container: the four slices behind one
// mutex, with per-slice change listeners. Created at session start, torn
// down at session end. Getters return copies; setters store a copy and then
// notify listeners outside the lock.
type Store struct {
	mu sync.RWMutex

	tasks    []models.Task
	notes    []models.Note
	sessions []models.WorkSession
	settings *models.Settings

	listeners map[Slice][]func()
}

func New() *Store {
	return &Store{listeners: make(map[Slice][]func())}
}

// OnChange registers fn to run after every mutation of the given slice.
// Callbacks run on the mutating goroutine, never under the store lock.
func (s *Store) OnChange(slice Slice, fn func()) {
	s.mu.Lock()
	s.listeners[slice] = append(s.listeners[slice], fn)
	s.mu.Unlock()
}

func (s *Store) notify(slice Slice) {
	s.mu.RLock()
	fns := append([]func(){}, s.listeners[slice]...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Task{}, s.tasks...)
}

func (s *Store) SetTasks(tasks []models.Task) {
	s.mu.Lock()
	s.tasks = append([]models.Task{}, tasks...)
	s.mu.Unlock()
	s.notify(SliceTasks)
}

func (s *Store) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Note{}, s.notes...)
}

func (s *Store) SetNotes(notes []models.Note) {
	s.mu.Lock()
	s.notes = append([]models.Note{}, notes...)
	s.mu.Unlock()
	s.notify(SliceNotes)
}

func (s *Store) Sessions() []models.WorkSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WorkSession{}, s.sessions...)
}

func (s *Store) SetSessions(sessions []models.WorkSession) {
	s.mu.Lock()
	s.sessions = append([]models.WorkSession{}, sessions...)
	s.mu.Unlock()
	s.notify(SliceSessions)
}

func (s *Store) Settings() *models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil
	}
	cp := *s.settings
	return &cp
}

func (s *Store) SetSettings(settings models.Settings) {
	s.mu.Lock()
	s.settings = &settings
	s.mu.Unlock()
	s.notify(SliceSettings)
}

// Snapshot copies the full current state, in the same shape the server
// returns from a fetch.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.Snapshot{
		Tasks:    append([]models.Task{}, s.tasks...),
		Notes:    append([]models.Note{}, s.notes...),
		Sessions: append([]models.WorkSession{}, s.sessions...),
	}
	if s.settings != nil {
		cp := *s.settings
		snap.Settings = &cp
	}
	return snap
}

// ApplySnapshot overwrites each slice the snapshot carries a non-empty
// value for. An empty or absent server slice keeps whatever is local:
// "server has nothing yet" must not wipe local data.
func (s *Store) ApplySnapshot(snap models.Snapshot) {
	if len(snap.Tasks) > 0 {
		s.SetTasks(snap.Tasks)
	}
	if len(snap.Notes) > 0 {
		s.SetNotes(snap.Notes)
	}
	if len(snap.Sessions) > 0 {
		s.SetSessions(snap.Sessions)
	}
	if snap.Settings != nil {
		s.SetSettings(*snap.Settings)
	}
}

func NewTask(content, category string) models.Task {
	return models.Task{
		ID:        uuid.NewString(),
		Content:   content,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
}

func NewNote(name, content string) models.Note {
	return models.Note{
		ID:           uuid.NewString(),
		Name:         name,
		Content:      content,
		LastModified: time.Now().UnixMilli(),
	}
}

func NewWorkSession(startTime, duration int64, taskID *string, date string) models.WorkSession {
	return models.WorkSession{
		ID:        uuid.NewString(),
		StartTime: startTime,
		Duration:  duration,
		TaskID:    taskID,
		Date:      date,
	}
}
