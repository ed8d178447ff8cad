package models

import "time"

// Timestamps on notes and work sessions are unix milliseconds carried as
// plain JSON numbers. int64 round-trips exactly through encoding/json for
// values below 2^53 (the float64 safe-integer ceiling browser clients are
// bound to), which covers millisecond timestamps for the next ~285,000
// years. The server stores them as 64-bit INTEGER columns, never floats.

type Task struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type Note struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Content      string `json:"content"`
	LastModified int64  `json:"lastModified"`
}

// WorkSession.TaskID is a weak reference: the task may have been deleted
// since the session was recorded, and a dangling id is not an error.
type WorkSession struct {
	ID        string  `json:"id"`
	StartTime int64   `json:"startTime"`
	Duration  int64   `json:"duration"`
	TaskID    *string `json:"taskId,omitempty"`
	Date      string  `json:"date"`
}

type Settings struct {
	BackgroundURL string `json:"backgroundUrl"`
	BackgroundFit string `json:"backgroundFit"`
}

var BackgroundFits = []string{"cover", "contain", "fill"}

// Snapshot is the fetch response: the full current value of every slice.
// Settings is nil when the user has never pushed any.
type Snapshot struct {
	Tasks    []Task        `json:"tasks"`
	Notes    []Note        `json:"notes"`
	Sessions []WorkSession `json:"sessions"`
	Settings *Settings     `json:"settings"`
}

// PushRequest carries zero or more slices to replace. A nil field means the
// key was absent from the request and that slice must not be touched; a
// non-nil pointer to an empty collection means "replace with nothing".
// JSON null decodes to a nil pointer and is treated as absent.
type PushRequest struct {
	Tasks    *[]Task        `json:"tasks,omitempty"`
	Notes    *[]Note        `json:"notes,omitempty"`
	Sessions *[]WorkSession `json:"sessions,omitempty"`
	Settings *Settings      `json:"settings,omitempty"`
}
