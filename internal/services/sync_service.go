package services

import (
	"database/sql"
	"fmt"
	"time"

	"desksync/internal/models"
	"desksync/internal/repos"
)

// ValidationError marks a malformed slice payload so the handler can answer
// 400 instead of 500. The slice it names was not committed.
type ValidationError struct {
	Slice  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Slice, e.Reason)
}

type SyncService struct {
	repo *repos.SyncRepo
}

func NewSyncService(repo *repos.SyncRepo) *SyncService {
	return &SyncService{repo: repo}
}

// Snapshot reads the full current value of every slice for the user.
// All-or-nothing: any read failure returns the error and no partial data.
func (s *SyncService) Snapshot(userID string) (*models.Snapshot, error) {
	tasks, err := s.repo.ListTasks(userID)
	if err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListSessions(userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.repo.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{
		Tasks:    tasks,
		Notes:    notes,
		Sessions: sessions,
		Settings: settings,
	}, nil
}

// Replace applies each slice present in the request independently: validate,
// then delete-all + insert-all (upsert for settings) inside that slice's own
// transaction. An absent field leaves its slice untouched; an explicit empty
// collection clears it. Processing stops at the first failure; slices that
// already committed stay committed, which is safe because the client always
// re-pushes a slice's complete value.
func (s *SyncService) Replace(userID string, req models.PushRequest) error {
	if req.Tasks != nil {
		if err := validateTasks(*req.Tasks); err != nil {
			return err
		}
		tasks := stampTasks(*req.Tasks)
		err := s.repo.WithTx(func(tx *sql.Tx) error {
			return s.repo.ReplaceTasksTx(tx, userID, tasks)
		})
		if err != nil {
			return fmt.Errorf("replace tasks: %w", err)
		}
	}
	if req.Notes != nil {
		if err := validateNotes(*req.Notes); err != nil {
			return err
		}
		err := s.repo.WithTx(func(tx *sql.Tx) error {
			return s.repo.ReplaceNotesTx(tx, userID, *req.Notes)
		})
		if err != nil {
			return fmt.Errorf("replace notes: %w", err)
		}
	}
	if req.Sessions != nil {
		if err := validateSessions(*req.Sessions); err != nil {
			return err
		}
		err := s.repo.WithTx(func(tx *sql.Tx) error {
			return s.repo.ReplaceSessionsTx(tx, userID, *req.Sessions)
		})
		if err != nil {
			return fmt.Errorf("replace sessions: %w", err)
		}
	}
	if req.Settings != nil {
		if err := validateSettings(*req.Settings); err != nil {
			return err
		}
		err := s.repo.WithTx(func(tx *sql.Tx) error {
			return s.repo.UpsertSettingsTx(tx, userID, *req.Settings)
		})
		if err != nil {
			return fmt.Errorf("upsert settings: %w", err)
		}
	}
	return nil
}

// stampTasks fills server-owned timestamps: updatedAt is always now,
// createdAt is kept when the client sent one.
func stampTasks(tasks []models.Task) []models.Task {
	now := time.Now().UTC()
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
		out[i] = t
	}
	return out
}

func validateTasks(tasks []models.Task) error {
	for i, t := range tasks {
		if t.ID == "" {
			return &ValidationError{Slice: "tasks", Reason: fmt.Sprintf("task %d missing id", i)}
		}
		if t.Content == "" {
			return &ValidationError{Slice: "tasks", Reason: fmt.Sprintf("task %q missing content", t.ID)}
		}
	}
	return nil
}

func validateNotes(notes []models.Note) error {
	for i, n := range notes {
		if n.ID == "" {
			return &ValidationError{Slice: "notes", Reason: fmt.Sprintf("note %d missing id", i)}
		}
		if n.Name == "" {
			return &ValidationError{Slice: "notes", Reason: fmt.Sprintf("note %q missing name", n.ID)}
		}
		if n.LastModified < 0 {
			return &ValidationError{Slice: "notes", Reason: fmt.Sprintf("note %q has negative lastModified", n.ID)}
		}
	}
	return nil
}

func validateSessions(sessions []models.WorkSession) error {
	for i, ws := range sessions {
		if ws.ID == "" {
			return &ValidationError{Slice: "sessions", Reason: fmt.Sprintf("session %d missing id", i)}
		}
		if ws.StartTime < 0 {
			return &ValidationError{Slice: "sessions", Reason: fmt.Sprintf("session %q has negative startTime", ws.ID)}
		}
		if ws.Duration < 0 {
			return &ValidationError{Slice: "sessions", Reason: fmt.Sprintf("session %q has negative duration", ws.ID)}
		}
		if ws.Date == "" {
			return &ValidationError{Slice: "sessions", Reason: fmt.Sprintf("session %q missing date", ws.ID)}
		}
	}
	return nil
}

func validateSettings(s models.Settings) error {
	for _, fit := range models.BackgroundFits {
		if s.BackgroundFit == fit {
			return nil
		}
	}
	return &ValidationError{Slice: "settings", Reason: fmt.Sprintf("unknown backgroundFit %q", s.BackgroundFit)}
}
