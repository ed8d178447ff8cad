package repos

import (
	"database/sql"
	"errors"
	"time"

	"desksync/internal/models"
)

var ErrNotFound = errors.New("not found")

type SyncRepo struct {
	db *sql.DB
}

func NewSyncRepo(db *sql.DB) *SyncRepo {
	return &SyncRepo{db: db}
}

func (r *SyncRepo) DB() *sql.DB {
	return r.db
}

func (r *SyncRepo) WithTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *SyncRepo) ListTasks(userID string) ([]models.Task, error) {
	rows, err := r.db.Query(`
		SELECT id, content, category, created_at, updated_at
		FROM tasks WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Content, &t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ReplaceTasksTx swaps the user's whole tasks slice for the given rows.
// Runs inside the caller's transaction so a failed insert rolls the delete
// back too.
func (r *SyncRepo) ReplaceTasksTx(tx *sql.Tx, userID string, tasks []models.Task) error {
	if _, err := tx.Exec(`DELETE FROM tasks WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, t := range tasks {
		_, err := tx.Exec(`
			INSERT INTO tasks (id, user_id, content, category, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, t.ID, userID, t.Content, t.Category, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SyncRepo) ListNotes(userID string) ([]models.Note, error) {
	rows, err := r.db.Query(`
		SELECT id, name, content, last_modified
		FROM notes WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Name, &n.Content, &n.LastModified); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *SyncRepo) ReplaceNotesTx(tx *sql.Tx, userID string, notes []models.Note) error {
	if _, err := tx.Exec(`DELETE FROM notes WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, n := range notes {
		_, err := tx.Exec(`
			INSERT INTO notes (id, user_id, name, content, last_modified)
			VALUES (?, ?, ?, ?, ?)
		`, n.ID, userID, n.Name, n.Content, n.LastModified)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SyncRepo) ListSessions(userID string) ([]models.WorkSession, error) {
	rows, err := r.db.Query(`
		SELECT id, start_time, duration, task_id, date
		FROM work_sessions WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.WorkSession, 0)
	for rows.Next() {
		var s models.WorkSession
		var taskID sql.NullString
		if err := rows.Scan(&s.ID, &s.StartTime, &s.Duration, &taskID, &s.Date); err != nil {
			return nil, err
		}
		if taskID.Valid {
			s.TaskID = &taskID.String
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SyncRepo) ReplaceSessionsTx(tx *sql.Tx, userID string, sessions []models.WorkSession) error {
	if _, err := tx.Exec(`DELETE FROM work_sessions WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, s := range sessions {
		var taskID any
		if s.TaskID != nil {
			taskID = *s.TaskID
		}
		_, err := tx.Exec(`
			INSERT INTO work_sessions (id, user_id, start_time, duration, task_id, date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, s.ID, userID, s.StartTime, s.Duration, taskID, s.Date)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSettings returns nil without error when the user has no settings row.
func (r *SyncRepo) GetSettings(userID string) (*models.Settings, error) {
	row := r.db.QueryRow(`
		SELECT background_url, background_fit
		FROM settings WHERE user_id = ?
	`, userID)
	var s models.Settings
	if err := row.Scan(&s.BackgroundURL, &s.BackgroundFit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SyncRepo) UpsertSettingsTx(tx *sql.Tx, userID string, s models.Settings) error {
	_, err := tx.Exec(`
		INSERT INTO settings (user_id, background_url, background_fit, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			background_url = excluded.background_url,
			background_fit = excluded.background_fit,
			updated_at = excluded.updated_at
	`, userID, s.BackgroundURL, s.BackgroundFit, time.Now().UTC())
	return err
}
