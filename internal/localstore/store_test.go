package localstore

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"desksync/internal/models"
)

func TestOnChangeNotifiesOnlyThatSlice(t *testing.T) {
	s := New()
	var taskEvents, noteEvents int
	s.OnChange(SliceTasks, func() { taskEvents++ })
	s.OnChange(SliceNotes, func() { noteEvents++ })

	s.SetTasks([]models.Task{{ID: "t1", Content: "a"}})
	s.SetTasks([]models.Task{{ID: "t1", Content: "b"}})
	if taskEvents != 2 {
		t.Fatalf("expected 2 task events, got %d", taskEvents)
	}
	if noteEvents != 0 {
		t.Fatalf("task edits must not notify note listeners, got %d", noteEvents)
	}
}

func TestGettersReturnCopies(t *testing.T) {
	s := New()
	s.SetTasks([]models.Task{{ID: "t1", Content: "a"}})

	got := s.Tasks()
	got[0].Content = "mutated"
	if s.Tasks()[0].Content != "a" {
		t.Fatal("getter leaked internal slice")
	}

	set := s.Settings()
	if set != nil {
		t.Fatal("expected nil settings on fresh store")
	}
	s.SetSettings(models.Settings{BackgroundURL: "u", BackgroundFit: "cover"})
	cp := s.Settings()
	cp.BackgroundURL = "mutated"
	if s.Settings().BackgroundURL != "u" {
		t.Fatal("settings getter leaked internal pointer")
	}
}

func TestApplySnapshotSkipsEmptySlices(t *testing.T) {
	s := New()
	s.SetTasks([]models.Task{{ID: "t1", Content: "a"}, {ID: "t2", Content: "b"}})

	s.ApplySnapshot(models.Snapshot{
		Tasks:    []models.Task{},
		Notes:    []models.Note{{ID: "n1", Name: "A", Content: "x", LastModified: 1}},
		Settings: &models.Settings{BackgroundURL: "u", BackgroundFit: "fill"},
	})

	if len(s.Tasks()) != 2 {
		t.Fatalf("empty snapshot slice must not clear local tasks, got %d", len(s.Tasks()))
	}
	if len(s.Notes()) != 1 {
		t.Fatalf("non-empty snapshot slice must overwrite, got %d notes", len(s.Notes()))
	}
	if got := s.Settings(); got == nil || got.BackgroundFit != "fill" {
		t.Fatalf("settings not applied: %+v", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := New()
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.SetTasks([]models.Task{{ID: "t1", Content: "a", Category: "home", CreatedAt: created, UpdatedAt: created}})
	s.SetNotes([]models.Note{{ID: "n1", Name: "A", Content: "x", LastModified: 1700000000123}})
	taskID := "t1"
	s.SetSessions([]models.WorkSession{{ID: "s1", StartTime: 1700000000123, Duration: 1500000, TaskID: &taskID, Date: "2023-11-14"}})
	s.SetSettings(models.Settings{BackgroundURL: "u", BackgroundFit: "contain"})

	if err := s.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	snap, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := s.Snapshot()
	if !reflect.DeepEqual(*snap, want) {
		t.Fatalf("state did not round-trip through disk:\n got %+v\nwant %+v", *snap, want)
	}
}

func TestConstructorsAssignUniqueIDs(t *testing.T) {
	a := NewTask("one", "home")
	b := NewTask("two", "work")
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique ids, got %q and %q", a.ID, b.ID)
	}
	n := NewNote("name", "content")
	if n.LastModified <= 0 {
		t.Fatalf("expected lastModified to be stamped, got %d", n.LastModified)
	}
}
