package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"desksync/internal/config"
	"desksync/internal/handlers"
	"desksync/internal/logging"
	"desksync/internal/repos"
	"desksync/internal/services"

	_ "modernc.org/sqlite"
)

func setupRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE tasks (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, id)
		);`,
		`CREATE TABLE notes (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			content TEXT NOT NULL,
			last_modified INTEGER NOT NULL,
			PRIMARY KEY (user_id, id)
		);`,
		`CREATE TABLE work_sessions (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			duration INTEGER NOT NULL,
			task_id TEXT,
			date TEXT NOT NULL,
			PRIMARY KEY (user_id, id)
		);`,
		`CREATE TABLE settings (
			user_id TEXT PRIMARY KEY,
			background_url TEXT NOT NULL DEFAULT '',
			background_fit TEXT NOT NULL DEFAULT 'cover',
			updated_at DATETIME NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}

	log := logging.New("error")
	repo := repos.NewSyncRepo(db)
	svc := services.NewSyncService(repo)
	h := handlers.NewSyncHandler(svc, log)
	return NewRouter(cfg, log, h)
}

func doJSON(r http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUnauthorizedWithoutIdentity(t *testing.T) {
	r := setupRouter(t, config.Config{})

	if rec := doJSON(r, http.MethodGet, "/api/sync/v1/data", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("fetch without identity: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec := doJSON(r, http.MethodPost, "/api/sync/v1/data", "", `{"tasks":[{"id":"t1","content":"x"}]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("push without identity: status=%d body=%s", rec.Code, rec.Body.String())
	}

	// The rejected push must not have mutated the store.
	after := doJSON(r, http.MethodGet, "/api/sync/v1/data", "u1", "")
	if after.Code != http.StatusOK {
		t.Fatalf("fetch status=%d body=%s", after.Code, after.Body.String())
	}
	var snap map[string]any
	_ = json.Unmarshal(after.Body.Bytes(), &snap)
	if tasks, _ := snap["tasks"].([]any); len(tasks) != 0 {
		t.Fatalf("expected no tasks after rejected push, got %v", tasks)
	}
}

func TestBearerTokenEnforcedWhenConfigured(t *testing.T) {
	r := setupRouter(t, config.Config{AuthToken: "s3cret"})

	rec := doJSON(r, http.MethodGet, "/api/sync/v1/data", "u1", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sync/v1/data", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("Authorization", "Bearer s3cret")
	ok := httptest.NewRecorder()
	r.ServeHTTP(ok, req)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d body=%s", ok.Code, ok.Body.String())
	}
}

func TestPushFetchFlow(t *testing.T) {
	r := setupRouter(t, config.Config{})

	push := doJSON(r, http.MethodPost, "/api/sync/v1/data", "u1", `{
		"notes": [{"id":"n1","name":"A","content":"x","lastModified":1000}],
		"sessions": [{"id":"s1","startTime":1700000000123,"duration":1500000,"date":"2023-11-14"}]
	}`)
	if push.Code != http.StatusOK {
		t.Fatalf("push status=%d body=%s", push.Code, push.Body.String())
	}
	var pushBody map[string]any
	_ = json.Unmarshal(push.Body.Bytes(), &pushBody)
	if ok, _ := pushBody["success"].(bool); !ok {
		t.Fatalf("expected success=true, got %s", push.Body.String())
	}

	fetch := doJSON(r, http.MethodGet, "/api/sync/v1/data", "u1", "")
	if fetch.Code != http.StatusOK {
		t.Fatalf("fetch status=%d body=%s", fetch.Code, fetch.Body.String())
	}
	body := fetch.Body.String()
	if !strings.Contains(body, `"lastModified":1000`) {
		t.Fatalf("note lastModified missing or mangled: %s", body)
	}
	if !strings.Contains(body, `"startTime":1700000000123`) {
		t.Fatalf("startTime lost precision on the wire: %s", body)
	}
	if !strings.Contains(body, `"settings":null`) {
		t.Fatalf("expected null settings for fresh user: %s", body)
	}

	// Other user sees nothing.
	other := doJSON(r, http.MethodGet, "/api/sync/v1/data", "u2", "")
	if strings.Contains(other.Body.String(), "n1") {
		t.Fatalf("cross-user visibility: %s", other.Body.String())
	}
}

func TestBadRequestOnMalformedPayload(t *testing.T) {
	r := setupRouter(t, config.Config{})

	rec := doJSON(r, http.MethodPost, "/api/sync/v1/data", "u1", `{"tasks":[{"id":"t1"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for task without content, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(r, http.MethodPost, "/api/sync/v1/data", "u1", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHealthzOpen(t *testing.T) {
	r := setupRouter(t, config.Config{AuthToken: "s3cret"})
	rec := doJSON(r, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rec.Code)
	}
}
