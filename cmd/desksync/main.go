package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"desksync/internal/config"
	"desksync/internal/handlers"
	httpapi "desksync/internal/http"
	"desksync/internal/logging"
	"desksync/internal/repos"
	"desksync/internal/services"

	_ "modernc.org/sqlite"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	if err := runMigrations(db, cfg.MigrationsDir); err != nil {
		panic(err)
	}

	repo := repos.NewSyncRepo(db)
	svc := services.NewSyncService(repo)
	h := handlers.NewSyncHandler(svc, log)
	r := httpapi.NewRouter(cfg, log, h)

	addr := ":" + cfg.Port
	log.Infof("desksync listening on %s", addr)
	if err := r.Run(addr); err != nil {
		panic(err)
	}
}

func runMigrations(db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		stmts, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(stmts)); err != nil {
			return fmt.Errorf("apply migration %s: %w", f, err)
		}
	}
	return nil
}
