// desksync-agent is a headless client: it keeps a JSON state file in sync
// with a desksync server. At startup it loads the file, hydrates from the
// server, and writes the reconciled state back; afterwards it watches the
// file so edits made by other programs flow into the local store and get
// pushed after the debounce window.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"desksync/internal/config"
	"desksync/internal/engine"
	"desksync/internal/localstore"
	"desksync/internal/logging"
	"desksync/internal/models"

	"github.com/fsnotify/fsnotify"
)

func main() {
	cfg := config.LoadAgent()
	log := logging.New(cfg.LogLevel)

	store := localstore.New()
	if snap, err := localstore.LoadFile(cfg.StateFile); err == nil {
		store.ApplySnapshot(*snap)
	} else if !os.IsNotExist(err) {
		log.Warnf("state file %s unreadable, starting empty: %v", cfg.StateFile, err)
	}

	client := engine.NewClient(&http.Client{Timeout: 15 * time.Second}, cfg.ServerURL, cfg.AuthToken, cfg.UserID)
	eng := engine.New(store, client, engine.Options{
		Cooldown: cfg.Cooldown,
		Debounce: cfg.Debounce,
		Logger:   log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		log.Warnf("continuing with local state only: %v", err)
	}
	if err := store.SaveFile(cfg.StateFile); err != nil {
		log.Errorf("write state file: %v", err)
	}

	// The watcher starts after our own post-hydration write, so the only
	// events seen are external edits.
	go watchStateFile(ctx, cfg.StateFile, store, log)

	<-ctx.Done()
	eng.Stop()
	if err := store.SaveFile(cfg.StateFile); err != nil {
		log.Errorf("write state file: %v", err)
	}
}

func watchStateFile(ctx context.Context, path string, store *localstore.Store, log *logging.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Errorf("file watch unavailable: %v", err)
		return
	}
	defer watcher.Close()

	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Errorf("watch %s: %v", filepath.Dir(path), err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			snap, err := localstore.LoadFile(path)
			if err != nil {
				// Partial write; the next event will carry the full file.
				log.Debugf("skip unreadable state file: %v", err)
				continue
			}
			applyFileEdit(store, *snap)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("file watch: %v", err)
		}
	}
}

// applyFileEdit feeds an external edit into the store. Every slice is set
// from the file, including empty ones: unlike hydration, a local edit that
// empties a slice is a real deletion and must propagate.
func applyFileEdit(store *localstore.Store, snap models.Snapshot) {
	store.SetTasks(snap.Tasks)
	store.SetNotes(snap.Notes)
	store.SetSessions(snap.Sessions)
	if snap.Settings != nil {
		store.SetSettings(*snap.Settings)
	}
}
