package engine

import (
	"context"
	"sync"
	"time"

	"desksync/internal/localstore"
	"desksync/internal/logging"
	"desksync/internal/models"
)

const (
	defaultCooldown    = time.Second
	defaultDebounce    = 2 * time.Second
	defaultPushTimeout = 10 * time.Second
)

type Options struct {
	// Cooldown is the guard window after hydration resolves before local
	// changes count as user edits. Debounce is the quiet period per slice
	// before an edit is pushed. Zero values take the defaults.
	Cooldown    time.Duration
	Debounce    time.Duration
	PushTimeout time.Duration
	Logger      *logging.Logger
}

// Engine keeps the local store and the sync service eventually consistent.
// It hydrates the store from the server once at session start, then watches
// each slice and pushes its full current value after the debounce window.
// Push and fetch failures are logged and dropped: the user keeps working on
// local state, and the next edit or the next session's hydration reconciles.
type Engine struct {
	store  *localstore.Store
	client *Client
	log    *logging.Logger

	cooldown    time.Duration
	pushTimeout time.Duration
	debouncers  map[localstore.Slice]*debouncer

	mu            sync.Mutex
	started       bool
	hydrating     bool
	hasLoaded     bool
	cooldownTimer *time.Timer
}

func New(store *localstore.Store, client *Client, opts Options) *Engine {
	if opts.Cooldown <= 0 {
		opts.Cooldown = defaultCooldown
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = defaultPushTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("info")
	}

	e := &Engine{
		store:       store,
		client:      client,
		log:         opts.Logger,
		cooldown:    opts.Cooldown,
		pushTimeout: opts.PushTimeout,
		debouncers:  make(map[localstore.Slice]*debouncer),
	}
	for _, slice := range localstore.Slices {
		slice := slice
		e.debouncers[slice] = newDebouncer(opts.Debounce, func() { e.push(slice) })
		store.OnChange(slice, func() { e.observe(slice) })
	}
	return e
}

// Start hydrates the local store from the server: each slice the server has
// data for is overwritten wholesale, each slice the server has nothing for
// keeps its local value. Whether the fetch succeeds or fails, the engine
// becomes writable after the cooldown window so a fetch failure cannot leave
// it stuck. The returned error is the fetch error, for callers that want to
// surface it; the engine itself has already logged and moved on.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = true
	e.hydrating = true
	e.mu.Unlock()

	snap, err := e.client.Fetch(ctx)
	if err != nil {
		e.log.Warnf("hydration fetch failed, keeping local state: %v", err)
	} else {
		e.store.ApplySnapshot(*snap)
	}

	// Hydration itself mutates the store. The guard window lets those
	// notifications drain before edits are honored, so the engine does not
	// push the just-pulled data straight back.
	e.mu.Lock()
	e.cooldownTimer = time.AfterFunc(e.cooldown, func() {
		e.mu.Lock()
		e.hydrating = false
		e.hasLoaded = true
		e.mu.Unlock()
	})
	e.mu.Unlock()
	return err
}

// Stop cancels pending timers. In-flight pushes run to completion and their
// results are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.cooldownTimer != nil {
		e.cooldownTimer.Stop()
	}
	e.mu.Unlock()
	for _, d := range e.debouncers {
		d.Stop()
	}
}

func (e *Engine) writable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasLoaded && !e.hydrating
}

func (e *Engine) observe(slice localstore.Slice) {
	if !e.writable() {
		return
	}
	e.debouncers[slice].Trigger()
}

// push sends one slice's full current value, read at fire time so the
// payload is never stale relative to the last observed edit.
func (e *Engine) push(slice localstore.Slice) {
	var req models.PushRequest
	switch slice {
	case localstore.SliceTasks:
		v := e.store.Tasks()
		req.Tasks = &v
	case localstore.SliceNotes:
		v := e.store.Notes()
		req.Notes = &v
	case localstore.SliceSessions:
		v := e.store.Sessions()
		req.Sessions = &v
	case localstore.SliceSettings:
		s := e.store.Settings()
		if s == nil {
			return
		}
		req.Settings = s
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.pushTimeout)
	defer cancel()
	if err := e.client.Push(ctx, req); err != nil {
		e.log.Warnf("push %s failed, will retry on next edit: %v", slice, err)
	}
}
