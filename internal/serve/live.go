package serve

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"techblog/internal/logging"
)

const reloadDebounce = 200 * time.Millisecond

// Hub fans reload notifications out to every connected SSE client.
type Hub struct {
	mu    sync.Mutex
	conns map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, 8)
	h.mu.Lock()
	h.conns[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[ch]; ok {
		delete(h.conns, ch)
		close(ch)
	}
}

// Broadcast drops the message for clients whose buffer is full.
func (h *Hub) Broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.conns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Watcher broadcasts "reload" once content stops changing for a short while.
type Watcher struct {
	hub  *Hub
	w    *fsnotify.Watcher
	log  logging.Logger
	wait time.Duration
}

func NewWatcher(hub *Hub, dirs []string, logger logging.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	lw := &Watcher{hub: hub, w: w, log: logging.OrNoOp(logger), wait: reloadDebounce}
	for _, dir := range dirs {
		if err := lw.addTree(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return lw, nil
}

func (lw *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return lw.w.Add(path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		lw.log.Warn("serve: watch root missing", "dir", root)
		return nil
	}
	return err
}

func (lw *Watcher) Close() error {
	return lw.w.Close()
}

// Run blocks until ctx is done or the watcher is closed.
func (lw *Watcher) Run(ctx context.Context) {
	lw.log.Info("serve: watching for content changes")
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-lw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				_ = lw.addTree(ev.Name)
			}
			debounce.Reset(lw.wait)
		case err, ok := <-lw.w.Errors:
			if !ok {
				return
			}
			lw.log.Warn("serve: watcher error", "error", err)
		case <-debounce.C:
			lw.log.Debug("serve: content changed, reloading clients", "clients", lw.hub.Clients())
			lw.hub.Broadcast("reload")
		}
	}
}
