// Package watch signals when a repository's git metadata or working tree changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chmouel/simplegit/internal/git"
	log "github.com/chmouel/simplegit/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Debounce is the minimum spacing between two refreshes triggered by the watcher.
const Debounce = 600 * time.Millisecond

// Watcher turns filesystem activity under a repository into coalesced change signals.
type Watcher struct {
	Started     bool
	Waiting     bool
	GitDir      string
	Roots       []string
	Events      chan struct{}
	Done        chan struct{}
	Paths       map[string]struct{}
	Mu          sync.Mutex
	LastRefresh time.Time

	fs     *fsnotify.Watcher
	exec   git.Executor
	repo   string
	logger zerolog.Logger
}

// New creates a watcher for the repository at repoPath.
func New(exec git.Executor, repoPath string) *Watcher {
	return &Watcher{
		exec:   exec,
		repo:   repoPath,
		logger: log.With("watch"),
	}
}

// Start resolves the git directory and begins watching. It returns false without
// error when watching is disabled or the git directory cannot be found.
func (w *Watcher) Start(ctx context.Context, enabled bool) (bool, error) {
	if w.Started || !enabled {
		return false, nil
	}
	gitDir := w.resolveGitDir(ctx)
	if gitDir == "" {
		w.logger.Debug().Str("repo", w.repo).Msg("unable to resolve git dir")
		return false, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}

	w.Started = true
	w.fs = watcher
	w.GitDir = gitDir
	w.Events = make(chan struct{}, 1)
	w.Done = make(chan struct{})
	w.Paths = make(map[string]struct{})
	w.Roots = []string{filepath.Join(gitDir, "refs"), w.repo}

	// HEAD and index live directly in the git dir. Only refs/ is walked below
	// it; the working tree is walked in full.
	w.addWatchDir(gitDir)
	for _, root := range w.Roots {
		w.addWatchTree(root)
	}

	go w.run()
	return true, nil
}

// Stop stops the watcher and closes its channels.
func (w *Watcher) Stop() {
	if !w.Started {
		return
	}
	close(w.Done)
	w.Started = false
	if w.fs != nil {
		_ = w.fs.Close()
	}
}

// NextEvent returns the event channel unless a receive on it is already pending.
func (w *Watcher) NextEvent() <-chan struct{} {
	if w.Events == nil || w.Waiting {
		return nil
	}
	w.Waiting = true
	return w.Events
}

// ResetWaiting clears the waiting flag after an event is processed.
func (w *Watcher) ResetWaiting() {
	w.Waiting = false
}

// ShouldRefresh applies the debounce window to an event observed at now.
func (w *Watcher) ShouldRefresh(now time.Time) bool {
	if !w.LastRefresh.IsZero() && now.Sub(w.LastRefresh) < Debounce {
		return false
	}
	w.LastRefresh = now
	return true
}

// Signal notifies listeners of watcher activity. Repeated signals coalesce.
func (w *Watcher) Signal() {
	select {
	case <-w.Done:
		return
	default:
	}
	select {
	case w.Events <- struct{}{}:
	default:
	}
}

// IsUnderRoot reports whether path is inside one of the recursive watch roots.
func (w *Watcher) IsUnderRoot(path string) bool {
	if path == "" {
		return false
	}
	for _, root := range w.Roots {
		if root == "" {
			continue
		}
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Relevant filters out lock-file churn that git produces on every command,
// including the read-only ones issued by a refresh.
func Relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return !strings.HasSuffix(event.Name, ".lock")
}

// skipDir reports whether path is git metadata outside refs/.
func (w *Watcher) skipDir(path string) bool {
	if w.GitDir == "" {
		return false
	}
	if path != w.GitDir && !strings.HasPrefix(path, w.GitDir+string(filepath.Separator)) {
		return false
	}
	refs := filepath.Join(w.GitDir, "refs")
	return path != refs && !strings.HasPrefix(path, refs+string(filepath.Separator))
}

func (w *Watcher) maybeWatchNewDir(path string) {
	if !w.IsUnderRoot(path) || w.skipDir(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addWatchDir(path)
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.Done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !Relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			w.Signal()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Debug().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) addWatchDir(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.Mu.Lock()
	defer w.Mu.Unlock()

	if _, ok := w.Paths[path]; ok {
		return
	}
	if err := w.fs.Add(path); err != nil {
		w.logger.Debug().Err(err).Str("path", path).Msg("add failed")
		return
	}
	w.Paths[path] = struct{}{}
}

func (w *Watcher) addWatchTree(root string) {
	if root == "" {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		w.addWatchDir(path)
		return nil
	})
}

func (w *Watcher) resolveGitDir(ctx context.Context) string {
	if w.exec == nil {
		return ""
	}
	res := w.exec.Execute(ctx, []string{"rev-parse", "--git-dir"}, w.repo)
	if !res.Success() {
		return ""
	}
	gitDir := strings.TrimSpace(res.Stdout)
	if gitDir == "" {
		return ""
	}
	if filepath.IsAbs(gitDir) {
		return gitDir
	}
	return filepath.Join(w.repo, gitDir)
}
