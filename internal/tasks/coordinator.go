// Package tasks runs background work off the bubbletea update loop and keeps a
// shared busy indicator for everything in flight.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/chmouel/simplegit/internal/log"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Task is a unit of background work. It may block on subprocesses; its return
// value is delivered back to the interactive loop.
type Task func(ctx context.Context) tea.Msg

// DoneMsg wraps the result of a task submitted through Submit. Update must hand
// it to Complete, which releases the task's hold on the busy indicator.
type DoneMsg struct {
	ID      string
	Name    string
	Msg     tea.Msg
	Elapsed time.Duration
}

// PanicMsg is returned in place of a task result when the task panicked.
type PanicMsg struct {
	Name string
	Err  error
}

type running struct {
	name    string
	started time.Time
}

// Coordinator tracks in-flight tasks. Busy stays true from the first submit until
// the last outstanding task completes, in whatever order they finish.
type Coordinator struct {
	ctx    context.Context
	mu     sync.Mutex
	tasks  map[string]running
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a Coordinator whose tasks receive ctx.
func New(ctx context.Context) *Coordinator {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Coordinator{
		ctx:    ctx,
		tasks:  make(map[string]running),
		logger: log.With("tasks"),
		now:    time.Now,
	}
}

func (c *Coordinator) begin(name string) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.tasks[id] = running{name: name, started: c.now()}
	count := len(c.tasks)
	c.mu.Unlock()
	c.logger.Debug().Str("task", name).Str("id", id).Int("inflight", count).Msg("submitted")
	return id
}

// finish releases one task. Unknown or already released IDs are ignored so a
// duplicated completion can never clear the indicator for a sibling task.
func (c *Coordinator) finish(id string) (time.Duration, bool) {
	c.mu.Lock()
	task, ok := c.tasks[id]
	if ok {
		delete(c.tasks, id)
	}
	count := len(c.tasks)
	c.mu.Unlock()
	if !ok {
		return 0, false
	}
	elapsed := c.now().Sub(task.started)
	c.logger.Debug().Str("task", task.name).Str("id", id).Int("inflight", count).Dur("elapsed", elapsed).Msg("completed")
	return elapsed, true
}

func (c *Coordinator) run(name string, task Task) (msg tea.Msg) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("task", name).Interface("panic", r).Msg("task panicked")
			msg = PanicMsg{Name: name, Err: fmt.Errorf("task %s panicked: %v", name, r)}
		}
	}()
	return task(c.ctx)
}

// Submit registers the task as in flight immediately and returns a command for
// the bubbletea runtime, which executes it on its own goroutine. The result comes
// back to Update as a DoneMsg.
func (c *Coordinator) Submit(name string, task Task) tea.Cmd {
	id := c.begin(name)
	return func() tea.Msg {
		start := c.now()
		msg := c.run(name, task)
		return DoneMsg{ID: id, Name: name, Msg: msg, Elapsed: c.now().Sub(start)}
	}
}

// Complete releases a task submitted with Submit and returns its inner message.
func (c *Coordinator) Complete(done DoneMsg) tea.Msg {
	c.finish(done.ID)
	return done.Msg
}

// Go runs the task on a new goroutine and passes its result to deliver once the
// task has been released. deliver is typically tea.Program.Send.
func (c *Coordinator) Go(name string, task Task, deliver func(tea.Msg)) {
	id := c.begin(name)
	go func() {
		msg := c.run(name, task)
		c.finish(id)
		if deliver != nil {
			deliver(msg)
		}
	}()
}

// InFlight returns the number of outstanding tasks.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Busy reports whether any task is outstanding.
func (c *Coordinator) Busy() bool {
	return c.InFlight() > 0
}

// Running returns the names of outstanding tasks, oldest first.
func (c *Coordinator) Running() []string {
	c.mu.Lock()
	list := make([]running, 0, len(c.tasks))
	for _, t := range c.tasks {
		list = append(list, t)
	}
	c.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].started.Equal(list[j].started) {
			return list[i].name < list[j].name
		}
		return list[i].started.Before(list[j].started)
	})
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.name
	}
	return names
}
