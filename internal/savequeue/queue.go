// Package savequeue writes module progress through to the backend off the
// request path.
package savequeue

import (
	"context"
	"course-view-go/internal/model"
	"course-view-go/internal/session"
	"errors"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

var (
	ErrClosed = errors.New("save queue closed")
	ErrFull   = errors.New("save queue full")
)

type Saver interface {
	SaveModuleProgress(ctx context.Context, sess session.Session, moduleID model.ID, p model.ModuleProgress) error
}

type key struct {
	userID   string
	moduleID model.ID
}

type job struct {
	sess     session.Session
	moduleID model.ID
	progress model.ModuleProgress
}

// Queue sends full flag sets to the backend one at a time. A save still waiting
// for its turn is replaced by a newer one for the same user and module, so the
// backend only ever sees the latest state. Failed saves are logged and dropped.
type Queue struct {
	saver   Saver
	timeout time.Duration
	size    int

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[key]job
	order   []key
	closed  bool

	done chan struct{}
}

func New(saver Saver, size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = 1
	}

	q := &Queue{
		saver:   saver,
		timeout: timeout,
		size:    size,
		pending: make(map[key]job),
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	go q.run()

	return q
}

// Enqueue schedules an upsert of p. Saves without a session are skipped.
func (q *Queue) Enqueue(sess session.Session, moduleID model.ID, p model.ModuleProgress) error {
	if !sess.Valid() {
		return nil
	}

	k := key{userID: sess.UserID, moduleID: moduleID}
	j := job{sess: sess, moduleID: moduleID, progress: p}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	if _, ok := q.pending[k]; ok {
		q.pending[k] = j
		return nil
	}

	if len(q.order) >= q.size {
		log.WithFields(log.Fields{
			"user_id":   sess.UserID,
			"module_id": moduleID,
		}).Error("dropping progress save: queue full")
		return ErrFull
	}

	q.pending[k] = j
	q.order = append(q.order, k)
	q.cond.Signal()

	return nil
}

func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Close stops accepting saves and waits for the pending ones to be sent.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) next() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.order) == 0 {
		if q.closed {
			return job{}, false
		}
		q.cond.Wait()
	}

	k := q.order[0]
	q.order = q.order[1:]
	j := q.pending[k]
	delete(q.pending, k)

	return j, true
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		j, ok := q.next()
		if !ok {
			return
		}
		q.save(j)
	}
}

func (q *Queue) save(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	fields := log.Fields{
		"user_id":          j.sess.UserID,
		"module_id":        j.moduleID,
		"reading_material": j.progress.ReadingMaterial,
		"video":            j.progress.Video,
		"assignment":       j.progress.Assignment,
		"quiz":             j.progress.Quiz,
	}

	if err := q.saver.SaveModuleProgress(ctx, j.sess, j.moduleID, j.progress); err != nil {
		log.WithFields(fields).Errorf("saving module progress: %v", err)
		return
	}

	log.WithFields(fields).Debug("module progress saved")
}
