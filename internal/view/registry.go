package view

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

type View interface {
	Kind() string
	Mount()
	Unmount()
	Settled() <-chan struct{}
	Snapshot() interface{}
}

type entry struct {
	view       View
	ownerID    string
	lastAccess time.Time
}

// Registry keeps the mounted views of every user. Views that are not accessed
// for the idle timeout are unmounted by Sweep.
type Registry struct {
	idle time.Duration
	now  func() time.Time

	mu    sync.Mutex
	views map[string]*entry
}

func NewRegistry(idle time.Duration) *Registry {
	return &Registry{
		idle:  idle,
		now:   time.Now,
		views: make(map[string]*entry),
	}
}

func (r *Registry) Mount(ownerID string, v View) string {
	id := uuid.New().String()

	r.mu.Lock()
	r.views[id] = &entry{view: v, ownerID: ownerID, lastAccess: r.now()}
	r.mu.Unlock()

	v.Mount()

	log.WithFields(log.Fields{
		"view_id": id,
		"kind":    v.Kind(),
	}).Debug("view mounted")

	return id
}

// Get returns the view if ownerID owns it. Views of other users look missing.
// Anonymous views are owned by "", so for them the random view id is the only
// credential.
func (r *Registry) Get(id, ownerID string) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[id]
	if !ok || e.ownerID != ownerID {
		return nil, fmt.Errorf("view %s: %w", id, ErrNotFound)
	}
	e.lastAccess = r.now()

	return e.view, nil
}

func (r *Registry) Course(id, ownerID string) (*CourseOverview, error) {
	v, err := r.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	c, ok := v.(*CourseOverview)
	if !ok {
		return nil, fmt.Errorf("view %s is a %s: %w", id, v.Kind(), ErrWrongKind)
	}
	return c, nil
}

func (r *Registry) Module(id, ownerID string) (*ModuleDetail, error) {
	v, err := r.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	m, ok := v.(*ModuleDetail)
	if !ok {
		return nil, fmt.Errorf("view %s is a %s: %w", id, v.Kind(), ErrWrongKind)
	}
	return m, nil
}

func (r *Registry) Unmount(id, ownerID string) error {
	r.mu.Lock()
	e, ok := r.views[id]
	if !ok || e.ownerID != ownerID {
		r.mu.Unlock()
		return fmt.Errorf("view %s: %w", id, ErrNotFound)
	}
	delete(r.views, id)
	r.mu.Unlock()

	e.view.Unmount()
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep unmounts every view idle for longer than the timeout and returns how
// many it removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	var stale []View
	r.mu.Lock()
	for id, e := range r.views {
		if e.lastAccess.Before(cutoff) {
			stale = append(stale, e.view)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range stale {
		v.Unmount()
	}

	if len(stale) > 0 {
		log.Infof("unmounted %d idle views", len(stale))
	}
	return len(stale)
}

// StartSweeper runs Sweep on the given cron schedule, e.g. "@every 1m".
func (r *Registry) StartSweeper(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.Sweep() }); err != nil {
		return nil, fmt.Errorf("scheduling view sweep %q: %w", schedule, err)
	}
	c.Start()

	return c, nil
}

func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range views {
		e.view.Unmount()
	}
}
