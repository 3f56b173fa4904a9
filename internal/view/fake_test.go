package view

import (
	"context"
	"course-view-go/internal/backend"
	"course-view-go/internal/model"
	"course-view-go/internal/session"
	"errors"
	"github.com/stretchr/testify/require"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var (
	errBackend = errors.New("backend unavailable")
	learner    = session.Session{UserID: "7", Token: "tok"}
)

// fakeBackend is an in-memory backend.Client. Any call waits on gate first when
// gate is set.
type fakeBackend struct {
	course       model.Course
	courseErr    error
	courseProg   int
	courseProgEr error

	progress    map[model.ID]model.ModuleProgress
	progressErr map[model.ID]error

	module         model.Module
	moduleErr      error
	materials      []model.ReadingMaterial
	materialsErr   error
	videos         []model.VideoLecture
	videosErr      error
	assignments    []model.Assignment
	assignmentsErr error
	document       []byte
	downloadErr    error

	gate chan struct{}
	// progressGate holds only the module progress fetches
	progressGate chan struct{}

	progressCalls int32
	downloads     int32
	saves         int32
}

var _ backend.Client = (*fakeBackend)(nil)

func (f *fakeBackend) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) GetCourse(ctx context.Context, courseID model.ID) (model.Course, error) {
	if err := f.wait(ctx); err != nil {
		return model.Course{}, err
	}
	return f.course, f.courseErr
}

func (f *fakeBackend) GetCourseProgress(ctx context.Context, courseID model.ID) (int, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	return f.courseProg, f.courseProgEr
}

func (f *fakeBackend) GetModuleProgress(ctx context.Context, sess session.Session, moduleID model.ID) (model.ModuleProgress, error) {
	atomic.AddInt32(&f.progressCalls, 1)
	if err := f.wait(ctx); err != nil {
		return model.ModuleProgress{}, err
	}
	if f.progressGate != nil {
		select {
		case <-f.progressGate:
		case <-ctx.Done():
			return model.ModuleProgress{}, ctx.Err()
		}
	}
	if err := f.progressErr[moduleID]; err != nil {
		return model.ModuleProgress{}, err
	}
	return f.progress[moduleID], nil
}

func (f *fakeBackend) SaveModuleProgress(ctx context.Context, sess session.Session, moduleID model.ID, p model.ModuleProgress) error {
	atomic.AddInt32(&f.saves, 1)
	return nil
}

func (f *fakeBackend) GetModule(ctx context.Context, sess session.Session, courseID, moduleID model.ID) (model.Module, error) {
	if err := f.wait(ctx); err != nil {
		return model.Module{}, err
	}
	return f.module, f.moduleErr
}

func (f *fakeBackend) GetReadingMaterials(ctx context.Context, sess session.Session, moduleID model.ID) ([]model.ReadingMaterial, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.materials, f.materialsErr
}

func (f *fakeBackend) GetVideoLectures(ctx context.Context, sess session.Session, moduleID model.ID) ([]model.VideoLecture, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.videos, f.videosErr
}

func (f *fakeBackend) GetAssignments(ctx context.Context, sess session.Session, courseID, moduleID model.ID) ([]model.Assignment, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.assignments, f.assignmentsErr
}

func (f *fakeBackend) DownloadReadingMaterial(ctx context.Context, sess session.Session, courseID, moduleID, materialID model.ID) ([]byte, error) {
	atomic.AddInt32(&f.downloads, 1)
	return f.document, f.downloadErr
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []model.ModuleProgress
}

func (s *fakeSaver) Enqueue(sess session.Session, moduleID model.ID, p model.ModuleProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, p)
	return nil
}

func (s *fakeSaver) all() []model.ModuleProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ModuleProgress(nil), s.saved...)
}

func waitSettled(t *testing.T, v View) {
	t.Helper()
	select {
	case <-v.Settled():
	case <-time.After(2 * time.Second):
		require.FailNow(t, "view did not settle")
	}
}
