package view

import (
	"context"
	"course-view-go/internal/backend"
	"course-view-go/internal/model"
	"course-view-go/internal/progress"
	"course-view-go/internal/session"
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
)

const KindModuleDetail = "module-detail"

type Tab string

const (
	TabReadingMaterials Tab = "reading-materials"
	TabVideos           Tab = "videos"
	TabAssignments      Tab = "assignments"
	TabQuiz             Tab = "quiz"
)

func (t Tab) Valid() bool {
	switch t {
	case TabReadingMaterials, TabVideos, TabAssignments, TabQuiz:
		return true
	}
	return false
}

type QuizView string

const (
	QuizList QuizView = "list"
	QuizForm QuizView = "form"
)

type Saver interface {
	Enqueue(sess session.Session, moduleID model.ID, p model.ModuleProgress) error
}

// ModuleDetail is the module page. Reading materials, videos and assignments
// complete on the first interaction with any item of their kind; the quiz
// completes only when the learner returns from the embedded form.
type ModuleDetail struct {
	lifecycle

	backend     backend.Client
	saves       Saver
	sess        session.Session
	courseID    model.ID
	moduleID    model.ID
	quizFormURL string

	module      Load[model.Module]
	materials   Load[[]model.ReadingMaterial]
	videos      Load[[]model.VideoLecture]
	assignments Load[[]model.Assignment]
	flagsState  LoadState
	flags       model.ModuleProgress
	tab         Tab
	quizView    QuizView
}

func NewModuleDetail(b backend.Client, saves Saver, sess session.Session, courseID, moduleID model.ID, quizFormURL string) *ModuleDetail {
	v := &ModuleDetail{
		backend:     b,
		saves:       saves,
		sess:        sess,
		courseID:    courseID,
		moduleID:    moduleID,
		quizFormURL: quizFormURL,
		module:      loading[model.Module](),
		materials:   loading[[]model.ReadingMaterial](),
		videos:      loading[[]model.VideoLecture](),
		assignments: loading[[]model.Assignment](),
		flagsState:  Loading,
		tab:         TabReadingMaterials,
		quizView:    QuizList,
	}
	v.init()
	return v
}

func (v *ModuleDetail) Kind() string {
	return KindModuleDetail
}

// Mount starts the module, content and flag fetches. Each section is
// published as soon as its own response arrives.
func (v *ModuleDetail) Mount() {
	v.start(v.loadModule, v.loadMaterials, v.loadVideos, v.loadAssignments, v.loadFlags)
}

func (v *ModuleDetail) logger() *log.Entry {
	return log.WithFields(log.Fields{
		"course_id": v.courseID,
		"module_id": v.moduleID,
	})
}

func (v *ModuleDetail) loadModule(ctx context.Context) {
	module, err := v.backend.GetModule(ctx, v.sess, v.courseID, v.moduleID)
	if err != nil {
		v.logger().Errorf("fetching module: %v", err)
		v.update(func() {
			v.module = failed(model.Module{}, err)
		})
		return
	}

	v.update(func() {
		v.module = ready(module)
	})
}

func (v *ModuleDetail) loadMaterials(ctx context.Context) {
	materials, err := v.backend.GetReadingMaterials(ctx, v.sess, v.moduleID)
	if err != nil {
		v.logger().Errorf("fetching reading materials: %v", err)
		v.update(func() {
			v.materials = failed([]model.ReadingMaterial{}, err)
		})
		return
	}
	if materials == nil {
		materials = []model.ReadingMaterial{}
	}

	v.update(func() {
		v.materials = ready(materials)
	})
}

func (v *ModuleDetail) loadVideos(ctx context.Context) {
	videos, err := v.backend.GetVideoLectures(ctx, v.sess, v.moduleID)
	if err != nil {
		v.logger().Errorf("fetching video lectures: %v", err)
		v.update(func() {
			v.videos = failed([]model.VideoLecture{}, err)
		})
		return
	}
	if videos == nil {
		videos = []model.VideoLecture{}
	}

	v.update(func() {
		v.videos = ready(videos)
	})
}

func (v *ModuleDetail) loadAssignments(ctx context.Context) {
	assignments, err := v.backend.GetAssignments(ctx, v.sess, v.courseID, v.moduleID)
	if err != nil {
		v.logger().Errorf("fetching assignments: %v", err)
		v.update(func() {
			v.assignments = failed([]model.Assignment{}, err)
		})
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}

	v.update(func() {
		v.assignments = ready(assignments)
	})
}

// loadFlags merges the stored flags into the local ones. A missing record just
// leaves everything unset.
func (v *ModuleDetail) loadFlags(ctx context.Context) {
	if !v.sess.Valid() {
		v.update(func() {
			v.flagsState = Failed
		})
		return
	}

	flags, err := v.backend.GetModuleProgress(ctx, v.sess, v.moduleID)
	if err != nil {
		v.logger().Warnf("fetching module progress: %v", err)
		v.update(func() {
			v.flagsState = Failed
		})
		return
	}

	v.update(func() {
		merged := v.flags.Merge(flags)
		// Flags set before the read landed were saved without the stored
		// ones; save the union so the earlier upsert does not stick.
		if merged != v.flags && merged != flags {
			if err := v.saves.Enqueue(v.sess, v.moduleID, merged); err != nil {
				v.logger().Errorf("queueing progress save: %v", err)
			}
		}
		v.flags = merged
		v.flagsState = Ready
	})
}

// mark sets f and, when that changed anything, queues the full flag set for
// saving. Queueing happens under the view lock so saves leave in flag order.
func (v *ModuleDetail) mark(f model.Flag) error {
	var err error
	ok := v.update(func() {
		var changed bool
		changed, err = v.flags.Set(f)
		if err != nil || !changed {
			return
		}
		if qerr := v.saves.Enqueue(v.sess, v.moduleID, v.flags); qerr != nil {
			v.logger().Errorf("queueing progress save: %v", qerr)
		}
	})
	if !ok {
		return ErrUnmounted
	}
	return err
}

func (v *ModuleDetail) hasMaterial(id model.ID) bool {
	found := false
	v.read(func() {
		for _, m := range v.materials.Data {
			if m.ID == id {
				found = true
				return
			}
		}
	})
	return found
}

// Download marks the reading material done and fetches the document. The flag
// stays set even when the download itself fails.
func (v *ModuleDetail) Download(ctx context.Context, materialID model.ID) ([]byte, string, error) {
	if !v.hasMaterial(materialID) {
		return nil, "", fmt.Errorf("reading material %v: %w", materialID, ErrUnknownItem)
	}
	if err := v.mark(model.FlagReadingMaterial); err != nil {
		return nil, "", err
	}

	doc, err := v.backend.DownloadReadingMaterial(ctx, v.sess, v.courseID, v.moduleID, materialID)
	if err != nil {
		v.logger().Errorf("downloading reading material %v: %v", materialID, err)
		return nil, "", err
	}

	return doc, model.MaterialFileName(materialID), nil
}

// WatchVideo marks the video category done and returns the link to open.
func (v *ModuleDetail) WatchVideo(videoID model.ID) (string, error) {
	var link string
	found := false
	v.read(func() {
		for _, video := range v.videos.Data {
			if video.ID == videoID {
				link, found = video.YoutubeLink, true
				return
			}
		}
	})
	if !found {
		return "", fmt.Errorf("video lecture %v: %w", videoID, ErrUnknownItem)
	}

	if err := v.mark(model.FlagVideo); err != nil {
		return "", err
	}
	return link, nil
}

// StartAssignment marks the assignment category done and returns the route of
// the assignment page.
func (v *ModuleDetail) StartAssignment(assignmentID model.ID) (string, error) {
	found := false
	v.read(func() {
		for _, a := range v.assignments.Data {
			if a.ID == assignmentID {
				found = true
				return
			}
		}
	})
	if !found {
		return "", fmt.Errorf("assignment %v: %w", assignmentID, ErrUnknownItem)
	}

	if err := v.mark(model.FlagAssignment); err != nil {
		return "", err
	}
	return fmt.Sprintf("/assignment/%v/%v/%v", v.courseID, v.moduleID, assignmentID), nil
}

// OpenQuiz shows the embedded form. It does not complete the quiz.
func (v *ModuleDetail) OpenQuiz() error {
	var err error
	ok := v.update(func() {
		if v.module.State != Ready {
			err = ErrNotReady
			return
		}
		v.tab = TabQuiz
		v.quizView = QuizForm
	})
	if !ok {
		return ErrUnmounted
	}
	return err
}

var ErrQuizNotOpen = errors.New("quiz form is not open")

// ReturnFromQuiz leaves the embedded form and completes the quiz.
func (v *ModuleDetail) ReturnFromQuiz() error {
	var open bool
	v.read(func() {
		open = v.quizView == QuizForm
	})
	if !open {
		return ErrQuizNotOpen
	}

	if err := v.mark(model.FlagQuiz); err != nil {
		return err
	}

	v.update(func() {
		v.quizView = QuizList
	})
	return nil
}

func (v *ModuleDetail) SelectTab(tab Tab) error {
	if !tab.Valid() {
		return fmt.Errorf("tab %q: %w", tab, ErrUnknownItem)
	}

	if !v.update(func() { v.tab = tab }) {
		return ErrUnmounted
	}
	return nil
}

func (v *ModuleDetail) Flags() model.ModuleProgress {
	var flags model.ModuleProgress
	v.read(func() {
		flags = v.flags
	})
	return flags
}

type MaterialItem struct {
	ID       model.ID `json:"id"`
	Title    string   `json:"title"`
	FileName string   `json:"fileName"`
}

type AssignmentItem struct {
	ID          model.ID `json:"id"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	StatusLabel string   `json:"statusLabel"`
}

type QuizSection struct {
	View    QuizView     `json:"view"`
	Quizzes []model.Quiz `json:"quizzes"`
	FormURL string       `json:"formUrl,omitempty"`
}

type ModuleDetailSnapshot struct {
	Kind        string                     `json:"kind"`
	Session     string                     `json:"session"`
	CourseID    model.ID                   `json:"courseId"`
	ModuleID    model.ID                   `json:"moduleId"`
	State       LoadState                  `json:"state"`
	Error       string                     `json:"error,omitempty"`
	Module      *model.Module              `json:"module,omitempty"`
	BackRoute   string                     `json:"backRoute"`
	FlagsState  LoadState                  `json:"flagsState"`
	Flags       model.ModuleProgress       `json:"flags"`
	Progress    ProgressSummary            `json:"progress"`
	Complete    bool                       `json:"complete"`
	Tab         Tab                        `json:"tab"`
	Materials   Load[[]MaterialItem]       `json:"readingMaterials"`
	Videos      Load[[]model.VideoLecture] `json:"videos"`
	Assignments Load[[]AssignmentItem]     `json:"assignments"`
	Quiz        *QuizSection               `json:"quiz,omitempty"`
}

func (v *ModuleDetail) Snapshot() interface{} {
	var s ModuleDetailSnapshot
	v.read(func() {
		s = ModuleDetailSnapshot{
			Kind:       KindModuleDetail,
			Session:    v.sess.Kind(),
			CourseID:   v.courseID,
			ModuleID:   v.moduleID,
			State:      v.module.State,
			Error:      v.module.Error,
			BackRoute:  fmt.Sprintf("/course/%v", v.courseID),
			FlagsState: v.flagsState,
			Flags:      v.flags,
			Tab:        v.tab,
			Videos:     v.videos,
		}

		s.Materials = Load[[]MaterialItem]{State: v.materials.State, Error: v.materials.Error, Data: []MaterialItem{}}
		for _, m := range v.materials.Data {
			s.Materials.Data = append(s.Materials.Data, MaterialItem{ID: m.ID, Title: m.Title, FileName: m.FileName()})
		}

		s.Assignments = Load[[]AssignmentItem]{State: v.assignments.State, Error: v.assignments.Error, Data: []AssignmentItem{}}
		for _, a := range v.assignments.Data {
			s.Assignments.Data = append(s.Assignments.Data, AssignmentItem{ID: a.ID, Title: a.Title, Status: a.Status, StatusLabel: a.StatusLabel()})
		}

		if v.module.State == Ready {
			module := v.module.Data
			s.Module = &module

			quiz := model.NewQuiz(module.Title, v.quizFormURL, v.flags.Quiz)
			s.Quiz = &QuizSection{View: v.quizView, Quizzes: []model.Quiz{quiz}}
			if v.quizView == QuizForm {
				s.Quiz.FormURL = quiz.FormURL
			}
		}
	})

	if s.State == Failed {
		s.Error = "Module not found"
	}
	if s.Videos.Data == nil {
		s.Videos.Data = []model.VideoLecture{}
	}

	s.Progress = summarize(progress.ModulePercentage(s.Flags))
	s.Complete = s.Progress.Percent == 100

	return s
}
