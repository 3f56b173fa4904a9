package view

import (
	"context"
	"course-view-go/internal/backend"
	"course-view-go/internal/model"
	"course-view-go/internal/progress"
	log "github.com/sirupsen/logrus"
	"strconv"
)

const KindCourseHeader = "course-header"

// CourseHeader shows the course metadata, the course level progress fetched
// from the backend and the certificate action.
type CourseHeader struct {
	lifecycle

	backend  backend.Client
	courseID model.ID

	title       string
	description string
	course      Load[model.Course]
	progress    Load[int]
}

func NewCourseHeader(b backend.Client, courseID model.ID, title, description string) *CourseHeader {
	h := &CourseHeader{
		backend:     b,
		courseID:    courseID,
		title:       title,
		description: description,
		course:      loading[model.Course](),
		progress:    loading[int](),
	}
	h.init()
	return h
}

func (h *CourseHeader) Kind() string {
	return KindCourseHeader
}

func (h *CourseHeader) Mount() {
	h.start(h.loadCourse, h.loadProgress)
}

func (h *CourseHeader) loadCourse(ctx context.Context) {
	course, err := h.backend.GetCourse(ctx, h.courseID)
	if err != nil {
		log.WithField("course_id", h.courseID).Errorf("fetching course for header: %v", err)
		h.update(func() {
			h.course = failed(model.Course{}, err)
		})
		return
	}

	h.update(func() {
		h.course = ready(course)
	})
}

func (h *CourseHeader) loadProgress(ctx context.Context) {
	pct, err := h.backend.GetCourseProgress(ctx, h.courseID)
	if err != nil {
		log.WithField("course_id", h.courseID).Errorf("fetching course progress: %v", err)
		h.update(func() {
			h.progress = failed(0, err)
		})
		return
	}

	h.update(func() {
		h.progress = ready(pct)
	})
}

// setProps passes down the title and description the overview page fetched.
func (h *CourseHeader) setProps(title, description string) {
	h.update(func() {
		h.title = title
		h.description = description
	})
}

// Certificate evaluates the download action against the displayed progress.
// It never talks to the backend.
func (h *CourseHeader) Certificate() (progress.Notice, bool, error) {
	var (
		state LoadState
		pct   int
	)
	h.read(func() {
		state = h.course.State
		pct = h.progress.Data
	})

	if state != Ready {
		return progress.Notice{}, false, ErrNotReady
	}

	notice, ok := progress.Certificate(pct)
	return notice, ok, nil
}

type CourseHeaderSnapshot struct {
	Kind               string    `json:"kind"`
	State              LoadState `json:"state"`
	Error              string    `json:"error,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Rating             string    `json:"rating"`
	Duration           string    `json:"duration"`
	Level              string    `json:"level"`
	Instructor         string    `json:"instructor"`
	InstructorAvatar   string    `json:"instructorAvatar"`
	InstructorInitial  string    `json:"instructorInitial"`
	ImgSrc             string    `json:"imgSrc"`
	Hours              int       `json:"hours"`
	Lectures           int       `json:"lectures"`
	Exercises          int       `json:"exercises"`
	ProgressState      LoadState `json:"progressState"`
	Progress           int       `json:"progress"`
	CertificateEnabled bool      `json:"certificateEnabled"`
	CertificateVariant string    `json:"certificateVariant"`
}

func (h *CourseHeader) Snapshot() interface{} {
	return h.snapshot()
}

func (h *CourseHeader) snapshot() CourseHeaderSnapshot {
	var (
		course      Load[model.Course]
		pct         Load[int]
		title, desc string
	)
	h.read(func() {
		course, pct = h.course, h.progress
		title, desc = h.title, h.description
	})

	s := CourseHeaderSnapshot{
		Kind:          KindCourseHeader,
		State:         course.State,
		Error:         course.Error,
		Title:         title,
		Description:   desc,
		ProgressState: pct.State,
		Progress:      pct.Data,
	}
	if course.State != Ready {
		return s
	}

	c := course.Data
	s.Rating = "4.5"
	if c.Rating > 0 {
		s.Rating = strconv.FormatFloat(c.Rating, 'f', -1, 64)
	}
	s.Duration = orDefault(c.Duration, "8 hrs")
	s.Level = orDefault(c.Level, "Beginner")
	s.Instructor = orDefault(c.Instructor, "Instructor Name")
	s.InstructorAvatar = c.InstructorAvatar
	s.InstructorInitial = "I"
	if c.Instructor != "" {
		s.InstructorInitial = string([]rune(c.Instructor)[:1])
	}
	s.ImgSrc = orDefault(c.ImgSrc, "/placeholder.jpg")
	s.Hours = orDefaultInt(c.Hours, 8)
	s.Lectures = orDefaultInt(c.Lectures, 12)
	s.Exercises = orDefaultInt(c.Exercises, 5)

	notice, enabled := progress.Certificate(pct.Data)
	s.CertificateEnabled = enabled
	s.CertificateVariant = notice.Variant

	return s
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
