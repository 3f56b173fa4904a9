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
	"golang.org/x/sync/errgroup"
)

const KindCourseOverview = "course-overview"

// fanOutLimit caps the concurrent per module progress requests of one page.
const fanOutLimit = 16

var errNoCourse = errors.New("no course data found")

type ModuleSummary struct {
	Number           int      `json:"number"`
	ID               model.ID `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Lectures         int      `json:"lectures"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	Progress         int      `json:"progress"`
	Completed        bool     `json:"completed"`
	Route            string   `json:"route"`
}

type coursePage struct {
	course  model.Course
	modules []ModuleSummary
	overall int
}

// CourseOverview is the course page: the module list with each module's
// progress and the overall course progress. It owns the course header.
type CourseOverview struct {
	lifecycle

	backend  backend.Client
	sess     session.Session
	courseID model.ID
	header   *CourseHeader

	page Load[coursePage]
}

func NewCourseOverview(b backend.Client, sess session.Session, courseID model.ID) *CourseOverview {
	v := &CourseOverview{
		backend:  b,
		sess:     sess,
		courseID: courseID,
		header:   NewCourseHeader(b, courseID, "", ""),
		page:     loading[coursePage](),
	}
	v.init()
	return v
}

func (v *CourseOverview) Kind() string {
	return KindCourseOverview
}

func (v *CourseOverview) Header() *CourseHeader {
	return v.header
}

func (v *CourseOverview) Mount() {
	v.header.Mount()
	v.start(v.load, func(context.Context) {
		<-v.header.Settled()
	})
}

func (v *CourseOverview) Unmount() {
	v.header.Unmount()
	v.lifecycle.Unmount()
}

func (v *CourseOverview) load(ctx context.Context) {
	course, err := v.backend.GetCourse(ctx, v.courseID)
	if err != nil {
		log.WithField("course_id", v.courseID).Errorf("fetching course: %v", err)
		v.update(func() {
			v.page = failed(coursePage{}, fmt.Errorf("%w: %v", errNoCourse, err))
		})
		return
	}

	v.header.setProps(course.Title, course.Description)

	pcts := v.moduleProgress(ctx, course.Modules)

	page := coursePage{
		course:  course,
		modules: make([]ModuleSummary, len(course.Modules)),
		overall: progress.CourseAverage(pcts),
	}
	for i, m := range course.Modules {
		page.modules[i] = ModuleSummary{
			Number:           i + 1,
			ID:               m.ID,
			Title:            m.Title,
			Description:      m.Description,
			Lectures:         m.LectureCount(),
			EstimatedMinutes: m.EstimatedMinutes(),
			Progress:         pcts[i],
			Completed:        pcts[i] == 100,
			Route:            fmt.Sprintf("/module/%v/%v", v.courseID, m.ID),
		}
	}

	v.update(func() {
		v.page = ready(page)
	})
}

// moduleProgress fetches every module's flags concurrently and waits for the
// whole batch. A failed fetch counts as 0 and stays in the result.
func (v *CourseOverview) moduleProgress(ctx context.Context, modules []model.Module) []int {
	pcts := make([]int, len(modules))
	if !v.sess.Valid() {
		return pcts
	}

	var g errgroup.Group
	g.SetLimit(fanOutLimit)

	for i, m := range modules {
		g.Go(func() error {
			flags, err := v.backend.GetModuleProgress(ctx, v.sess, m.ID)
			if err != nil {
				log.WithFields(log.Fields{
					"course_id": v.courseID,
					"module_id": m.ID,
				}).Errorf("fetching module progress: %v", err)
				return nil
			}
			pcts[i] = progress.ModulePercentage(flags)
			return nil
		})
	}
	_ = g.Wait()

	return pcts
}

type ProgressSummary struct {
	Percent int    `json:"percent"`
	Status  string `json:"status"`
	Color   string `json:"color"`
}

func summarize(pct int) ProgressSummary {
	return ProgressSummary{
		Percent: pct,
		Status:  progress.Status(pct),
		Color:   progress.Color(pct),
	}
}

type CourseOverviewSnapshot struct {
	Kind        string               `json:"kind"`
	Session     string               `json:"session"`
	CourseID    model.ID             `json:"courseId"`
	State       LoadState            `json:"state"`
	Error       string               `json:"error,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Overall     *ProgressSummary     `json:"overall,omitempty"`
	Modules     []ModuleSummary      `json:"modules"`
	Header      CourseHeaderSnapshot `json:"header"`
}

func (v *CourseOverview) Snapshot() interface{} {
	var page Load[coursePage]
	v.read(func() {
		page = v.page
	})

	s := CourseOverviewSnapshot{
		Kind:     KindCourseOverview,
		Session:  v.sess.Kind(),
		CourseID: v.courseID,
		State:    page.State,
		Error:    page.Error,
		Modules:  []ModuleSummary{},
		Header:   v.header.snapshot(),
	}
	if page.State != Ready {
		return s
	}

	overall := summarize(page.Data.overall)
	s.Title = page.Data.course.Title
	s.Description = page.Data.course.Description
	s.Overall = &overall
	s.Modules = append(s.Modules, page.Data.modules...)

	return s
}
