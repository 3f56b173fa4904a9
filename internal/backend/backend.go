// Package backend talks to the course REST API that owns courses, modules,
// content items and the per user progress records.
package backend

import (
	"context"
	"course-view-go/internal/model"
	"course-view-go/internal/session"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/newrelic/go-agent/v3/newrelic"
	"net/http"
	"time"
)

var ErrNotFound = errors.New("not found")

type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type Client interface {
	GetCourse(ctx context.Context, courseID model.ID) (model.Course, error)
	GetCourseProgress(ctx context.Context, courseID model.ID) (int, error)
	GetModuleProgress(ctx context.Context, sess session.Session, moduleID model.ID) (model.ModuleProgress, error)
	SaveModuleProgress(ctx context.Context, sess session.Session, moduleID model.ID, p model.ModuleProgress) error
	GetModule(ctx context.Context, sess session.Session, courseID, moduleID model.ID) (model.Module, error)
	GetReadingMaterials(ctx context.Context, sess session.Session, moduleID model.ID) ([]model.ReadingMaterial, error)
	GetVideoLectures(ctx context.Context, sess session.Session, moduleID model.ID) ([]model.VideoLecture, error)
	GetAssignments(ctx context.Context, sess session.Session, courseID, moduleID model.ID) ([]model.Assignment, error)
	DownloadReadingMaterial(ctx context.Context, sess session.Session, courseID, moduleID, materialID model.ID) ([]byte, error)
}

type client struct {
	rc *resty.Client
}

// NewClient builds a client for the API rooted at baseURL, e.g.
// http://localhost:8080/api. Outbound calls join the New Relic transaction
// found in the request context, if any.
func NewClient(baseURL string, timeout time.Duration) (Client, error) {
	if baseURL == "" {
		return nil, errors.New("backend base url is empty")
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetTransport(newrelic.NewRoundTripper(http.DefaultTransport))

	return &client{rc: rc}, nil
}

func (c *client) request(ctx context.Context, sess session.Session, params map[string]string) *resty.Request {
	req := c.rc.R().SetContext(ctx).SetPathParams(params)
	if sess.Token != "" {
		req.SetAuthToken(sess.Token)
	}
	return req
}

func (c *client) get(ctx context.Context, sess session.Session, path string, params map[string]string, out interface{}) error {
	resp, err := c.request(ctx, sess, params).Get(path)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	if resp.IsError() {
		return statusError(resp, path)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}

func statusError(resp *resty.Response, path string) error {
	body := resp.String()
	if len(body) > 200 {
		body = body[:200]
	}

	return &StatusError{
		Method: resp.Request.Method,
		Path:   path,
		Code:   resp.StatusCode(),
		Body:   body,
	}
}

func (c *client) GetCourse(ctx context.Context, courseID model.ID) (model.Course, error) {
	var course model.Course
	err := c.get(ctx, session.None, "/courses/{courseId}", map[string]string{
		"courseId": courseID.String(),
	}, &course)
	if err != nil {
		return model.Course{}, fmt.Errorf("fetching course %v: %w", courseID, err)
	}

	return course, nil
}

func (c *client) GetCourseProgress(ctx context.Context, courseID model.ID) (int, error) {
	var body struct {
		Progress float64 `json:"progress"`
	}
	err := c.get(ctx, session.None, "/courses/{courseId}/progress", map[string]string{
		"courseId": courseID.String(),
	}, &body)
	if err != nil {
		return 0, fmt.Errorf("fetching progress of course %v: %w", courseID, err)
	}

	return clampPercentage(body.Progress), nil
}

func clampPercentage(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(v + 0.5)
}

func (c *client) GetModuleProgress(ctx context.Context, sess session.Session, moduleID model.ID) (model.ModuleProgress, error) {
	if !sess.Valid() {
		return model.ModuleProgress{}, errors.New("fetching module progress: no session")
	}

	var raw map[string]json.RawMessage
	err := c.get(ctx, sess, "/progress/{userId}/{moduleId}", map[string]string{
		"userId":   sess.UserID,
		"moduleId": moduleID.String(),
	}, &raw)
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("fetching progress of module %v: %w", moduleID, err)
	}

	return normalizeProgress(raw), nil
}

type saveProgressRequest struct {
	UserID          string   `json:"userId"`
	ModuleID        model.ID `json:"moduleId"`
	ReadingMaterial bool     `json:"readingMaterial"`
	Video           bool     `json:"video"`
	Assignment      bool     `json:"assignment"`
	Quiz            bool     `json:"quiz"`
}

func (c *client) SaveModuleProgress(ctx context.Context, sess session.Session, moduleID model.ID, p model.ModuleProgress) error {
	if !sess.Valid() {
		return errors.New("saving module progress: no session")
	}

	resp, err := c.request(ctx, sess, nil).
		SetBody(saveProgressRequest{
			UserID:          sess.UserID,
			ModuleID:        moduleID,
			ReadingMaterial: p.ReadingMaterial,
			Video:           p.Video,
			Assignment:      p.Assignment,
			Quiz:            p.Quiz,
		}).
		Post("/progress")
	if err != nil {
		return fmt.Errorf("saving progress of module %v: %w", moduleID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("saving progress of module %v: %w", moduleID, statusError(resp, "/progress"))
	}

	return nil
}

func (c *client) GetModule(ctx context.Context, sess session.Session, courseID, moduleID model.ID) (model.Module, error) {
	var module model.Module
	err := c.get(ctx, sess, "/courses/{courseId}/modules/{moduleId}", map[string]string{
		"courseId": courseID.String(),
		"moduleId": moduleID.String(),
	}, &module)
	if err != nil {
		return model.Module{}, fmt.Errorf("fetching module %v: %w", moduleID, err)
	}

	return module, nil
}

func (c *client) GetReadingMaterials(ctx context.Context, sess session.Session, moduleID model.ID) ([]model.ReadingMaterial, error) {
	var materials []model.ReadingMaterial
	err := c.get(ctx, sess, "/modules/{moduleId}/reading-materials", map[string]string{
		"moduleId": moduleID.String(),
	}, &materials)
	if err != nil {
		return nil, fmt.Errorf("fetching reading materials of module %v: %w", moduleID, err)
	}

	return materials, nil
}

func (c *client) GetVideoLectures(ctx context.Context, sess session.Session, moduleID model.ID) ([]model.VideoLecture, error) {
	var videos []model.VideoLecture
	err := c.get(ctx, sess, "/modules/{moduleId}/video-lectures", map[string]string{
		"moduleId": moduleID.String(),
	}, &videos)
	if err != nil {
		return nil, fmt.Errorf("fetching video lectures of module %v: %w", moduleID, err)
	}

	return videos, nil
}

func (c *client) GetAssignments(ctx context.Context, sess session.Session, courseID, moduleID model.ID) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := c.get(ctx, sess, "/courses/{courseId}/modules/{moduleId}/assignments", map[string]string{
		"courseId": courseID.String(),
		"moduleId": moduleID.String(),
	}, &assignments)
	if err != nil {
		return nil, fmt.Errorf("fetching assignments of module %v: %w", moduleID, err)
	}

	return assignments, nil
}

func (c *client) DownloadReadingMaterial(ctx context.Context, sess session.Session, courseID, moduleID, materialID model.ID) ([]byte, error) {
	path := "/courses/{courseId}/modules/{moduleId}/reading-materials/{materialId}/download"
	resp, err := c.request(ctx, sess, map[string]string{
		"courseId":   courseID.String(),
		"moduleId":   moduleID.String(),
		"materialId": materialID.String(),
	}).
		SetHeader("Accept", "application/pdf").
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("downloading reading material %v: %w", materialID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("downloading reading material %v: %w", materialID, statusError(resp, path))
	}

	return resp.Body(), nil
}
