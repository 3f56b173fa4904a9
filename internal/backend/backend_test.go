package backend

import (
	"context"
	"course-view-go/internal/model"
	"course-view-go/internal/session"
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testSession = session.Session{UserID: "7", Token: "secret"}

func newTestClient(t *testing.T, handler http.Handler) Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/api", time.Second)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("", time.Second)
	assert.Error(t, err)
}

func TestGetCourse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/courses/3", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 3, "title": "Go", "modules": [{"id": 10, "title": "Basics"}, {"id": "11"}]}`))
	}))

	course, err := c.GetCourse(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, model.ID("3"), course.ID)
	assert.Equal(t, "Go", course.Title)
	require.Len(t, course.Modules, 2)
	assert.Equal(t, model.ID("10"), course.Modules[0].ID)
	assert.Equal(t, model.ID("11"), course.Modules[1].ID)
}

func TestGetCourseNotFound(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	_, err := c.GetCourse(context.Background(), "3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestGetCourseProgress(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/courses/3/progress", r.URL.Path)
		writeJSON(w, map[string]float64{"progress": 62.5})
	}))

	pct, err := c.GetCourseProgress(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, 63, pct)
}

func TestGetModuleProgressNormalizesVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.ModuleProgress
	}{
		{
			name: "completed suffix with numbers",
			body: `{"readingMaterialCompleted": 1, "videoCompleted": 0, "assignmentCompleted": 1, "quizCompleted": 0}`,
			want: model.ModuleProgress{ReadingMaterial: true, Assignment: true},
		},
		{
			name: "plain booleans",
			body: `{"readingMaterial": false, "video": true, "assignment": false, "quiz": true}`,
			want: model.ModuleProgress{Video: true, Quiz: true},
		},
		{
			name: "strings",
			body: `{"readingMaterial": "true", "video": "1", "assignment": "0", "quiz": "no"}`,
			want: model.ModuleProgress{ReadingMaterial: true, Video: true},
		},
		{
			name: "empty record",
			body: `{}`,
			want: model.ModuleProgress{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/progress/7/12", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(tt.body))
			}))

			got, err := c.GetModuleProgress(context.Background(), testSession, "12")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetModuleProgressWithoutSession(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.GetModuleProgress(context.Background(), session.None, "12")
	assert.Error(t, err)
	assert.False(t, called)
}

func TestSaveModuleProgress(t *testing.T) {
	var got saveProgressRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/progress", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))

	err := c.SaveModuleProgress(context.Background(), testSession, "12", model.ModuleProgress{Video: true, Quiz: true})
	require.NoError(t, err)
	assert.Equal(t, saveProgressRequest{UserID: "7", ModuleID: "12", Video: true, Quiz: true}, got)
}

func TestSaveModuleProgressFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	err := c.SaveModuleProgress(context.Background(), testSession, "12", model.ModuleProgress{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestModuleContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/courses/3/modules/12", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"id": 12, "title": "Loops", "description": "for and range"})
	})
	mux.HandleFunc("/api/modules/12/reading-materials", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{{"id": 1, "title": "Notes"}})
	})
	mux.HandleFunc("/api/modules/12/video-lectures", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{{"id": 2, "title": "Lecture", "youtubeLink": "https://youtu.be/x"}})
	})
	mux.HandleFunc("/api/courses/3/modules/12/assignments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{{"id": 5, "title": "Homework", "status": "in-progress"}})
	})
	mux.HandleFunc("/api/courses/3/modules/12/reading-materials/1/download", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	module, err := c.GetModule(ctx, testSession, "3", "12")
	require.NoError(t, err)
	assert.Equal(t, "Loops", module.Title)

	materials, err := c.GetReadingMaterials(ctx, testSession, "12")
	require.NoError(t, err)
	assert.Equal(t, []model.ReadingMaterial{{ID: "1", Title: "Notes"}}, materials)

	videos, err := c.GetVideoLectures(ctx, testSession, "12")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "https://youtu.be/x", videos[0].YoutubeLink)

	assignments, err := c.GetAssignments(ctx, testSession, "3", "12")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "In Progress", assignments[0].StatusLabel())

	doc, err := c.DownloadReadingMaterial(ctx, testSession, "3", "12", "1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), doc)

	_, err = c.DownloadReadingMaterial(ctx, testSession, "3", "12", "99")
	assert.True(t, errors.Is(err, ErrNotFound))
}
