package main

import (
	"context"
	"course-view-go/internal/backend"
	"course-view-go/internal/model"
	"course-view-go/internal/session"
	"course-view-go/internal/view"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strconv"
	"time"
)

// maxWait bounds how long GET /views/{id}?wait= may hold a request.
const maxWait = 30 * time.Second

type Options struct {
	JWTKey      string
	QuizFormURL string
	RateLimit   int
	NewRelic    *newrelic.Application
}

type Server struct {
	port        int
	jwtKey      string
	quizFormURL string
	rateLimit   int
	newRelic    *newrelic.Application

	backend  backend.Client
	saves    view.Saver
	views    *view.Registry
	validate *validator.Validate

	httpServer *http.Server
}

func NewServer(port int, b backend.Client, saves view.Saver, views *view.Registry, opts Options) *Server {
	return &Server{
		port:        port,
		jwtKey:      opts.JWTKey,
		quizFormURL: opts.QuizFormURL,
		rateLimit:   opts.RateLimit,
		newRelic:    opts.NewRelic,
		backend:     b,
		saves:       saves,
		views:       views,
		validate:    validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.Use(requestID, recoverer, accessLog, s.instrument)
	if s.rateLimit > 0 {
		router.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}

	router.HandleFunc("/health", s.health).Methods("GET")

	views := router.PathPrefix("/views").Subrouter()
	views.Use(s.authenticate)

	views.HandleFunc("/courses/{courseId}", s.mountCourse).Methods("POST")
	views.HandleFunc("/courses/{courseId}/modules/{moduleId}", s.mountModule).Methods("POST")
	views.HandleFunc("/{viewId}", s.getView).Methods("GET")
	views.HandleFunc("/{viewId}", s.unmountView).Methods("DELETE")
	views.HandleFunc("/{viewId}/certificate", s.certificate).Methods("POST")
	views.HandleFunc("/{viewId}/materials/{materialId}/download", s.downloadMaterial).Methods("GET")
	views.HandleFunc("/{viewId}/videos/{videoId}/watch", s.watchVideo).Methods("POST")
	views.HandleFunc("/{viewId}/assignments/{assignmentId}/start", s.startAssignment).Methods("POST")
	views.HandleFunc("/{viewId}/quiz/open", s.openQuiz).Methods("POST")
	views.HandleFunc("/{viewId}/quiz/return", s.returnFromQuiz).Methods("POST")
	views.HandleFunc("/{viewId}/tab", s.selectTab).Methods("PUT")

	return router
}

func (s *Server) Run() error {
	address := "0.0.0.0"

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%v:%v", address, s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("listening requests at %v:%v", address, s.port)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, view.ErrNotFound), errors.Is(err, view.ErrUnknownItem), errors.Is(err, backend.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, view.ErrWrongKind):
		status = http.StatusBadRequest
	case errors.Is(err, view.ErrNotReady), errors.Is(err, view.ErrQuizNotOpen):
		status = http.StatusConflict
	case errors.Is(err, view.ErrUnmounted):
		status = http.StatusGone
	}

	http.Error(w, err.Error(), status)
}

func owner(r *http.Request) session.Session {
	return session.FromContext(r.Context())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) mountCourse(w http.ResponseWriter, r *http.Request) {
	request := mountCourseRequest{CourseID: mux.Vars(r)["courseId"]}
	if err := s.validate.Struct(request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := owner(r)
	v := view.NewCourseOverview(s.backend, sess, model.ID(request.CourseID))
	id := s.views.Mount(sess.UserID, v)

	writeJSON(w, http.StatusCreated, MountViewResponse{ID: id, Kind: v.Kind()})
}

func (s *Server) mountModule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	request := mountModuleRequest{CourseID: vars["courseId"], ModuleID: vars["moduleId"]}
	if err := s.validate.Struct(request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := owner(r)
	v := view.NewModuleDetail(s.backend, s.saves, sess, model.ID(request.CourseID), model.ID(request.ModuleID), s.quizFormURL)
	id := s.views.Mount(sess.UserID, v)

	writeJSON(w, http.StatusCreated, MountViewResponse{ID: id, Kind: v.Kind()})
}

// getView returns the current snapshot. With ?wait=<duration> it first waits
// for the initial fetches to settle, up to that long.
func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Get(mux.Vars(r)["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if raw := r.URL.Query().Get("wait"); raw != "" {
		wait, err := time.ParseDuration(raw)
		if err != nil || wait < 0 {
			http.Error(w, "invalid wait duration", http.StatusBadRequest)
			return
		}
		if wait > maxWait {
			wait = maxWait
		}

		timer := time.NewTimer(wait)
		select {
		case <-v.Settled():
		case <-timer.C:
		case <-r.Context().Done():
		}
		timer.Stop()
	}

	writeJSON(w, http.StatusOK, v.Snapshot())
}

func (s *Server) unmountView(w http.ResponseWriter, r *http.Request) {
	if err := s.views.Unmount(mux.Vars(r)["viewId"], owner(r).UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) certificate(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Course(mux.Vars(r)["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	notice, ok, err := v.Header().Certificate()
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusForbidden
	}
	writeJSON(w, status, notice)
}

func (s *Server) downloadMaterial(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	v, err := s.views.Module(vars["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, fileName, err := v.Download(r.Context(), model.ID(vars["materialId"]))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	if _, err := w.Write(doc); err != nil {
		log.Errorf("writing reading material: %v", err)
	}
}

func (s *Server) watchVideo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	v, err := s.views.Module(vars["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	link, err := v.WatchVideo(model.ID(vars["videoId"]))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WatchVideoResponse{URL: link})
}

func (s *Server) startAssignment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	v, err := s.views.Module(vars["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	route, err := v.StartAssignment(model.ID(vars["assignmentId"]))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StartAssignmentResponse{Route: route})
}

func (s *Server) openQuiz(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Module(mux.Vars(r)["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := v.OpenQuiz(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v.Snapshot())
}

func (s *Server) returnFromQuiz(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Module(mux.Vars(r)["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := v.ReturnFromQuiz(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v.Snapshot())
}

func (s *Server) selectTab(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Module(mux.Vars(r)["viewId"], owner(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	var request SelectTabRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := v.SelectTab(view.Tab(request.Tab)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v.Snapshot())
}
