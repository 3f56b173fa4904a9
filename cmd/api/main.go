package main

import (
	"context"
	"course-view-go/internal/backend"
	"course-view-go/internal/savequeue"
	"course-view-go/internal/view"
	"errors"
	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

func main() {
	log.Println("starting course view server")

	cfg, err := ReadConfig()
	if err != nil {
		log.Fatalf("reading config: %v", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("parsing log level: %v", err)
	}
	log.SetLevel(level)

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("converting port to integer: %v", err)
	}

	client, err := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	if err != nil {
		log.Fatalf("creating backend client: %v", err)
	}

	app, err := newRelicApp(cfg)
	if err != nil {
		log.Fatalf("creating new relic application: %v", err)
	}

	saves := savequeue.New(client, cfg.SaveQueueSize, cfg.SaveTimeout)

	views := view.NewRegistry(cfg.ViewIdleTimeout)
	sweeper, err := views.StartSweeper(cfg.SweepSchedule)
	if err != nil {
		log.Fatalf("starting view sweeper: %v", err)
	}

	server := NewServer(port, client, saves, views, Options{
		JWTKey:      cfg.JWTKey,
		QuizFormURL: cfg.QuizFormURL,
		RateLimit:   cfg.RateLimit,
		NewRelic:    app,
	})

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("shutting down server: %v", err)
		}
	}()

	if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	<-sweeper.Stop().Done()
	views.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := saves.Close(ctx); err != nil {
		log.Errorf("draining progress saves: %v", err)
	}
	if app != nil {
		app.Shutdown(5 * time.Second)
	}

	log.Println("course view server stopped")
}

// newRelicApp returns nil when no license is configured; a nil application
// records nothing.
func newRelicApp(cfg *Config) (*newrelic.Application, error) {
	if cfg.NewRelicLicense == "" {
		log.Println("new relic disabled: no license configured")
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelicAppName),
		newrelic.ConfigLicense(cfg.NewRelicLicense),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
}
