package main

import (
	"errors"
	"fmt"
	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"time"
)

type Config struct {
	Port            string        `conf:"default:8081,env:PORT"`
	BackendURL      string        `conf:"default:http://localhost:8080/api,env:BACKEND_URL"`
	BackendTimeout  time.Duration `conf:"default:10s,env:BACKEND_TIMEOUT"`
	JWTKey          string        `conf:"default:your_secret_key,env:JWT_KEY,noprint"`
	QuizFormURL     string        `conf:"default:https://docs.google.com/forms/d/e/1FAIpQLSdhvwIssi8f897-edomcWFnN32p2nPHLPlGl3CtdEoHO9qY1w/viewform?embedded=true,env:QUIZ_FORM_URL"`
	ViewIdleTimeout time.Duration `conf:"default:30m,env:VIEW_IDLE_TIMEOUT"`
	SweepSchedule   string        `conf:"default:@every 1m,env:SWEEP_SCHEDULE"`
	SaveQueueSize   int           `conf:"default:1024,env:SAVE_QUEUE_SIZE"`
	SaveTimeout     time.Duration `conf:"default:5s,env:SAVE_TIMEOUT"`
	RateLimit       int           `conf:"default:100,env:RATE_LIMIT"`
	LogLevel        string        `conf:"default:info,env:LOG_LEVEL"`
	NewRelicAppName string        `conf:"default:course-view,env:NEW_RELIC_APP_NAME"`
	NewRelicLicense string        `conf:"env:NEW_RELIC_LICENSE,noprint"`
}

func ReadConfig() (*Config, error) {
	// a missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env loaded: %v", err)
	}

	var cfg Config
	help, err := conf.ParseOSArgs("APP", &cfg)

	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
