package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mileusna/crontab"
	"square.ai/skill-gateway/app/domain/healthcheck"
	"square.ai/skill-gateway/app/interfaces/http"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

type Application struct {
	HttpServer         *http.HttpServer
	HealthcheckService *healthcheck.HealthcheckCrontabService
}

func (application *Application) Start(ctx context.Context) error {
	cron := crontab.New()
	defer cron.Shutdown()
	if err := application.HealthcheckService.Start(ctx, cron); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.HttpServer.Run()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.GetLogger().Info("shutting down http server")
		return application.HttpServer.Shutdown(context.Background())
	}
}

func init() {
	environment_variables.EnvironmentVariables.LoadFromEnv()
	logger.SetLevel(environment_variables.EnvironmentVariables.LOG_LEVEL)
}

// @title Skill Gateway API
// @version 1.0
// @description Gateway in front of skills, datastores, models and checklists.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, cleanup, err := CreateApplication()
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "b5a0f6c1-3e2d-4f8a-9c7b-1d0e2f3a4b5c").
			Fatalf("failed to build application: %v", err)
	}
	defer cleanup()
	if err := application.Start(ctx); err != nil {
		logger.GetLogger().
			WithField("error_code", "e1f2a3b4-c5d6-4e7f-8a9b-0c1d2e3f4a5b").
			Errorf("server stopped: %v", err)
	}
}
