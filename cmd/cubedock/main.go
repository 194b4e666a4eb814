package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	apperrors "cubedock/internal/errors"
	"cubedock/internal/infra"
	"cubedock/internal/services"
	"cubedock/internal/workflow"
)

func main() {
	config, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	docker, err := services.NewService(config.Docker.Host, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Docker", zap.Error(err))
	}
	defer docker.Close()

	runner := workflow.NewRunner(docker, config, logger)

	if err := runner.Run(context.Background()); err != nil {
		var containerErr *apperrors.ContainerError
		if errors.As(err, &containerErr) {
			fmt.Printf("Command %s in image %s returned non-zero exit status %d. Output:\n\n",
				containerErr.Command, containerErr.Image, containerErr.ExitStatus)
			fmt.Println(containerErr.StderrText())
			return
		}
		logger.Fatal("Workflow failed", zap.Error(err))
	}

	logger.Info("Workflow completed")
}

func initLogger(level string) (*zap.Logger, error) {
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		parsed = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	config := zap.NewProductionConfig()
	config.Level = parsed
	return config.Build()
}
