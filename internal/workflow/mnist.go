package workflow

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"cubedock/internal/infra"
	"cubedock/internal/services"
)

// Task commands executed inside the container, in order.
const (
	downloadCommand = "download --data-config=/storage/data.yaml --log-dir=/storage --data-dir=/storage"
	trainCommand    = "train --train-config=/storage/train.yaml --log-dir=/storage --data-dir=/storage --model-dir=/storage"
)

// Docker is the slice of the engine facade the workflow needs.
type Docker interface {
	GetImage(ctx context.Context, name string) (*services.ImageHandle, error)
	BuildWithOutput(ctx context.Context, opts services.BuildOptions) (*services.ImageHandle, error)
	Run(ctx context.Context, image *services.ImageHandle, command string, volumes, environment map[string]string) error
}

// Runner drives the MNIST demo workflow: resolve the image, then run the
// data-download and train tasks against it with a shared workspace volume.
type Runner struct {
	docker Docker
	config *infra.Config
	logger *zap.Logger
}

// NewRunner creates a new workflow runner
func NewRunner(docker Docker, config *infra.Config, logger *zap.Logger) *Runner {
	return &Runner{
		docker: docker,
		config: config,
		logger: logger,
	}
}

// Run executes the workflow to completion. Failures are surfaced, never
// retried.
func (r *Runner) Run(ctx context.Context) error {
	imageName := r.config.Workflow.Image
	workflowPath := r.config.WorkflowPath("mnist")
	env := infra.ProxyBuildArgs()

	image, err := r.docker.GetImage(ctx, imageName)
	if err != nil {
		return err
	}
	if image == nil {
		r.logger.Info("image not found, building it", zap.String("image", imageName))
		image, err = r.docker.BuildWithOutput(ctx, services.BuildOptions{
			ContextPath: workflowPath,
			Dockerfile:  "Dockerfile",
			Tag:         imageName,
			BuildArgs:   env,
		})
		if err != nil {
			return err
		}
	}
	if image == nil {
		return fmt.Errorf("no image available for workflow (image=%s)", imageName)
	}

	volumes := map[string]string{
		filepath.Join(workflowPath, "workspace"): "/storage",
	}

	if err := r.docker.Run(ctx, image, downloadCommand, volumes, env); err != nil {
		return err
	}
	return r.docker.Run(ctx, image, trainCommand, volumes, env)
}
