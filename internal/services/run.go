package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "cubedock/internal/errors"
)

// RunSpec bundles everything one container run needs. It is constructed per
// invocation and discarded afterwards.
type RunSpec struct {
	Image   *ImageHandle
	Command string
	// Volumes maps host paths to container paths; the host owns their
	// lifetime.
	Volumes     map[string]string
	Environment map[string]string
}

// Run executes a container to completion, attached, with auto-remove.
// Output lines are echoed as they arrive. A non-zero exit yields a
// ContainerError carrying the command, image reference, exit status and
// captured stderr.
func (s *Service) Run(ctx context.Context, image *ImageHandle, command string, volumes, environment map[string]string) error {
	spec := RunSpec{
		Image:       image,
		Command:     command,
		Volumes:     volumes,
		Environment: environment,
	}

	s.logger.Info("running container",
		zap.String("image", image.Reference()),
		zap.Any("volumes", volumes),
		zap.Any("environment", environment),
		zap.String("command", command),
	)

	exitStatus, stderr, err := s.engine.Run(ctx, spec, s.progress)
	if err != nil {
		return fmt.Errorf("container run failed: %w", err)
	}
	if exitStatus != 0 {
		return &apperrors.ContainerError{
			Command:    command,
			Image:      image.Reference(),
			ExitStatus: exitStatus,
			Stderr:     stderr,
		}
	}
	return nil
}
