package services

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	apperrors "cubedock/internal/errors"
)

// Service is the single entry point to the container engine. It holds one
// engine connection for the life of the process and is used sequentially;
// no operation shares mutable state with another.
type Service struct {
	engine   EngineAPI
	logger   *zap.Logger
	progress io.Writer
}

// NewService creates a Service connected to the engine at dockerHost.
// An empty host falls back to the standard environment variables.
func NewService(dockerHost string, logger *zap.Logger) (*Service, error) {
	engine, err := newDockerEngine(dockerHost)
	if err != nil {
		return nil, err
	}
	return newService(engine, logger), nil
}

func newService(engine EngineAPI, logger *zap.Logger) *Service {
	return &Service{
		engine:   engine,
		logger:   logger,
		progress: os.Stdout,
	}
}

// Close closes the engine connection
func (s *Service) Close() error {
	return s.engine.Close()
}

// GetImage looks up an image by name. A missing image is not an error;
// it returns no handle and the caller decides whether to fall back.
func (s *Service) GetImage(ctx context.Context, name string) (*ImageHandle, error) {
	handle, err := s.engine.Inspect(ctx, name)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrorCodeImageNotFound) {
			s.logger.Info("image not present locally", zap.String("image", name))
			return nil, nil
		}
		return nil, err
	}
	return handle, nil
}

// Pull fetches an image from a remote repository. The engine may report a
// list of images for one name; exactly one is expected, anything else is
// logged as an anomaly and the first element, if any, is still used.
// A missing image yields no handle, not an error.
func (s *Service) Pull(ctx context.Context, name string) (*ImageHandle, error) {
	handles, err := s.engine.Pull(ctx, name)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrorCodeImageNotFound) {
			s.logger.Error("docker pull failed", zap.String("image", name), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	if len(handles) != 1 {
		s.logger.Error("docker pull returned an unexpected image count",
			zap.String("image", name),
			zap.Int("count", len(handles)),
		)
	}
	if len(handles) == 0 {
		return nil, nil
	}

	handle := handles[0]
	s.logger.Info("pulled image", zap.String("image", handle.String()))
	return &handle, nil
}
