package services

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// BuildOptions represents options for building an image
type BuildOptions struct {
	// ContextPath is the build-context directory, usually the one holding
	// the Dockerfile.
	ContextPath string
	// Dockerfile is the path of the Dockerfile relative to ContextPath.
	Dockerfile string
	// Tag is the name given to the built image.
	Tag string
	// BuildArgs are forwarded to the build; useful for proxy variables.
	BuildArgs map[string]string
}

// Build builds an image without any progress output on the console. A
// failed build is reported in the log and yields no handle; the caller must
// check for the absent handle.
func (s *Service) Build(ctx context.Context, opts BuildOptions) *ImageHandle {
	handle, err := s.buildImage(ctx, opts, io.Discard)
	if err != nil {
		s.logger.Error("docker build failed (did you provide HTTP/HTTPS proxy variables?)",
			zap.String("tag", opts.Tag),
			zap.Error(err),
		)
		return nil
	}
	return handle
}

// BuildWithOutput builds an image and echoes build progress on the console
// the way the engine's own command line tool does.
func (s *Service) BuildWithOutput(ctx context.Context, opts BuildOptions) (*ImageHandle, error) {
	return s.buildImage(ctx, opts, s.progress)
}

func (s *Service) buildImage(ctx context.Context, opts BuildOptions, out io.Writer) (*ImageHandle, error) {
	s.logger.Info("building image",
		zap.String("context_path", opts.ContextPath),
		zap.String("dockerfile", opts.Dockerfile),
		zap.String("tag", opts.Tag),
	)

	body, err := s.engine.Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	outcome, err := interpretBuildStream(body, out)
	if err != nil {
		return nil, err
	}
	return s.resolveBuildOutcome(ctx, outcome)
}
