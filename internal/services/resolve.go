package services

import (
	"context"

	"go.uber.org/zap"

	apperrors "cubedock/internal/errors"
)

// resolveBuildOutcome materializes a concrete image handle for an
// interpreted build. A recovered candidate identifier is confirmed with an
// engine lookup; the engine claiming success while the identifier is
// unresolvable is a distinct, fatal inconsistency. Without a candidate the
// build is a plain failure carrying the last observed event.
func (s *Service) resolveBuildOutcome(ctx context.Context, outcome *buildOutcome) (*ImageHandle, error) {
	if outcome.imageID == "" {
		message := "unknown"
		if outcome.lastEvent != nil {
			message = string(outcome.lastEvent.Raw)
		}
		return nil, &apperrors.BuildError{Message: message, Events: outcome.events}
	}

	handle, err := s.engine.Inspect(ctx, outcome.imageID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrorCodeImageNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrorCodeBuildInconsistent, err, outcome.imageID)
		}
		return nil, err
	}

	s.logger.Info("build resolved", zap.String("image_id", handle.ID), zap.Strings("tags", handle.Tags))
	return handle, nil
}
