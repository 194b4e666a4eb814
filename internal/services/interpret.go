package services

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	apperrors "cubedock/internal/errors"
)

// imageIDPattern matches the progress lines the engine emits when a build
// stage completes: "Successfully built <hex>" or anything ending in
// "sha256:<hex>". The engine does not return the final image id
// structurally on all versions, so this is the reliable signal; it is the
// same pattern the engine's own reference client matches internally.
var imageIDPattern = regexp.MustCompile(`(^Successfully built |sha256:)([0-9a-f]+)$`)

// buildOutcome is the result of interpreting one full build event sequence.
// imageID is empty when no identifier was recovered. events is the teed raw
// copy of everything consumed, available for diagnostics without re-reading
// the connection.
type buildOutcome struct {
	imageID   string
	lastEvent *BuildEvent
	events    []json.RawMessage
}

// interpretBuildStream consumes the decoded event sequence strictly in
// order. Progress text is echoed to out as it arrives, unbuffered and
// verbatim. Identifier matches overwrite earlier ones; the engine may emit
// several stage identifiers before the final one, so the last match wins.
// An error record halts interpretation immediately and classifies the build
// as failed regardless of any previously recorded candidate.
func interpretBuildStream(body io.Reader, out io.Writer) (*buildOutcome, error) {
	decoder := newEventDecoder(body)
	outcome := &buildOutcome{}

	for {
		event, err := decoder.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		outcome.events = append(outcome.events, event.Raw)

		if event.Error != "" {
			return nil, &apperrors.BuildError{Message: event.Error, Events: outcome.events}
		}

		if event.Stream != "" {
			fmt.Fprint(out, event.Stream)
			if match := imageIDPattern.FindStringSubmatch(strings.TrimSuffix(event.Stream, "\n")); match != nil {
				outcome.imageID = match[2]
			}
		}

		outcome.lastEvent = event
	}

	return outcome, nil
}
