package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "cubedock/internal/errors"
)

func TestInterpretResolvesBuiltImageID(t *testing.T) {
	input := `{"stream":"Step 1/2\n"}{"stream":"Successfully built a1b2c3d4\n"}`

	var out bytes.Buffer
	outcome, err := interpretBuildStream(strings.NewReader(input), &out)
	require.NoError(t, err)
	require.Equal(t, "a1b2c3d4", outcome.imageID)
	require.Equal(t, "Step 1/2\nSuccessfully built a1b2c3d4\n", out.String())
}

func TestInterpretSha256Suffix(t *testing.T) {
	input := `{"stream":" ---> writing image sha256:0123456789abcdef\n"}`

	outcome, err := interpretBuildStream(strings.NewReader(input), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdef", outcome.imageID)
}

func TestInterpretLastMatchWins(t *testing.T) {
	input := `{"stream":"Successfully built 11111111\n"}` +
		`{"stream":"Step 2/2\n"}` +
		`{"stream":"Successfully built 22222222\n"}`

	outcome, err := interpretBuildStream(strings.NewReader(input), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "22222222", outcome.imageID)
}

func TestInterpretNonMatchingLines(t *testing.T) {
	tests := []string{
		"Successfully built \n",              // no identifier at all
		"Successfully built a1b2c3d4 now\n",  // identifier not at end of line
		"Successfully built A1B2C3D4\n",      // uppercase is not a hex id here
		"sha256:\n",                          // bare prefix
	}
	for _, text := range tests {
		input := `{"stream":"` + strings.ReplaceAll(text, "\n", `\n`) + `"}`
		outcome, err := interpretBuildStream(strings.NewReader(input), &bytes.Buffer{})
		require.NoError(t, err)
		require.Empty(t, outcome.imageID, "line %q must not match", text)
	}
}

func TestInterpretErrorEventHaltsImmediately(t *testing.T) {
	input := `{"stream":"Successfully built a1b2c3d4\n"}` +
		`{"error":"no space left on device"}` +
		`{"stream":"Successfully built ffffffff\n"}`

	_, err := interpretBuildStream(strings.NewReader(input), &bytes.Buffer{})
	var buildErr *apperrors.BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Equal(t, "no space left on device", buildErr.Message)

	// The teed copy holds everything consumed up to and including the
	// error record, byte for byte.
	require.Len(t, buildErr.Events, 2)
	require.Equal(t, `{"stream":"Successfully built a1b2c3d4\n"}`, string(buildErr.Events[0]))
	require.Equal(t, `{"error":"no space left on device"}`, string(buildErr.Events[1]))
}

func TestInterpretEmptySequence(t *testing.T) {
	outcome, err := interpretBuildStream(strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	require.Empty(t, outcome.imageID)
	require.Nil(t, outcome.lastEvent)
	require.Empty(t, outcome.events)
}

func TestInterpretEchoIsVerbatim(t *testing.T) {
	// Text passes through untouched, including carriage returns and
	// missing trailing newlines.
	input := `{"stream":"downloading\r"}{"stream":"done"}`

	var out bytes.Buffer
	_, err := interpretBuildStream(strings.NewReader(input), &out)
	require.NoError(t, err)
	require.Equal(t, "downloading\rdone", out.String())
}

func TestInterpretTeedCopyMatchesConsumed(t *testing.T) {
	records := []string{
		`{"stream":"Step 1/2\n"}`,
		`{"status":"Pulling fs layer"}`,
		`{"stream":"Successfully built a1b2c3d4\n"}`,
	}

	outcome, err := interpretBuildStream(strings.NewReader(strings.Join(records, "")), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, outcome.events, len(records))
	for i, want := range records {
		require.Equal(t, want, string(outcome.events[i]))
	}
}
