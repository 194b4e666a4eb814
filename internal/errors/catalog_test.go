package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorCodeImageNotFound, "mlcommons/mnist:0.0.1")
	require.Contains(t, err.Error(), "IMAGE_NOT_FOUND")
	require.Contains(t, err.Error(), "mlcommons/mnist:0.0.1")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrorCodeProtocolDecode, cause)

	require.True(t, stderrors.Is(err, cause))
	require.Contains(t, err.Error(), "connection refused")
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("build pipeline: %w", New(ErrorCodeBuildInconsistent, "a1b2c3d4"))

	require.True(t, HasCode(err, ErrorCodeBuildInconsistent))
	require.False(t, HasCode(err, ErrorCodeBuildFailed))
	require.False(t, HasCode(stderrors.New("plain"), ErrorCodeBuildFailed))
}

func TestContainerErrorStderrText(t *testing.T) {
	err := &ContainerError{
		Command:    "train",
		Image:      "mlcommons/mnist:0.0.1",
		ExitStatus: 1,
		Stderr:     `Traceback:\n  failure`,
	}
	require.Equal(t, "Traceback:\n  failure", err.StderrText())
	require.Contains(t, err.Error(), "exited with status 1")
}
