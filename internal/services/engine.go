package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	apperrors "cubedock/internal/errors"
)

// EngineAPI is the boundary to the container engine. One implementation
// wraps the Docker remote API; tests substitute fakes. Lookups that miss
// return an IMAGE_NOT_FOUND coded error so callers can tell absence from
// transport failure.
type EngineAPI interface {
	// Inspect looks up an image by name or identifier.
	Inspect(ctx context.Context, ref string) (*ImageHandle, error)

	// Pull fetches an image by name. The engine may materialize several
	// images for one name (a name without a tag pulls every tag), so the
	// result is normalized to a list at this boundary.
	Pull(ctx context.Context, name string) ([]ImageHandle, error)

	// Build submits a build and returns the engine's raw stream of
	// progress records. The caller owns closing it.
	Build(ctx context.Context, opts BuildOptions) (io.ReadCloser, error)

	// Run executes a container to completion, writing its output to out
	// as it arrives. Returns the exit status and the captured stderr.
	Run(ctx context.Context, spec RunSpec, out io.Writer) (int64, string, error)

	// Close releases the engine connection.
	Close() error
}

// dockerEngine implements EngineAPI over the Docker SDK client.
type dockerEngine struct {
	cli *client.Client
}

func newDockerEngine(host string) (*dockerEngine, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	} else {
		opts = append(opts, client.FromEnv)
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &dockerEngine{cli: cli}, nil
}

func (e *dockerEngine) Close() error {
	return e.cli.Close()
}

func (e *dockerEngine) Inspect(ctx context.Context, ref string) (*ImageHandle, error) {
	inspect, _, err := e.cli.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, apperrors.Wrap(apperrors.ErrorCodeImageNotFound, err, ref)
		}
		return nil, fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}

	handle := &ImageHandle{ID: inspect.ID, Tags: inspect.RepoTags}
	if inspect.Config != nil {
		handle.Labels = inspect.Config.Labels
	}
	return handle, nil
}

func (e *dockerEngine) Pull(ctx context.Context, name string) ([]ImageHandle, error) {
	reader, err := e.cli.ImagePull(ctx, name, image.PullOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, apperrors.Wrap(apperrors.ErrorCodeImageNotFound, err, name)
		}
		return nil, fmt.Errorf("failed to pull image %s: %w", name, err)
	}
	defer reader.Close()

	// The pull endpoint reports completion through its progress stream;
	// drain it before asking the engine what arrived.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, fmt.Errorf("failed to read pull stream: %w", err)
	}

	filter := filters.NewArgs()
	filter.Add("reference", name)
	summaries, err := e.cli.ImageList(ctx, image.ListOptions{Filters: filter})
	if err != nil {
		return nil, fmt.Errorf("failed to list pulled images: %w", err)
	}

	handles := make([]ImageHandle, 0, len(summaries))
	for _, summary := range summaries {
		handles = append(handles, ImageHandle{ID: summary.ID, Tags: summary.RepoTags, Labels: summary.Labels})
	}
	return handles, nil
}

func (e *dockerEngine) Build(ctx context.Context, opts BuildOptions) (io.ReadCloser, error) {
	buildContext, err := tarBuildContext(opts.ContextPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	defer buildContext.Close()

	buildArgs := make(map[string]*string, len(opts.BuildArgs))
	for name, value := range opts.BuildArgs {
		buildArgs[name] = &value
	}

	response, err := e.cli.ImageBuild(ctx, buildContext, types.ImageBuildOptions{
		Dockerfile: opts.Dockerfile,
		Tags:       []string{opts.Tag},
		Remove:     true,
		BuildArgs:  buildArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start image build: %w", err)
	}
	return response.Body, nil
}

func (e *dockerEngine) Run(ctx context.Context, spec RunSpec, out io.Writer) (int64, string, error) {
	binds := make([]string, 0, len(spec.Volumes))
	for hostPath, containerPath := range spec.Volumes {
		binds = append(binds, hostPath+":"+containerPath)
	}
	sort.Strings(binds)

	env := make([]string, 0, len(spec.Environment))
	for name, value := range spec.Environment {
		env = append(env, fmt.Sprintf("%s=%s", name, value))
	}
	sort.Strings(env)

	created, err := e.cli.ContainerCreate(ctx, &container.Config{
		Image: spec.Image.Reference(),
		Cmd:   strings.Fields(spec.Command),
		Env:   env,
	}, &container.HostConfig{
		Binds:      binds,
		AutoRemove: true,
	}, nil, nil, "")
	if err != nil {
		return -1, "", fmt.Errorf("failed to create container: %w", err)
	}

	attach, err := e.cli.ContainerAttach(ctx, created.ID, container.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		e.cli.ContainerRemove(ctx, created.ID, container.RemoveOptions{Force: true})
		return -1, "", fmt.Errorf("failed to attach to container: %w", err)
	}
	defer attach.Close()

	// Register the wait before starting so the exit of a short-lived
	// auto-removed container cannot be missed.
	statusCh, errCh := e.cli.ContainerWait(ctx, created.ID, container.WaitConditionNextExit)

	if err := e.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		e.cli.ContainerRemove(ctx, created.ID, container.RemoveOptions{Force: true})
		return -1, "", fmt.Errorf("failed to start container: %w", err)
	}

	// The attached stream multiplexes stdout and stderr; echo both live
	// and keep a stderr copy for the failure report.
	var stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(out, io.MultiWriter(out, &stderr), attach.Reader); err != nil {
		return -1, "", fmt.Errorf("failed to stream container output: %w", err)
	}

	select {
	case err := <-errCh:
		return -1, "", fmt.Errorf("failed to wait for container: %w", err)
	case status := <-statusCh:
		if status.Error != nil {
			return status.StatusCode, stderr.String(), fmt.Errorf("container wait error: %s", status.Error.Message)
		}
		return status.StatusCode, stderr.String(), nil
	}
}
