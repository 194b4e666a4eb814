package services

import (
	"fmt"
	"strings"
)

// ImageHandle is a resolved, confirmed reference to an image held by the
// engine. It is produced only by an engine lookup, a pull, or the build
// outcome resolver, and is never mutated after that.
type ImageHandle struct {
	ID     string
	Tags   []string
	Labels map[string]string
}

// ShortID returns a display-length prefix of the image identifier.
func (h *ImageHandle) ShortID() string {
	if strings.HasPrefix(h.ID, "sha256:") && len(h.ID) > 17 {
		return h.ID[:17]
	}
	if len(h.ID) > 10 {
		return h.ID[:10]
	}
	return h.ID
}

// Reference returns the name to run the image by: its first tag, or the
// raw identifier for untagged images.
func (h *ImageHandle) Reference() string {
	if len(h.Tags) > 0 {
		return h.Tags[0]
	}
	return h.ID
}

// String returns a human-friendly description of the image.
func (h *ImageHandle) String() string {
	return fmt.Sprintf("Image(id=%s, short_id=%s, tags=%v, labels=%v)", h.ID, h.ShortID(), h.Tags, h.Labels)
}
