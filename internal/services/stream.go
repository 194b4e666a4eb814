package services

import (
	"encoding/json"
	"errors"
	"io"

	apperrors "cubedock/internal/errors"
)

// BuildEvent is one decoded record from the engine's build progress stream.
// Stream carries free-form progress text, Error a terminal failure message.
// Raw preserves the record exactly as received; fields other than the two
// known ones pass through in it unexamined.
type BuildEvent struct {
	Stream string `json:"stream"`
	Error  string `json:"error"`

	Raw json.RawMessage `json:"-"`
}

// eventDecoder turns the raw build-response body into a sequence of
// BuildEvents. The engine emits self-delimited JSON records whose boundaries
// need not align with network chunks; json.Decoder buffers partial records
// across reads and handles concatenated records.
type eventDecoder struct {
	dec *json.Decoder
}

func newEventDecoder(r io.Reader) *eventDecoder {
	return &eventDecoder{dec: json.NewDecoder(r)}
}

// Next returns the next decoded event, io.EOF when the stream is exhausted,
// or a PROTOCOL_DECODE_FAILED error for a malformed record.
func (d *eventDecoder) Next() (*BuildEvent, error) {
	var raw json.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, apperrors.Wrap(apperrors.ErrorCodeProtocolDecode, err)
	}

	event := &BuildEvent{Raw: raw}
	if err := json.Unmarshal(raw, event); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorCodeProtocolDecode, err)
	}
	return event, nil
}
