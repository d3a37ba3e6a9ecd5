package bridge

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Op is a frame operation.
type Op string

const (
	OpListen   Op = "listen"
	OpUnlisten Op = "unlisten"
	OpEvent    Op = "event"
)

// ErrInvalidFrame is returned when a frame cannot be decoded or lacks
// required fields.
var ErrInvalidFrame = errors.New("bridge: invalid frame")

// Frame is one message exchanged with the client.
type Frame struct {
	Op    Op             `json:"op"`
	HID   string         `json:"hid"`
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Encode serializes the frame.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame parses a frame and checks that op, hid and event are set.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if f.Op == "" || f.HID == "" || f.Event == "" {
		return Frame{}, fmt.Errorf("%w: op, hid and event are required", ErrInvalidFrame)
	}
	return f, nil
}
