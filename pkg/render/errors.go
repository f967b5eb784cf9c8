package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Sequencing and capacity errors. Every one of them is also passed to the
// context's ErrorSink before it is returned.
var (
	ErrNoViewport    = errors.New("render: no viewport bound")
	ErrNotBegun      = errors.New("render: no primitive open")
	ErrPrimitiveOpen = errors.New("render: primitive already open")
	ErrCapacity      = errors.New("render: vertex array capacity exceeded")
	ErrPickTooSmall  = errors.New("render: pick buffer smaller than viewport")
)

// CapacityError reports an append to a full attribute array.
type CapacityError struct {
	Attribute string // "vertex", "texcoord", "normal" or "color"
	Capacity  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("render: %s array full (capacity %d)", e.Attribute, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// ErrorSink receives every error the context produces.
type ErrorSink interface {
	Report(err error)
}

// ErrorSinkFunc adapts a function to an ErrorSink.
type ErrorSinkFunc func(err error)

// Report calls f(err).
func (f ErrorSinkFunc) Report(err error) { f(err) }

// SlogSink logs reported errors at error level.
type SlogSink struct {
	Logger *slog.Logger
}

// NewSlogSink returns a sink writing text records to stderr.
func NewSlogSink() *SlogSink {
	return &SlogSink{Logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

// Report implements ErrorSink.
func (s *SlogSink) Report(err error) {
	s.Logger.LogAttrs(context.Background(), slog.LevelError, "render error", slog.Any("err", err))
}

// ByteSource reads whole named resources, such as textures and model files.
type ByteSource interface {
	ReadFile(name string) ([]byte, error)
}

// OSFiles reads from the operating system's filesystem.
type OSFiles struct{}

// ReadFile implements ByteSource.
func (OSFiles) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// FSSource reads from an fs.FS such as an embed.FS or fstest.MapFS.
type FSSource struct {
	FS fs.FS
}

// ReadFile implements ByteSource.
func (s FSSource) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(s.FS, name)
}
