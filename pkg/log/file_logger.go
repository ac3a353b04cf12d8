package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// captureEnc writes deterministic CBOR with RFC 3339 timestamps so two
// captures of the same exchange compare byte for byte.
var captureEnc = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	opts.NilContainers = cbor.NilContainerAsNull
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("capture encoding mode: %v", err))
	}
	return em
}()

// EncodeEvent encodes one event the way FileLogger writes it.
func EncodeEvent(event Event) ([]byte, error) {
	return captureEnc.Marshal(event)
}

// FileLogger appends CBOR-encoded events to a capture file. When MaxBytes
// is set, the file is rotated to "<path>.1" once it grows past the limit,
// keeping one previous generation.
//
// It is safe for concurrent use.
type FileLogger struct {
	path     string
	maxBytes int64

	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	size    int64
	closed  bool
}

// FileLoggerOption configures a FileLogger.
type FileLoggerOption func(*FileLogger)

// WithMaxBytes enables size-based rotation.
func WithMaxBytes(n int64) FileLoggerOption {
	return func(l *FileLogger) {
		l.maxBytes = n
	}
}

// NewFileLogger opens (or creates with mode 0644) the capture file at path.
// Existing content is kept and new events are appended.
func NewFileLogger(path string, opts ...FileLoggerOption) (*FileLogger, error) {
	l := &FileLogger{path: path}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = info.Size()
	l.encoder = captureEnc.NewEncoder(&countingWriter{w: f, n: &l.size})
	return nil
}

// Log writes an event. Encoding and rotation errors are dropped so capture
// never disrupts the sessions being captured.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if l.maxBytes > 0 && l.size >= l.maxBytes {
		if err := l.rotate(); err != nil {
			return
		}
	}
	_ = l.encoder.Encode(event)
}

func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(l.path, l.path+".1"); err != nil {
		return fmt.Errorf("rotate capture file: %w", err)
	}
	return l.open()
}

// Close closes the capture file. Subsequent Log calls are ignored and
// repeated Close calls return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

type countingWriter struct {
	w io.Writer
	n *int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
