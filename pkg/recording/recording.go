// Package recording stores received datagrams in a file and plays them back.
//
// File layout: magic "ACCB", uint8 version, followed by frames of
// uint32 offset in milliseconds since start, uint32 length and the datagram.
// All integers are little-endian.
package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/wire"
)

const (
	Magic   = "ACCB"
	Version = uint8(1)
)

var (
	ErrInvalidMagic       = errors.New("not a recording file")
	ErrUnsupportedVersion = errors.New("unsupported recording version")
	ErrFrameTooLarge      = errors.New("frame too large")
)

// Frame is a recorded datagram
type Frame struct {
	Offset time.Duration
	Data   []byte
}

type (
	// Recorder appends datagrams to a recording. It is safe for concurrent use.
	Recorder struct {
		mu     sync.Mutex
		w      *bufio.Writer
		closer io.Closer
		start  time.Time
		now    func() time.Time
		frames int
	}
	Option func(*Recorder)
)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder writes the file header to w.
// The time of the first frame is the creation of the recorder.
func NewRecorder(w io.Writer, opts ...Option) (*Recorder, error) {
	r := &Recorder{w: bufio.NewWriter(w), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	r.start = r.now()
	header := wire.NewWriter().Raw([]byte(Magic)).Uint8(Version).Bytes()
	if _, err := r.w.Write(header); err != nil {
		return nil, err
	}
	return r, nil
}

// Create creates (or truncates) the file and returns a recorder writing to it
func Create(name string, opts ...Option) (*Recorder, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	r, err := NewRecorder(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) Record(data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return ErrFrameTooLarge
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	offset := r.now().Sub(r.start).Milliseconds()
	header := wire.NewWriter().
		Uint32(uint32(max(offset, 0))).
		Uint32(uint32(len(data))).
		Bytes()
	if _, err := r.w.Write(header); err != nil {
		return err
	}
	if _, err := r.w.Write(data); err != nil {
		return err
	}
	r.frames++
	return nil
}

// Frames returns the number of recorded frames
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Flush()
}

// Close flushes the recording and closes the underlying writer if it is a Closer
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.w.Flush()
	if r.closer != nil {
		err = errors.Join(err, r.closer.Close())
	}
	return err
}

func ReadFile(name string) ([]Frame, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a complete recording
func Parse(data []byte) ([]Frame, error) {
	r := wire.NewReader(data)
	magic, err := r.Bytes(len(Magic))
	if err != nil || string(magic) != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.Uint8()
	if err != nil {
		return nil, ErrInvalidMagic
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	frames := []Frame{}
	for r.Remaining() > 0 {
		offset, err := r.Uint32()
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		size, err := r.Uint32()
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		payload, err := r.Bytes(int(size))
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, Frame{
			Offset: time.Duration(offset) * time.Millisecond,
			Data:   payload,
		})
	}
	return frames, nil
}

// Play hands the frames to handler. With speed > 0 the frames are paced
// according to their offsets (2 plays twice as fast), otherwise they are
// delivered without delay.
func Play(ctx context.Context, frames []Frame, speed float64, handler func(data []byte)) error {
	logger := log.Default().Named("recording")
	start := time.Now()
	for i := range frames {
		if speed > 0 {
			due := start.Add(time.Duration(float64(frames[i].Offset) / speed))
			if wait := time.Until(due); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		handler(frames[i].Data)
	}
	logger.Debug("replay finished",
		log.Int("frames", len(frames)),
		log.Duration("duration", time.Since(start)))
	return nil
}
