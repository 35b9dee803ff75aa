// Package cudaconverter converts hardware-decoded frames into pixel
// buffers. The device-to-host download happens on the calling goroutine,
// the layout transform and numeric cast run asynchronously; callers must
// Synchronize before reading converted data.
package cudaconverter

import (
	"fmt"
	"sync"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/adapters/swconverter"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// Converter implements ports.PixelConverter for the CUDA backend. One
// worker goroutine executes queued conversions in submission order, so a
// converted buffer is complete exactly when Synchronize returns. Errors
// are latched and surfaced by the next Synchronize call.
type Converter struct {
	kind  ports.ConversionKind
	inner *swconverter.Converter

	jobs    chan func() error
	pending sync.WaitGroup
	done    chan struct{}

	frames chan *astiav.Frame // reusable host staging frames

	mu     sync.Mutex
	err    error
	closed bool
}

// stagingPoolSize bounds the number of host frames in flight.
const stagingPoolSize = 4

// New creates a converter with a fixed direction and destination type.
func New(kind ports.ConversionKind, dtype pixbuf.DataType) *Converter {
	c := &Converter{
		kind:   kind,
		inner:  swconverter.New(kind, dtype),
		jobs:   make(chan func() error, stagingPoolSize),
		done:   make(chan struct{}),
		frames: make(chan *astiav.Frame, stagingPoolSize),
	}
	for i := 0; i < stagingPoolSize; i++ {
		c.frames <- astiav.AllocFrame()
	}
	go c.worker()
	return c
}

func (c *Converter) worker() {
	defer close(c.done)
	for job := range c.jobs {
		if err := job(); err != nil {
			c.mu.Lock()
			if c.err == nil {
				c.err = err
			}
			c.mu.Unlock()
		}
		c.pending.Done()
	}
}

// ToBuffer downloads the hardware frame into a staging frame, then queues
// the layout transform and cast into dst. dst is complete only after
// Synchronize.
func (c *Converter) ToBuffer(src *astiav.Frame, dst *pixbuf.Buffer) error {
	if c.kind != ports.KindDecode {
		return ports.ErrWrongDirection
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ports.ErrClosed
	}

	staging := <-c.frames
	staging.Unref()

	// The decoder owns src only for the duration of this call, so the
	// download cannot be deferred to the worker.
	if err := src.TransferHardwareData(staging); err != nil {
		c.frames <- staging
		return fmt.Errorf("transfer hardware frame: %w", err)
	}

	c.pending.Add(1)
	c.jobs <- func() error {
		defer func() { c.frames <- staging }()
		return c.inner.ToBuffer(staging, dst)
	}
	return nil
}

// ToFrame is the encode direction. The pre-encode frame is consumed by the
// encoder immediately after this call returns, so the conversion runs
// synchronously after draining queued work.
func (c *Converter) ToFrame(src *pixbuf.Buffer, dst *astiav.Frame) error {
	if c.kind != ports.KindEncode {
		return ports.ErrWrongDirection
	}
	if err := c.Synchronize(); err != nil {
		return err
	}
	return c.inner.ToFrame(src, dst)
}

// Synchronize blocks until all queued conversions complete and returns the
// first deferred error since the previous call.
func (c *Converter) Synchronize() error {
	c.pending.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.err
	c.err = nil
	return err
}

// Close drains outstanding work and releases all resources. Idempotent.
func (c *Converter) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.pending.Wait()
	close(c.jobs)
	<-c.done

	close(c.frames)
	for f := range c.frames {
		f.Free()
	}
	c.inner.Close()
}

var _ ports.PixelConverter = (*Converter)(nil)
