// Package backend selects concrete decoder, encoder and converter
// implementations for an execution domain.
package backend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/asticode/go-astiav"
)

// Backend identifies the execution domain for decode, encode and convert
// operations.
type Backend int

const (
	// CPU runs everything on host memory.
	CPU Backend = iota
	// CUDA decodes on an NVIDIA device and converts asynchronously.
	CUDA
)

// String returns the name of the backend.
func (b Backend) String() string {
	if b == CUDA {
		return "cuda"
	}
	return "cpu"
}

// Parse parses a backend name.
func Parse(s string) (Backend, error) {
	switch s {
	case "cpu":
		return CPU, nil
	case "cuda":
		return CUDA, nil
	default:
		return 0, fmt.Errorf("unsupported backend: %q", s)
	}
}

// Device availability is process-wide state: probed once, cached, and
// treated as immutable for the process lifetime.
var (
	cudaOnce  sync.Once
	cudaErr   error
	cudaProbe = probeCUDA
)

// CUDAAvailable reports whether a usable CUDA device exists. The first
// call probes the device; later calls return the cached result.
func CUDAAvailable() error {
	cudaOnce.Do(func() {
		cudaErr = cudaProbe()
	})
	return cudaErr
}

func probeCUDA() error {
	t := astiav.FindHardwareDeviceTypeByName("cuda")
	if t == astiav.HardwareDeviceTypeNone {
		return errors.New("cuda support not compiled into libav")
	}
	hdc, err := astiav.CreateHardwareDeviceContext(t, "", nil, 0)
	if err != nil {
		return fmt.Errorf("create cuda device context: %w", err)
	}
	hdc.Free()
	return nil
}
