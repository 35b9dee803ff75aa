package backend

import (
	"fmt"

	"github.com/user/framecast/pkg/adapters/avdecoder"
	"github.com/user/framecast/pkg/adapters/avencoder"
	"github.com/user/framecast/pkg/adapters/cudaconverter"
	"github.com/user/framecast/pkg/adapters/swconverter"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// Factory builds decoder, encoder and converter instances for one backend
// and numeric type. Device availability is checked at construction, before
// any codec or file resource is touched.
type Factory struct {
	backend Backend
	dtype   pixbuf.DataType
	log     ports.Logger
}

// NewFactory validates the backend and data type combination and returns a
// factory. Requesting CUDA without a usable device fails fast with an
// *ports.UnsupportedBackendError.
func NewFactory(b Backend, dtype pixbuf.DataType, log ports.Logger) (*Factory, error) {
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("unsupported data type: %d", dtype)
	}
	if b == CUDA {
		if err := CUDAAvailable(); err != nil {
			return nil, &ports.UnsupportedBackendError{Backend: b.String(), Err: err}
		}
	}
	return &Factory{backend: b, dtype: dtype, log: log}, nil
}

// Backend returns the factory's execution domain.
func (f *Factory) Backend() Backend {
	return f.backend
}

// DataType returns the factory's numeric type.
func (f *Factory) DataType() pixbuf.DataType {
	return f.dtype
}

// NewConverter builds a converter of the given kind for the factory's
// backend and data type.
func (f *Factory) NewConverter(kind ports.ConversionKind) ports.PixelConverter {
	if f.backend == CUDA {
		return cudaconverter.New(kind, f.dtype)
	}
	return swconverter.New(kind, f.dtype)
}

// NewDecoder opens a decoder for path, bound to a decode-direction
// converter. On the CUDA backend, codecs not validated for hardware
// decoding fall back to the software path.
func (f *Factory) NewDecoder(path string) (ports.VideoDecoder, ports.PixelConverter, error) {
	if f.backend == CUDA {
		conv := f.NewConverter(ports.KindDecode)
		dec, err := avdecoder.NewCUDA(conv, f.log)
		if err == nil {
			if err = dec.Open(path); err == nil {
				return dec, conv, nil
			}
			dec.Close()
		}
		conv.Close()
		f.log.Warn("cuda decode unavailable for %s, falling back to software: %v", path, err)
	}

	conv := swconverter.New(ports.KindDecode, f.dtype)
	dec := avdecoder.New(conv, f.log)
	if err := dec.Open(path); err != nil {
		conv.Close()
		return nil, nil, err
	}
	return dec, conv, nil
}

// NewEncoder initializes an encoder for path, bound to an encode-direction
// converter. Encoding always converts on the host; the CUDA backend's
// asynchronous converter is synchronized per submitted frame.
func (f *Factory) NewEncoder(path string, props ports.VideoProperties, opts ports.EncoderOptions) (ports.VideoEncoder, ports.PixelConverter, error) {
	conv := f.NewConverter(ports.KindEncode)
	enc := avencoder.New(conv, f.log)
	if err := enc.Initialize(path, props, opts); err != nil {
		conv.Close()
		return nil, nil, err
	}
	return enc, conv, nil
}
