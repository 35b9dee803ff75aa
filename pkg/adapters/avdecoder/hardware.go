package avdecoder

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/ports"
)

// hwValidatedCodecs are the codecs the CUDA decode path has been validated
// for. Anything else falls back to the software path.
var hwValidatedCodecs = map[astiav.CodecID]bool{
	astiav.CodecIDH264: true,
	astiav.CodecIDHevc: true,
}

// NewCUDA creates a decoder that decodes on a CUDA device. The device
// context must come from a successful backend probe; decoded frames stay
// in device memory and are handed to conv, which is responsible for the
// download and conversion.
func NewCUDA(conv ports.PixelConverter, log ports.Logger) (*Decoder, error) {
	t := astiav.FindHardwareDeviceTypeByName("cuda")
	if t == astiav.HardwareDeviceTypeNone {
		return nil, errors.New("cuda hardware device type not compiled in")
	}
	hdc, err := astiav.CreateHardwareDeviceContext(t, "", nil, 0)
	if err != nil {
		return nil, fmt.Errorf("create cuda device context: %w", err)
	}

	d := New(conv, log)
	d.log = log.WithComponent("avdecoder.cuda")
	d.hdc = hdc
	return d, nil
}

// bindHardware attaches the device context to the codec context and pins
// the hardware pixel format. Called from openInput before the codec is
// opened; failing here makes Open fail as a whole so the caller can retry
// with the software path.
func (d *Decoder) bindHardware(codec *astiav.Codec) error {
	if !hwValidatedCodecs[codec.ID()] {
		return fmt.Errorf("codec %s not validated for cuda decoding", codec.Name())
	}

	t := astiav.FindHardwareDeviceTypeByName("cuda")
	d.hwPixFmt = astiav.PixelFormatNone
	for _, cfg := range codec.HardwareConfigs() {
		if cfg.MethodFlags().Has(astiav.CodecHardwareConfigMethodFlagHwDeviceCtx) && cfg.HardwareDeviceType() == t {
			d.hwPixFmt = cfg.PixelFormat()
			break
		}
	}
	if d.hwPixFmt == astiav.PixelFormatNone {
		return fmt.Errorf("codec %s has no cuda device configuration", codec.Name())
	}

	d.cc.SetHardwareDeviceContext(d.hdc)
	hwPixFmt := d.hwPixFmt
	d.cc.SetPixelFormatCallback(func(pfs []astiav.PixelFormat) astiav.PixelFormat {
		for _, pf := range pfs {
			if pf == hwPixFmt {
				return pf
			}
		}
		return astiav.PixelFormatNone
	})
	return nil
}
