package imaging

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownParam is returned for a band parameter name that does not exist.
	ErrUnknownParam = errors.New("unknown threshold parameter")
	// ErrOutOfRange is returned when a band value is outside its channel range.
	ErrOutOfRange = errors.New("threshold value out of range")
)

// Channel limits on the 8-bit HSV scale.
const (
	HueMax        = 179
	SaturationMax = 255
	ValueMax      = 255
)

// ThresholdBand is an inclusive HSV box. Min <= Max is not enforced: an
// inverted range is legal and simply matches nothing on that channel.
type ThresholdBand struct {
	HMin int `yaml:"h_min" json:"h_min"`
	HMax int `yaml:"h_max" json:"h_max"`
	SMin int `yaml:"s_min" json:"s_min"`
	SMax int `yaml:"s_max" json:"s_max"`
	VMin int `yaml:"v_min" json:"v_min"`
	VMax int `yaml:"v_max" json:"v_max"`
}

// DefaultBand returns the start-up thresholds of the tuning window.
func DefaultBand() ThresholdBand {
	return ThresholdBand{HMin: 0, HMax: 128, SMin: 128, SMax: 255, VMin: 128, VMax: 255}
}

// ParamNames lists the tunable parameters in display order.
func ParamNames() []string {
	return []string{"h_min", "h_max", "s_min", "s_max", "v_min", "v_max"}
}

// ParamRange returns the inclusive valid range of a parameter.
func ParamRange(name string) (lo, hi int, err error) {
	switch name {
	case "h_min", "h_max":
		return 0, HueMax, nil
	case "s_min", "s_max":
		return 0, SaturationMax, nil
	case "v_min", "v_max":
		return 0, ValueMax, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
}

func (b *ThresholdBand) field(name string) (*int, error) {
	switch name {
	case "h_min":
		return &b.HMin, nil
	case "h_max":
		return &b.HMax, nil
	case "s_min":
		return &b.SMin, nil
	case "s_max":
		return &b.SMax, nil
	case "v_min":
		return &b.VMin, nil
	case "v_max":
		return &b.VMax, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
}

// Get returns the value of a named parameter.
func (b ThresholdBand) Get(name string) (int, error) {
	p, err := b.field(name)
	if err != nil {
		return 0, err
	}
	return *p, nil
}

// Set changes a single named parameter after checking its range.
func (b *ThresholdBand) Set(name string, value int) error {
	lo, hi, err := ParamRange(name)
	if err != nil {
		return err
	}
	if value < lo || value > hi {
		return fmt.Errorf("%w: %s=%d not in [%d,%d]", ErrOutOfRange, name, value, lo, hi)
	}
	p, _ := b.field(name)
	*p = value
	return nil
}

// Validate checks every parameter against its channel range.
func (b ThresholdBand) Validate() error {
	for _, name := range ParamNames() {
		v, _ := b.Get(name)
		lo, hi, _ := ParamRange(name)
		if v < lo || v > hi {
			return fmt.Errorf("%w: %s=%d not in [%d,%d]", ErrOutOfRange, name, v, lo, hi)
		}
	}
	return nil
}

// Contains reports whether p lies inside the band on all three channels.
func (b ThresholdBand) Contains(p HSV) bool {
	h, s, v := int(p.H), int(p.S), int(p.V)
	return h >= b.HMin && h <= b.HMax &&
		s >= b.SMin && s <= b.SMax &&
		v >= b.VMin && v <= b.VMax
}

// BandStore holds the live band. The control loop reads a copy every cycle
// while tuning clients change single parameters.
type BandStore struct {
	mu   sync.RWMutex
	band ThresholdBand
}

// NewBandStore creates a store holding b.
func NewBandStore(b ThresholdBand) *BandStore {
	return &BandStore{band: b}
}

// Get returns a copy of the current band.
func (s *BandStore) Get() ThresholdBand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.band
}

// Set changes one parameter. The stored band is untouched on error.
func (s *BandStore) Set(name string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.band
	if err := next.Set(name, value); err != nil {
		return err
	}
	s.band = next
	return nil
}

// Replace swaps in a whole band after validating it.
func (s *BandStore) Replace(b ThresholdBand) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.band = b
	s.mu.Unlock()
	return nil
}
