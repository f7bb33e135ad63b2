package dome

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the dome. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// Radius fitting
	Fit       float64 `yaml:"fit" validate:"gt=0"`
	FitBasis  string  `yaml:"fitBasis" validate:"oneof=auto min max width height"`
	MinRadius float64 `yaml:"minRadius" validate:"gte=0"`
	// MaxRadius of zero leaves the radius unbounded above.
	MaxRadius float64 `yaml:"maxRadius" validate:"gte=0"`
	PadFactor float64 `yaml:"padFactor" validate:"gte=0,lte=0.5"`

	// Segment density per viewport class
	Segments         int     `yaml:"segments" validate:"gte=3"`
	MobileSegments   int     `yaml:"mobileSegments" validate:"gte=3"`
	MobileBreakpoint float64 `yaml:"mobileBreakpoint" validate:"gte=0"`

	// Rotation
	MaxVerticalRotationDeg float64 `yaml:"maxVerticalRotationDeg" validate:"gte=0,lte=90"`
	DragSensitivity        float64 `yaml:"dragSensitivity" validate:"gt=0"`
	DragDampening          float64 `yaml:"dragDampening" validate:"gte=0,lte=1"`
	AutoRotateSpeed        float64 `yaml:"autoRotateSpeed"`
	SteerStrength          float64 `yaml:"steerStrength" validate:"gte=0"`

	// Focus transition
	EnlargeTransitionMs int     `yaml:"enlargeTransitionMs" validate:"gt=0"`
	OpenedWidth         float64 `yaml:"openedWidth" validate:"gte=0"`
	OpenedHeight        float64 `yaml:"openedHeight" validate:"gte=0"`
	TileRadius          float64 `yaml:"tileRadius" validate:"gte=0"`
	OpenedRadius        float64 `yaml:"openedRadius" validate:"gte=0"`
	OverlayColor        string  `yaml:"overlayColor" validate:"hexcolor"`
	Grayscale           bool    `yaml:"grayscale"`

	Images []Image `yaml:"images" validate:"dive"`
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		Fit:                    0.5,
		FitBasis:               "auto",
		MinRadius:              600,
		PadFactor:              0.25,
		Segments:               36,
		MobileSegments:         24,
		MobileBreakpoint:       768,
		MaxVerticalRotationDeg: 5,
		DragSensitivity:        20,
		DragDampening:          0.6,
		AutoRotateSpeed:        3,
		SteerStrength:          0.15,
		EnlargeTransitionMs:    300,
		TileRadius:             30,
		OpenedRadius:           30,
		OverlayColor:           "#060010",
		Grayscale:              true,
	}
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// validate returns a process-wide singleton of the validator.
func validate() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validatorInst
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.MaxRadius > 0 && c.MaxRadius < c.MinRadius {
		return fmt.Errorf("invalid config: maxRadius %v is below minRadius %v", c.MaxRadius, c.MinRadius)
	}
	return nil
}

// Overlay returns the scrim color parsed from OverlayColor. An unparsable
// value falls back to opaque black.
func (c Config) Overlay() Color {
	col, err := colorful.Hex(c.OverlayColor)
	if err != nil {
		return Color{A: 1}
	}
	return Color{R: col.R, G: col.G, B: col.B, A: 1}
}

// ParseConfig decodes YAML over the defaults and validates the result.
// Missing keys keep their default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
