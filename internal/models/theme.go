package models

import "fmt"

// Known background gradient identifiers.
const (
	GradientMidnight = "midnight"
	GradientEmerald  = "emerald"
	GradientEmber    = "ember"
	GradientOcean    = "ocean"
)

// MaxBlurRadius is the upper bound for the backdrop blur setting.
const MaxBlurRadius = 40

// ThemeConfig is the user's presentation preference.
type ThemeConfig struct {
	BlurRadius int    `json:"blurRadius"`
	Gradient   string `json:"gradient"`
}

// DefaultTheme returns the out-of-the-box theme.
func DefaultTheme() ThemeConfig {
	return ThemeConfig{BlurRadius: 12, Gradient: GradientMidnight}
}

// Validate checks the theme values are within range.
func (t ThemeConfig) Validate() error {
	if t.BlurRadius < 0 || t.BlurRadius > MaxBlurRadius {
		return fmt.Errorf("blur radius must be between 0 and %d, got %d", MaxBlurRadius, t.BlurRadius)
	}
	switch t.Gradient {
	case GradientMidnight, GradientEmerald, GradientEmber, GradientOcean:
		return nil
	}
	return fmt.Errorf("unknown gradient %q", t.Gradient)
}
