package validation

import (
	"github.com/kozaktomas/face-auth/internal/config"
	"github.com/kozaktomas/face-auth/internal/constants"
)

// Limits are the numeric and set constraints applied to input fields.
type Limits struct {
	MaxImageSizeMB    int
	AllowedImageTypes []string
	MinPasswordLength int
	MinWidth          int
	MinHeight         int
	MaxWidth          int
	MaxHeight         int
}

// DefaultLimits returns the built-in constraints.
func DefaultLimits() Limits {
	return Limits{
		MaxImageSizeMB:    constants.MaxImageSizeMB,
		AllowedImageTypes: constants.AllowedImageTypes,
		MinPasswordLength: constants.MinPasswordLength,
		MinWidth:          constants.MinImageWidth,
		MinHeight:         constants.MinImageHeight,
		MaxWidth:          constants.MaxImageWidth,
		MaxHeight:         constants.MaxImageHeight,
	}
}

// LimitsFromConfig converts loaded configuration into validation limits.
// Zero values fall back to the built-in constraints.
func LimitsFromConfig(c *config.LimitsConfig) Limits {
	l := DefaultLimits()
	if c == nil {
		return l
	}
	if c.MaxImageSizeMB > 0 {
		l.MaxImageSizeMB = c.MaxImageSizeMB
	}
	if len(c.AllowedImageTypes) > 0 {
		l.AllowedImageTypes = c.AllowedImageTypes
	}
	if c.MinPasswordLength > 0 {
		l.MinPasswordLength = c.MinPasswordLength
	}
	if c.MinResolution.Width > 0 && c.MinResolution.Height > 0 {
		l.MinWidth, l.MinHeight = c.MinResolution.Width, c.MinResolution.Height
	}
	if c.MaxResolution.Width > 0 && c.MaxResolution.Height > 0 {
		l.MaxWidth, l.MaxHeight = c.MaxResolution.Width, c.MaxResolution.Height
	}
	return l
}

func (l Limits) maxImageBytes() int64 {
	return int64(l.MaxImageSizeMB) * 1024 * 1024
}
