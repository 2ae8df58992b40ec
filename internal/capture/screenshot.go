//go:build !darwin

package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenshotCapturer captures through kbinani/screenshot (X11 on Linux,
// GDI on Windows).
type ScreenshotCapturer struct {
	display int
	bounds  image.Rectangle
}

// NewScreenshotCapturer returns a capturer for the given active display.
func NewScreenshotCapturer(displayIndex int) (*ScreenshotCapturer, error) {
	n := screenshot.NumActiveDisplays()
	if displayIndex < 0 || displayIndex >= n {
		return nil, fmt.Errorf("display index %d out of range (have %d displays)", displayIndex, n)
	}
	return &ScreenshotCapturer{
		display: displayIndex,
		bounds:  screenshot.GetDisplayBounds(displayIndex),
	}, nil
}

// NewPlatformCapturer returns the capturer for this platform.
func NewPlatformCapturer(displayIndex int) (Capturer, error) {
	return NewScreenshotCapturer(displayIndex)
}

func (c *ScreenshotCapturer) Bounds() image.Rectangle { return c.bounds }

func (c *ScreenshotCapturer) CaptureRegion(rect image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture display %d %v: %w", c.display, rect, err)
	}
	return img, nil
}
