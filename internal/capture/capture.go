// Package capture is the display-capture capability consumed by the
// host's image channel. Platform code lives behind Capturer; the rest of
// the pipeline never touches an OS facility directly.
package capture

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Capturer snapshots a region of the local display.
type Capturer interface {
	// Bounds returns the full display rectangle in the coordinate space
	// that pointer injection uses.
	Bounds() image.Rectangle

	// CaptureRegion returns the pixels of rect. The returned image may be
	// larger than rect on high-density displays; callers scale anyway.
	CaptureRegion(rect image.Rectangle) (*image.RGBA, error)
}

// ParseRegion parses "x,y,width,height". The empty string yields the
// zero rectangle, meaning "the whole display".
func ParseRegion(s string) (image.Rectangle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x,y,width,height", s)
	}
	var v [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// Region resolves the region to capture from c. A zero requested
// rectangle selects the whole display; otherwise requested must lie
// entirely within the display.
func Region(c Capturer, requested image.Rectangle) (image.Rectangle, error) {
	bounds := c.Bounds()
	if bounds.Empty() {
		return image.Rectangle{}, fmt.Errorf("display has empty bounds %v", bounds)
	}
	if requested == (image.Rectangle{}) {
		return bounds, nil
	}
	if !requested.In(bounds) {
		return image.Rectangle{}, fmt.Errorf("region %v is outside display bounds %v", requested, bounds)
	}
	return requested, nil
}
