package session

import (
	"image"
	"sync/atomic"
)

// FrameSlot holds the most recently decoded frame. One goroutine
// publishes; any number read. A published image is never modified
// afterwards, so readers always see a complete frame.
type FrameSlot struct {
	frame atomic.Pointer[image.RGBA]
}

// Publish replaces the current frame.
func (s *FrameSlot) Publish(img *image.RGBA) {
	s.frame.Store(img)
}

// Load returns the current frame, or nil before the first one.
func (s *FrameSlot) Load() *image.RGBA {
	return s.frame.Load()
}

// FPSCounter counts frames between reporting ticks.
type FPSCounter struct {
	n atomic.Int64
}

// Inc records one frame.
func (c *FPSCounter) Inc() {
	c.n.Add(1)
}

// Tick returns the number of frames since the previous tick and resets
// the count.
func (c *FPSCounter) Tick() int {
	return int(c.n.Swap(0))
}
