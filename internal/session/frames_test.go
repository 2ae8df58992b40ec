package session

import (
	"image"
	"sync"
	"testing"
)

func TestFrameSlotReadersSeeCompleteFrames(t *testing.T) {
	t.Parallel()

	var slot FrameSlot
	if slot.Load() != nil {
		t.Fatal("empty slot returned a frame")
	}

	const frames = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range frames {
			img := image.NewRGBA(image.Rect(0, 0, 16, 16))
			for p := range img.Pix {
				img.Pix[p] = byte(i)
			}
			slot.Publish(img)
		}
	}()

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range frames {
				img := slot.Load()
				if img == nil {
					continue
				}
				first := img.Pix[0]
				for _, b := range img.Pix {
					if b != first {
						t.Errorf("reader saw a mixed frame")
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if got := slot.Load().Pix[0]; got != frames-1 {
		t.Errorf("last frame value = %d, want %d", got, frames-1)
	}
}

func TestFPSCounterTickResets(t *testing.T) {
	t.Parallel()

	var c FPSCounter
	for range 3 {
		c.Inc()
	}
	if got := c.Tick(); got != 3 {
		t.Errorf("first Tick = %d, want 3", got)
	}
	if got := c.Tick(); got != 0 {
		t.Errorf("second Tick = %d, want 0", got)
	}
}
