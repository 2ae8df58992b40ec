package display

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/junsooki/AirDesk/internal/input"
	"github.com/junsooki/AirDesk/internal/session"
)

// EbitenDisplay renders the remote screen using Ebitengine and captures
// input. It also implements session.Status so the overlay can show the
// lifecycle state and frame rate.
type EbitenDisplay struct {
	sess  Session
	title string

	ebitenImage *ebiten.Image
	drawn       *image.RGBA

	viewW, viewH int
	prevX, prevY int
	wheel        wheelAccumulator
	keys         []ebiten.Key

	mu      sync.Mutex
	state   session.State
	lastErr error
	fps     atomic.Int64
	closing atomic.Bool
}

var _ session.Status = (*EbitenDisplay)(nil)

// NewEbitenDisplay creates an Ebitengine-based display. It can be handed
// to the session as its status sink before Run attaches the session.
func NewEbitenDisplay(title string) *EbitenDisplay {
	return &EbitenDisplay{
		title: title,
		prevX: -1,
		prevY: -1,
	}
}

// StateChanged implements session.Status.
func (d *EbitenDisplay) StateChanged(state session.State, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
	if err != nil {
		d.lastErr = err
	} else if state == session.StateAwaitingConnections {
		d.lastErr = nil
	}
}

// FPS implements session.Status.
func (d *EbitenDisplay) FPS(fps int) { d.fps.Store(int64(fps)) }

// Close makes Run return at the next update.
func (d *EbitenDisplay) Close() { d.closing.Store(true) }

// Run shows sess in a width x height window until the window is closed
// or Close is called. Must be called from the main goroutine.
func (d *EbitenDisplay) Run(sess Session, width, height int) error {
	d.sess = sess
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(d)
}

// --- ebiten.Game interface ---

func (d *EbitenDisplay) Update() error {
	if d.closing.Load() {
		return ebiten.Termination
	}
	d.captureMouseInput()
	d.captureKeyboardInput()
	return nil
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	if frame := d.sess.CurrentFrame(); frame != nil {
		fw, fh := frame.Bounds().Dx(), frame.Bounds().Dy()
		if d.ebitenImage == nil ||
			d.ebitenImage.Bounds().Dx() != fw ||
			d.ebitenImage.Bounds().Dy() != fh {
			if d.ebitenImage != nil {
				d.ebitenImage.Deallocate()
			}
			d.ebitenImage = ebiten.NewImage(fw, fh)
			d.drawn = nil
		}
		// Frames are immutable once published; upload only new ones.
		if frame != d.drawn {
			d.ebitenImage.WritePixels(frame.Pix)
			d.drawn = frame
		}

		// The remote screen is stretched to fill the window, matching the
		// pointer mapping.
		sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(sw)/float64(fw), float64(sh)/float64(fh))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(d.ebitenImage, op)
	}

	d.mu.Lock()
	state, err := d.state, d.lastErr
	d.mu.Unlock()
	ebitenutil.DebugPrint(screen, overlayText(state, int(d.fps.Load()), err))
}

func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	d.viewW, d.viewH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// --- Input capture ---

var mouseButtons = []struct {
	eb  ebiten.MouseButton
	btn input.Button
}{
	{ebiten.MouseButtonLeft, input.ButtonLeft},
	{ebiten.MouseButtonMiddle, input.ButtonMiddle},
	{ebiten.MouseButtonRight, input.ButtonRight},
}

func (d *EbitenDisplay) captureMouseInput() {
	// Moves while a button is held are drags; both are plain moves remotely.
	mx, my := ebiten.CursorPosition()
	if mx != d.prevX || my != d.prevY {
		d.prevX, d.prevY = mx, my
		d.sess.PointerMoved(mx, my, d.viewW, d.viewH)
	}

	for _, b := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			d.sess.PointerButton(b.btn, true)
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			d.sess.PointerButton(b.btn, false)
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		d.wheel.add(dy, d.sess.Wheel)
	}
}

func (d *EbitenDisplay) captureKeyboardInput() {
	d.keys = inpututil.AppendJustPressedKeys(d.keys[:0])
	for _, k := range d.keys {
		if code, ok := keyCode(k); ok {
			d.sess.Key(code, true)
		}
	}
	d.keys = inpututil.AppendJustReleasedKeys(d.keys[:0])
	for _, k := range d.keys {
		if code, ok := keyCode(k); ok {
			d.sess.Key(code, false)
		}
	}
}
