package display

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/junsooki/AirDesk/internal/input"
)

// keyCodes maps Ebitengine keys to wire key codes. Left and right
// modifier variants collapse into one code.
var keyCodes = map[ebiten.Key]input.KeyCode{
	ebiten.KeyBackspace:    input.KeyBackspace,
	ebiten.KeyTab:          input.KeyTab,
	ebiten.KeyEnter:        input.KeyEnter,
	ebiten.KeyNumpadEnter:  input.KeyEnter,
	ebiten.KeyShiftLeft:    input.KeyShift,
	ebiten.KeyShiftRight:   input.KeyShift,
	ebiten.KeyControlLeft:  input.KeyControl,
	ebiten.KeyControlRight: input.KeyControl,
	ebiten.KeyAltLeft:      input.KeyAlt,
	ebiten.KeyAltRight:     input.KeyAlt,
	ebiten.KeyMetaLeft:     input.KeyMeta,
	ebiten.KeyMetaRight:    input.KeyMeta,
	ebiten.KeyPause:        input.KeyPause,
	ebiten.KeyCapsLock:     input.KeyCapsLock,
	ebiten.KeyEscape:       input.KeyEscape,
	ebiten.KeySpace:        input.KeySpace,
	ebiten.KeyPageUp:       input.KeyPageUp,
	ebiten.KeyPageDown:     input.KeyPageDown,
	ebiten.KeyEnd:          input.KeyEnd,
	ebiten.KeyHome:         input.KeyHome,
	ebiten.KeyArrowLeft:    input.KeyArrowLeft,
	ebiten.KeyArrowUp:      input.KeyArrowUp,
	ebiten.KeyArrowRight:   input.KeyArrowRight,
	ebiten.KeyArrowDown:    input.KeyArrowDown,
	ebiten.KeyInsert:       input.KeyInsert,
	ebiten.KeyDelete:       input.KeyDelete,

	ebiten.Key0: input.Key0, ebiten.Key1: input.Key1, ebiten.Key2: input.Key2,
	ebiten.Key3: input.Key3, ebiten.Key4: input.Key4, ebiten.Key5: input.Key5,
	ebiten.Key6: input.Key6, ebiten.Key7: input.Key7, ebiten.Key8: input.Key8,
	ebiten.Key9: input.Key9,

	ebiten.KeyA: input.KeyA, ebiten.KeyB: input.KeyB, ebiten.KeyC: input.KeyC,
	ebiten.KeyD: input.KeyD, ebiten.KeyE: input.KeyE, ebiten.KeyF: input.KeyF,
	ebiten.KeyG: input.KeyG, ebiten.KeyH: input.KeyH, ebiten.KeyI: input.KeyI,
	ebiten.KeyJ: input.KeyJ, ebiten.KeyK: input.KeyK, ebiten.KeyL: input.KeyL,
	ebiten.KeyM: input.KeyM, ebiten.KeyN: input.KeyN, ebiten.KeyO: input.KeyO,
	ebiten.KeyP: input.KeyP, ebiten.KeyQ: input.KeyQ, ebiten.KeyR: input.KeyR,
	ebiten.KeyS: input.KeyS, ebiten.KeyT: input.KeyT, ebiten.KeyU: input.KeyU,
	ebiten.KeyV: input.KeyV, ebiten.KeyW: input.KeyW, ebiten.KeyX: input.KeyX,
	ebiten.KeyY: input.KeyY, ebiten.KeyZ: input.KeyZ,

	ebiten.KeyNumpad0: input.KeyNumpad0, ebiten.KeyNumpad1: input.KeyNumpad1,
	ebiten.KeyNumpad2: input.KeyNumpad2, ebiten.KeyNumpad3: input.KeyNumpad3,
	ebiten.KeyNumpad4: input.KeyNumpad4, ebiten.KeyNumpad5: input.KeyNumpad5,
	ebiten.KeyNumpad6: input.KeyNumpad6, ebiten.KeyNumpad7: input.KeyNumpad7,
	ebiten.KeyNumpad8: input.KeyNumpad8, ebiten.KeyNumpad9: input.KeyNumpad9,

	ebiten.KeyF1: input.KeyF1, ebiten.KeyF2: input.KeyF2, ebiten.KeyF3: input.KeyF3,
	ebiten.KeyF4: input.KeyF4, ebiten.KeyF5: input.KeyF5, ebiten.KeyF6: input.KeyF6,
	ebiten.KeyF7: input.KeyF7, ebiten.KeyF8: input.KeyF8, ebiten.KeyF9: input.KeyF9,
	ebiten.KeyF10: input.KeyF10, ebiten.KeyF11: input.KeyF11, ebiten.KeyF12: input.KeyF12,

	ebiten.KeySemicolon:    input.KeySemicolon,
	ebiten.KeyEqual:        input.KeyEqual,
	ebiten.KeyComma:        input.KeyComma,
	ebiten.KeyMinus:        input.KeyMinus,
	ebiten.KeyPeriod:       input.KeyPeriod,
	ebiten.KeySlash:        input.KeySlash,
	ebiten.KeyBackquote:    input.KeyBackquote,
	ebiten.KeyBracketLeft:  input.KeyBracketLeft,
	ebiten.KeyBackslash:    input.KeyBackslash,
	ebiten.KeyBracketRight: input.KeyBracketRight,
	ebiten.KeyQuote:        input.KeyQuote,
}

// keyCode reports the wire code for k. Keys without one are not sent.
func keyCode(k ebiten.Key) (input.KeyCode, bool) {
	code, ok := keyCodes[k]
	return code, ok
}
