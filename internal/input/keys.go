package input

import "fmt"

// KeyCode is the platform-neutral key identifier carried on the keyboard
// channel. Values follow the Windows virtual-key numbering, which also
// matches the Java VK codes for letters, digits, arrows and function keys.
type KeyCode int32

const (
	KeyBackspace  KeyCode = 0x08
	KeyTab        KeyCode = 0x09
	KeyEnter      KeyCode = 0x0D
	KeyShift      KeyCode = 0x10
	KeyControl    KeyCode = 0x11
	KeyAlt        KeyCode = 0x12
	KeyPause      KeyCode = 0x13
	KeyCapsLock   KeyCode = 0x14
	KeyEscape     KeyCode = 0x1B
	KeySpace      KeyCode = 0x20
	KeyPageUp     KeyCode = 0x21
	KeyPageDown   KeyCode = 0x22
	KeyEnd        KeyCode = 0x23
	KeyHome       KeyCode = 0x24
	KeyArrowLeft  KeyCode = 0x25
	KeyArrowUp    KeyCode = 0x26
	KeyArrowRight KeyCode = 0x27
	KeyArrowDown  KeyCode = 0x28
	KeyInsert     KeyCode = 0x2D
	KeyDelete     KeyCode = 0x2E

	Key0 KeyCode = 0x30
	Key1 KeyCode = 0x31
	Key2 KeyCode = 0x32
	Key3 KeyCode = 0x33
	Key4 KeyCode = 0x34
	Key5 KeyCode = 0x35
	Key6 KeyCode = 0x36
	Key7 KeyCode = 0x37
	Key8 KeyCode = 0x38
	Key9 KeyCode = 0x39

	KeyA KeyCode = 0x41
	KeyB KeyCode = 0x42
	KeyC KeyCode = 0x43
	KeyD KeyCode = 0x44
	KeyE KeyCode = 0x45
	KeyF KeyCode = 0x46
	KeyG KeyCode = 0x47
	KeyH KeyCode = 0x48
	KeyI KeyCode = 0x49
	KeyJ KeyCode = 0x4A
	KeyK KeyCode = 0x4B
	KeyL KeyCode = 0x4C
	KeyM KeyCode = 0x4D
	KeyN KeyCode = 0x4E
	KeyO KeyCode = 0x4F
	KeyP KeyCode = 0x50
	KeyQ KeyCode = 0x51
	KeyR KeyCode = 0x52
	KeyS KeyCode = 0x53
	KeyT KeyCode = 0x54
	KeyU KeyCode = 0x55
	KeyV KeyCode = 0x56
	KeyW KeyCode = 0x57
	KeyX KeyCode = 0x58
	KeyY KeyCode = 0x59
	KeyZ KeyCode = 0x5A

	KeyMeta KeyCode = 0x5B

	KeyNumpad0 KeyCode = 0x60
	KeyNumpad1 KeyCode = 0x61
	KeyNumpad2 KeyCode = 0x62
	KeyNumpad3 KeyCode = 0x63
	KeyNumpad4 KeyCode = 0x64
	KeyNumpad5 KeyCode = 0x65
	KeyNumpad6 KeyCode = 0x66
	KeyNumpad7 KeyCode = 0x67
	KeyNumpad8 KeyCode = 0x68
	KeyNumpad9 KeyCode = 0x69

	KeyF1  KeyCode = 0x70
	KeyF2  KeyCode = 0x71
	KeyF3  KeyCode = 0x72
	KeyF4  KeyCode = 0x73
	KeyF5  KeyCode = 0x74
	KeyF6  KeyCode = 0x75
	KeyF7  KeyCode = 0x76
	KeyF8  KeyCode = 0x77
	KeyF9  KeyCode = 0x78
	KeyF10 KeyCode = 0x79
	KeyF11 KeyCode = 0x7A
	KeyF12 KeyCode = 0x7B

	KeySemicolon    KeyCode = 0xBA
	KeyEqual        KeyCode = 0xBB
	KeyComma        KeyCode = 0xBC
	KeyMinus        KeyCode = 0xBD
	KeyPeriod       KeyCode = 0xBE
	KeySlash        KeyCode = 0xBF
	KeyBackquote    KeyCode = 0xC0
	KeyBracketLeft  KeyCode = 0xDB
	KeyBackslash    KeyCode = 0xDC
	KeyBracketRight KeyCode = 0xDD
	KeyQuote        KeyCode = 0xDE
)

// keyInfo ties a KeyCode to its native names. mac is the macOS virtual
// key code; robot is the robotgo key name.
type keyInfo struct {
	name  string
	mac   uint16
	robot string
}

var keyTable = map[KeyCode]keyInfo{
	KeyBackspace:  {"Backspace", 0x33, "backspace"},
	KeyTab:        {"Tab", 0x30, "tab"},
	KeyEnter:      {"Enter", 0x24, "enter"},
	KeyShift:      {"Shift", 0x38, "shift"},
	KeyControl:    {"Control", 0x3B, "ctrl"},
	KeyAlt:        {"Alt", 0x3A, "alt"},
	KeyCapsLock:   {"CapsLock", 0x39, "capslock"},
	KeyEscape:     {"Escape", 0x35, "esc"},
	KeySpace:      {"Space", 0x31, "space"},
	KeyPageUp:     {"PageUp", 0x74, "pageup"},
	KeyPageDown:   {"PageDown", 0x79, "pagedown"},
	KeyEnd:        {"End", 0x77, "end"},
	KeyHome:       {"Home", 0x73, "home"},
	KeyArrowLeft:  {"Left", 0x7B, "left"},
	KeyArrowUp:    {"Up", 0x7E, "up"},
	KeyArrowRight: {"Right", 0x7C, "right"},
	KeyArrowDown:  {"Down", 0x7D, "down"},
	KeyInsert:     {"Insert", 0x72, "insert"},
	KeyDelete:     {"Delete", 0x75, "delete"},

	Key0: {"0", 0x1D, "0"},
	Key1: {"1", 0x12, "1"},
	Key2: {"2", 0x13, "2"},
	Key3: {"3", 0x14, "3"},
	Key4: {"4", 0x15, "4"},
	Key5: {"5", 0x17, "5"},
	Key6: {"6", 0x16, "6"},
	Key7: {"7", 0x1A, "7"},
	Key8: {"8", 0x1C, "8"},
	Key9: {"9", 0x19, "9"},

	KeyA: {"A", 0x00, "a"},
	KeyB: {"B", 0x0B, "b"},
	KeyC: {"C", 0x08, "c"},
	KeyD: {"D", 0x02, "d"},
	KeyE: {"E", 0x0E, "e"},
	KeyF: {"F", 0x03, "f"},
	KeyG: {"G", 0x05, "g"},
	KeyH: {"H", 0x04, "h"},
	KeyI: {"I", 0x22, "i"},
	KeyJ: {"J", 0x26, "j"},
	KeyK: {"K", 0x28, "k"},
	KeyL: {"L", 0x25, "l"},
	KeyM: {"M", 0x2E, "m"},
	KeyN: {"N", 0x2D, "n"},
	KeyO: {"O", 0x1F, "o"},
	KeyP: {"P", 0x23, "p"},
	KeyQ: {"Q", 0x0C, "q"},
	KeyR: {"R", 0x0F, "r"},
	KeyS: {"S", 0x01, "s"},
	KeyT: {"T", 0x11, "t"},
	KeyU: {"U", 0x20, "u"},
	KeyV: {"V", 0x09, "v"},
	KeyW: {"W", 0x0D, "w"},
	KeyX: {"X", 0x07, "x"},
	KeyY: {"Y", 0x10, "y"},
	KeyZ: {"Z", 0x06, "z"},

	KeyMeta: {"Meta", 0x37, "cmd"},

	KeyNumpad0: {"Numpad0", 0x52, "num0"},
	KeyNumpad1: {"Numpad1", 0x53, "num1"},
	KeyNumpad2: {"Numpad2", 0x54, "num2"},
	KeyNumpad3: {"Numpad3", 0x55, "num3"},
	KeyNumpad4: {"Numpad4", 0x56, "num4"},
	KeyNumpad5: {"Numpad5", 0x57, "num5"},
	KeyNumpad6: {"Numpad6", 0x58, "num6"},
	KeyNumpad7: {"Numpad7", 0x59, "num7"},
	KeyNumpad8: {"Numpad8", 0x5B, "num8"},
	KeyNumpad9: {"Numpad9", 0x5C, "num9"},

	KeyF1:  {"F1", 0x7A, "f1"},
	KeyF2:  {"F2", 0x78, "f2"},
	KeyF3:  {"F3", 0x63, "f3"},
	KeyF4:  {"F4", 0x76, "f4"},
	KeyF5:  {"F5", 0x60, "f5"},
	KeyF6:  {"F6", 0x61, "f6"},
	KeyF7:  {"F7", 0x62, "f7"},
	KeyF8:  {"F8", 0x64, "f8"},
	KeyF9:  {"F9", 0x65, "f9"},
	KeyF10: {"F10", 0x6D, "f10"},
	KeyF11: {"F11", 0x67, "f11"},
	KeyF12: {"F12", 0x6F, "f12"},

	KeySemicolon:    {"Semicolon", 0x29, ";"},
	KeyEqual:        {"Equal", 0x18, "="},
	KeyComma:        {"Comma", 0x2B, ","},
	KeyMinus:        {"Minus", 0x1B, "-"},
	KeyPeriod:       {"Period", 0x2F, "."},
	KeySlash:        {"Slash", 0x2C, "/"},
	KeyBackquote:    {"Backquote", 0x32, "`"},
	KeyBracketLeft:  {"BracketLeft", 0x21, "["},
	KeyBackslash:    {"Backslash", 0x2A, "\\"},
	KeyBracketRight: {"BracketRight", 0x1E, "]"},
	KeyQuote:        {"Quote", 0x27, "'"},
}

func (k KeyCode) String() string {
	if info, ok := keyTable[k]; ok {
		return info.name
	}
	return fmt.Sprintf("key(0x%02X)", int32(k))
}

// MacKeyCode returns the macOS virtual key code for k.
func MacKeyCode(k KeyCode) (uint16, bool) {
	info, ok := keyTable[k]
	return info.mac, ok
}

// RobotgoKey returns the robotgo key name for k.
func RobotgoKey(k KeyCode) (string, bool) {
	info, ok := keyTable[k]
	if !ok || info.robot == "" {
		return "", false
	}
	return info.robot, true
}
