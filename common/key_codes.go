package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32 // Spacebar (ASCII)
	KeyN     = 78 // N key (ASCII)
	KeyP     = 80 // P key (ASCII)

	KeyEsc       = 256 // Escape key (GLFW)
	KeyEnter     = 257 // Enter key (GLFW)
	KeyTab       = 258 // Tab key (GLFW)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyRight     = 262 // Right arrow (GLFW)
	KeyLeft      = 263 // Left arrow (GLFW)

	Key0 = 48 // 0 key (ASCII)
	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
	Key6 = 54 // 6 key (ASCII)
	Key7 = 55 // 7 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
	Key9 = 57 // 9 key (ASCII)
)

// Additional non-printable keys
const (
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)

// KeyCount is the size of the key state table. GLFW's highest key code (KeyMenu) is 348,
// so every valid key code fits below it.
const KeyCount = 350

// Mouse button indices, matching GLFW's MouseButton values.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2

	// MouseButtonCount is the number of tracked mouse buttons.
	MouseButtonCount = 3
)

// keyNames maps the key codes used by configuration files to their values.
var keyNames = map[string]int{
	"space":     KeySpace,
	"n":         KeyN,
	"p":         KeyP,
	"escape":    KeyEsc,
	"enter":     KeyEnter,
	"tab":       KeyTab,
	"backspace": KeyBackspace,
	"right":     KeyRight,
	"left":      KeyLeft,
}

// KeyByName resolves a configuration key name (e.g. "space", "right") to its key code.
//
// Parameters:
//   - name: the lower-case key name
//
// Returns:
//   - int: the key code
//   - bool: false if the name is unknown
func KeyByName(name string) (int, bool) {
	code, ok := keyNames[name]
	return code, ok
}
