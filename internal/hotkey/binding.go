package hotkey

import (
	"fmt"
	"strings"

	"github.com/moutend/go-hook/pkg/types"
)

// Binding is a parsed key combination: a set of modifiers plus one main key.
// Construct only via ParseBinding so the normalized form stays consistent.
type Binding struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   types.VKCode

	keyName string
}

// namedKeys maps descriptor names that are not single letters or digits.
var namedKeys = map[string]types.VKCode{
	"space":       types.VK_SPACE,
	"enter":       types.VK_RETURN,
	"tab":         types.VK_TAB,
	"esc":         types.VK_ESCAPE,
	"escape":      types.VK_ESCAPE,
	"backspace":   types.VK_BACK,
	"delete":      types.VK_DELETE,
	"insert":      types.VK_INSERT,
	"home":        types.VK_HOME,
	"end":         types.VK_END,
	"pageup":      types.VK_PRIOR,
	"pagedown":    types.VK_NEXT,
	"printscreen": types.VK_SNAPSHOT,
	"up":          types.VK_UP,
	"down":        types.VK_DOWN,
	"left":        types.VK_LEFT,
	"right":       types.VK_RIGHT,
}

// ParseBinding parses a combination descriptor such as "ctrl+shift+s".
// At least one modifier is required: a bare key would swallow normal typing.
func ParseBinding(descriptor string) (Binding, error) {
	var b Binding

	parts := strings.Split(strings.ToLower(strings.TrimSpace(descriptor)), "+")
	if len(parts) < 2 {
		return b, fmt.Errorf("binding %q needs at least one modifier and a key (example: ctrl+shift+s)", descriptor)
	}

	for _, part := range parts[:len(parts)-1] {
		switch strings.TrimSpace(part) {
		case "ctrl", "control":
			b.Ctrl = true
		case "shift":
			b.Shift = true
		case "alt":
			b.Alt = true
		case "win", "super":
			b.Win = true
		default:
			return Binding{}, fmt.Errorf("unknown modifier %q in binding %q", part, descriptor)
		}
	}

	name := strings.TrimSpace(parts[len(parts)-1])
	key, err := parseKey(name)
	if err != nil {
		return Binding{}, err
	}
	b.Key = key
	b.keyName = name
	return b, nil
}

func parseKey(name string) (types.VKCode, error) {
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return types.VKCode(c - 'a' + 'A'), nil
		case c >= '0' && c <= '9':
			return types.VKCode(c), nil
		}
	}
	if strings.HasPrefix(name, "f") && len(name) <= 3 {
		var n int
		if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 {
			return types.VK_F1 + types.VKCode(n-1), nil
		}
	}
	if vk, ok := namedKeys[name]; ok {
		return vk, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// String returns the canonical descriptor form, modifiers in a fixed order.
func (b Binding) String() string {
	var parts []string
	if b.Ctrl {
		parts = append(parts, "ctrl")
	}
	if b.Shift {
		parts = append(parts, "shift")
	}
	if b.Alt {
		parts = append(parts, "alt")
	}
	if b.Win {
		parts = append(parts, "win")
	}
	parts = append(parts, b.keyName)
	return strings.Join(parts, "+")
}

// matches reports whether the held modifier set and a pressed key hit this
// binding exactly: extra held modifiers do not count as a match.
func (b Binding) matches(held modifiers, vk types.VKCode) bool {
	return vk == b.Key &&
		held.ctrl == b.Ctrl &&
		held.shift == b.Shift &&
		held.alt == b.Alt &&
		held.win == b.Win
}

// modifiers tracks which modifier keys are currently held.
type modifiers struct {
	ctrl  bool
	shift bool
	alt   bool
	win   bool
}

func (m *modifiers) update(event types.KeyboardEvent) {
	pressed := event.Message == types.WM_KEYDOWN || event.Message == types.WM_SYSKEYDOWN
	released := event.Message == types.WM_KEYUP || event.Message == types.WM_SYSKEYUP
	if !pressed && !released {
		return
	}
	switch event.VKCode {
	case types.VK_LCONTROL, types.VK_RCONTROL, types.VK_CONTROL:
		m.ctrl = pressed
	case types.VK_LSHIFT, types.VK_RSHIFT, types.VK_SHIFT:
		m.shift = pressed
	case types.VK_LMENU, types.VK_RMENU, types.VK_MENU:
		m.alt = pressed
	case types.VK_LWIN, types.VK_RWIN:
		m.win = pressed
	}
}
