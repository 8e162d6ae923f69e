package hotkey

import (
	"testing"

	"github.com/moutend/go-hook/pkg/types"
)

func TestParseBinding(t *testing.T) {
	cases := []struct {
		descriptor string
		want       Binding
	}{
		{"ctrl+shift+s", Binding{Ctrl: true, Shift: true, Key: types.VK_S, keyName: "s"}},
		{"Ctrl+Alt+F9", Binding{Ctrl: true, Alt: true, Key: types.VK_F9, keyName: "f9"}},
		{"win+printscreen", Binding{Win: true, Key: types.VK_SNAPSHOT, keyName: "printscreen"}},
		{"shift+2", Binding{Shift: true, Key: types.VKCode('2'), keyName: "2"}},
		{" ctrl + q ", Binding{Ctrl: true, Key: types.VK_Q, keyName: "q"}},
	}
	for _, tc := range cases {
		got, err := ParseBinding(tc.descriptor)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.descriptor, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %+v, want %+v", tc.descriptor, got, tc.want)
		}
	}
}

func TestParseBindingRejectsInvalid(t *testing.T) {
	for _, descriptor := range []string{
		"",
		"s",          // no modifier
		"ctrl+",      // no key
		"hyper+s",    // unknown modifier
		"ctrl+blorp", // unknown key
		"ctrl+f99",
	} {
		if _, err := ParseBinding(descriptor); err == nil {
			t.Fatalf("expected error for %q", descriptor)
		}
	}
}

func TestBindingStringNormalizes(t *testing.T) {
	b, err := ParseBinding("SHIFT+CTRL+S")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.String() != "ctrl+shift+s" {
		t.Fatalf("expected normalized form, got %q", b.String())
	}
}

func TestBindingMatchesExactCombination(t *testing.T) {
	b, err := ParseBinding("ctrl+shift+s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !b.matches(modifiers{ctrl: true, shift: true}, types.VK_S) {
		t.Fatalf("expected exact combination to match")
	}
	if b.matches(modifiers{ctrl: true}, types.VK_S) {
		t.Fatalf("missing modifier must not match")
	}
	if b.matches(modifiers{ctrl: true, shift: true, alt: true}, types.VK_S) {
		t.Fatalf("extra held modifier must not match")
	}
	if b.matches(modifiers{ctrl: true, shift: true}, types.VK_A) {
		t.Fatalf("wrong key must not match")
	}
}

func TestModifierTracking(t *testing.T) {
	var held modifiers

	held.update(keyEvent(types.WM_KEYDOWN, types.VK_LCONTROL))
	held.update(keyEvent(types.WM_KEYDOWN, types.VK_RSHIFT))
	if !held.ctrl || !held.shift {
		t.Fatalf("expected ctrl and shift held, got %+v", held)
	}

	held.update(keyEvent(types.WM_KEYUP, types.VK_LCONTROL))
	if held.ctrl {
		t.Fatalf("expected ctrl released")
	}
	held.update(keyEvent(types.WM_SYSKEYDOWN, types.VK_LMENU))
	if !held.alt {
		t.Fatalf("expected alt held after syskeydown")
	}
}

func keyEvent(msg types.Message, vk types.VKCode) types.KeyboardEvent {
	return types.KeyboardEvent{
		Message:         msg,
		KBDLLHOOKSTRUCT: types.KBDLLHOOKSTRUCT{VKCode: vk},
	}
}
