package core

import "testing"

func TestInputStateKeys(t *testing.T) {
	s := NewInputState()

	if !s.ProcessKey(KEY_W, true) {
		t.Error("first press should change state")
	}
	if s.ProcessKey(KEY_W, true) {
		t.Error("repeated press should not change state")
	}
	if !s.IsKeyDown(KEY_W) {
		t.Error("W should be down")
	}
	if s.WasKeyDown(KEY_W) {
		t.Error("W should not be down in the previous snapshot yet")
	}

	s.Update()
	if !s.WasKeyDown(KEY_W) {
		t.Error("W should be down in the previous snapshot after Update")
	}

	s.ProcessKey(KEY_W, false)
	if !s.IsKeyUp(KEY_W) {
		t.Error("W should be up after release")
	}
}

func TestInputStateIgnoresUnmappedKeys(t *testing.T) {
	s := NewInputState()
	if s.ProcessKey(KEY_UNKNOWN, true) {
		t.Error("unknown key should be ignored")
	}
	if s.ProcessKey(KeyCode(300), true) {
		t.Error("out of range key should be ignored")
	}
	if s.IsKeyDown(KeyCode(300)) {
		t.Error("out of range key should never read as down")
	}
}

func TestInputStateMouse(t *testing.T) {
	s := NewInputState()
	s.ProcessButton(BUTTON_LEFT, true)
	s.ProcessMouseMove(10, 20)

	if !s.IsButtonDown(BUTTON_LEFT) {
		t.Error("left button should be down")
	}
	if s.IsButtonDown(BUTTON_RIGHT) {
		t.Error("right button should be up")
	}
	if s.ProcessButton(BUTTON_MAX_BUTTONS, true) {
		t.Error("invalid button should be ignored")
	}
	if x, y := s.MousePosition(); x != 10 || y != 20 {
		t.Errorf("MousePosition = (%f, %f), want (10, 20)", x, y)
	}

	s.Update()
	s.ProcessMouseMove(15, 25)
	if x, y := s.PreviousMousePosition(); x != 10 || y != 20 {
		t.Errorf("PreviousMousePosition = (%f, %f), want (10, 20)", x, y)
	}
	if !s.WasButtonDown(BUTTON_LEFT) {
		t.Error("left button should be down in the previous snapshot")
	}
}
