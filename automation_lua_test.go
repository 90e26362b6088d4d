// automation_lua_test.go - Tests for scripted input automation

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLuaAutomation_PressAndRelease(t *testing.T) {
	a, err := NewLuaAutomation(writeScript(t, `
		function on_frame(n)
			if n == 1 then press("cross") end
			if n == 2 then press("start") end
			if n == 3 then release("cross") end
		end
	`))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.OnFrame(); err != nil {
		t.Fatal(err)
	}
	if !a.Poll().has(ButtonCross) {
		t.Error("frame 1: cross not held")
	}

	if err := a.OnFrame(); err != nil {
		t.Fatal(err)
	}
	if !a.Poll().has(ButtonCross) || !a.Poll().has(ButtonStart) {
		t.Error("frame 2: cross+start not both held")
	}

	if err := a.OnFrame(); err != nil {
		t.Fatal(err)
	}
	if a.Poll().has(ButtonCross) {
		t.Error("frame 3: cross still held after release")
	}
	if !a.Poll().has(ButtonStart) {
		t.Error("frame 3: start dropped without a release")
	}
}

func TestLuaAutomation_QuitEndsSession(t *testing.T) {
	a, err := NewLuaAutomation(writeScript(t, `
		function on_frame(n)
			if n == 3 then quit() end
		end
	`))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	for i := 1; i <= 2; i++ {
		if err := a.OnFrame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if err := a.OnFrame(); err != errAutomationDone {
		t.Fatalf("frame 3: got %v, want errAutomationDone", err)
	}
	// Once done, stays done.
	if err := a.OnFrame(); err != errAutomationDone {
		t.Fatalf("frame 4: got %v, want errAutomationDone", err)
	}
}

func TestLuaAutomation_NoHookIsValid(t *testing.T) {
	a, err := NewLuaAutomation(writeScript(t, `-- input comes from elsewhere`))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.OnFrame(); err != nil {
		t.Errorf("hookless script errored: %v", err)
	}
}

func TestLuaAutomation_UnknownButtonFailsTheScript(t *testing.T) {
	a, err := NewLuaAutomation(writeScript(t, `
		function on_frame(n)
			press("turbo")
		end
	`))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.OnFrame(); err == nil {
		t.Error("unknown button name did not error")
	}
}

func TestLuaAutomation_BadSyntaxFailsLoad(t *testing.T) {
	_, err := NewLuaAutomation(writeScript(t, `function on_frame(`))
	if err == nil {
		t.Fatal("syntax error loaded successfully")
	}
}
