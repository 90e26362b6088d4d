// automation_lua.go - Lua-scripted input automation

/*
A -script file drives the front-end without a human: the script's
on_frame(n) hook runs once per emulated frame and can hold or release
buttons and end the run. Scripts act as one more input source feeding the
latch, so scripted and human input combine like two controllers.

    function on_frame(n)
        if n == 60 then press("start") end
        if n == 120 then release("start") end
        if n == 600 then quit() end
    end
*/

package main

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// errAutomationDone ends the session cleanly when a script calls quit().
var errAutomationDone = errors.New("automation script finished")

var buttonNames = func() map[string]Button {
	names := make(map[string]Button, ButtonCount)
	for b := Button(0); b < ButtonCount; b++ {
		names[b.String()] = b
	}
	return names
}()

// LuaAutomation owns one script's interpreter and its held-button state.
type LuaAutomation struct {
	state *lua.LState
	frame int
	held  buttonMask
	done  bool
}

// NewLuaAutomation loads and runs a script file. The script's top level
// executes immediately; per-frame behavior goes in on_frame.
func NewLuaAutomation(path string) (*LuaAutomation, error) {
	a := &LuaAutomation{state: lua.NewState()}
	a.state.SetGlobal("press", a.state.NewFunction(a.luaPress))
	a.state.SetGlobal("release", a.state.NewFunction(a.luaRelease))
	a.state.SetGlobal("quit", a.state.NewFunction(a.luaQuit))
	if err := a.state.DoFile(path); err != nil {
		a.state.Close()
		return nil, fmt.Errorf("automation script: %w", err)
	}
	return a, nil
}

func (a *LuaAutomation) luaButtonArg(L *lua.LState) (Button, bool) {
	name := L.CheckString(1)
	b, ok := buttonNames[name]
	if !ok {
		L.RaiseError("unknown button %q", name)
		return 0, false
	}
	return b, true
}

func (a *LuaAutomation) luaPress(L *lua.LState) int {
	if b, ok := a.luaButtonArg(L); ok {
		a.held |= 1 << b
	}
	return 0
}

func (a *LuaAutomation) luaRelease(L *lua.LState) int {
	if b, ok := a.luaButtonArg(L); ok {
		a.held &^= 1 << b
	}
	return 0
}

func (a *LuaAutomation) luaQuit(L *lua.LState) int {
	a.done = true
	return 0
}

// Poll satisfies InputSource with the script's held buttons.
func (a *LuaAutomation) Poll() buttonMask { return a.held }

// OnFrame invokes the script's on_frame hook, if defined. Returns
// errAutomationDone once the script has called quit.
func (a *LuaAutomation) OnFrame() error {
	if a.done {
		return errAutomationDone
	}
	fn := a.state.GetGlobal("on_frame")
	if fn == lua.LNil {
		return nil
	}
	a.frame++
	err := a.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(a.frame))
	if err != nil {
		return fmt.Errorf("automation script: %w", err)
	}
	if a.done {
		return errAutomationDone
	}
	return nil
}

func (a *LuaAutomation) Close() {
	a.state.Close()
}
