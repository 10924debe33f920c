package shell

import (
	"errors"
	"net/http"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

const scriptHTTPTimeout = 30 * time.Second

// scriptCommands are exposed to Lua as gomoku_<name>(args), each returning
// the command's output or an "ERROR: ..." string.
var scriptCommands = []string{"new", "show", "play", "go", "search", "eval", "undo", "set"}

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("gomoku_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

func luaCommand(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		line := name
		if L.GetTop() > 0 {
			line += " " + L.ToString(1)
		}
		sc := getShell(L)
		cmd, err := extractFields(line)
		if err != nil {
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := sc.executeCommand(cmd)
		if err != nil {
			log.Err(err).Str("command", name).Msg("error-executing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
		} else {
			L.Push(lua.LString(r.message))
		}
		// return number of results pushed to stack.
		return 1
	}
}

// winner returns "black", "white", "draw" or "" while the game is on.
func luaWinner(L *lua.LState) int {
	sc := getShell(L)
	switch {
	case sc.game == nil || sc.game.Playing():
		L.Push(lua.LString(""))
	case sc.game.IsDraw():
		L.Push(lua.LString("draw"))
	default:
		L.Push(lua.LString(sc.game.Winner().String()))
	}
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal("gomoku_shell", lsc)
	for _, name := range scriptCommands {
		L.SetGlobal("gomoku_"+name, L.NewFunction(luaCommand(name)))
	}
	L.SetGlobal("gomoku_winner", L.NewFunction(luaWinner))
	// scripts can require("json") and require("http") to report results
	luajson.Preload(L)
	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{Timeout: scriptHTTPTimeout}).Loader)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
