package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/turnplayer"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; start one with `new`")
	errAutoplaying       = errors.New("autoplay is running; stop it with `autoplay stop`")
	errQuit              = errors.New("quit")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// extractFields splits a line into a command, its positional arguments and
// its -key value options. Quoting follows shell rules.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: CmdOptions{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := f[1:]
			cmd.options[key] = append(cmd.options[key], fields[i+1])
			i++
			continue
		}
		cmd.args = append(cmd.args, f)
	}
	return cmd, nil
}

type ShellController struct {
	l      *readline.Instance
	outMu  sync.Mutex
	out    io.Writer
	config *config.Config

	settings turnplayer.EngineSettings
	engine   *turnplayer.BotTurnPlayer
	game     *game.Game
	human    game.Color

	printer *message.Printer

	autoplayMu     sync.Mutex
	autoplayCancel context.CancelFunc
	autoplayDone   chan struct{}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// showMessage may be called from the autoplay goroutine.
func (sc *ShellController) showMessage(msg string) {
	sc.outMu.Lock()
	defer sc.outMu.Unlock()
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{
		out:      out,
		config:   cfg,
		settings: turnplayer.SettingsFromConfig(cfg),
		human:    game.Black,
		printer:  message.NewPrinter(language.English),
	}
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mgomoku>\033[0m ",
		HistoryFile:     "/tmp/gomoku-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    newCompleter(),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newController(cfg, l.Stderr())
	sc.l = l
	return sc
}

func (sc *ShellController) executeCommand(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "go", "g":
		return sc.enginePlay(cmd)
	case "search":
		return sc.search(cmd)
	case "eval":
		return sc.eval(cmd)
	case "undo", "u":
		return sc.undo(cmd)
	case "set":
		return sc.set(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "script":
		return sc.script(cmd)
	case "help", "h":
		return sc.help(cmd)
	case "exit", "bye", "quit":
		return nil, errQuit
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// executeLine runs one line and prints its result. It returns errQuit when
// the line asks the shell to exit.
func (sc *ShellController) executeLine(line string) error {
	cmd, err := extractFields(line)
	if errors.Is(err, errNoData) {
		return nil
	} else if err != nil {
		sc.showError(err)
		return nil
	}
	resp, err := sc.executeCommand(cmd)
	if errors.Is(err, errQuit) {
		return err
	} else if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	defer sc.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.executeLine(line); errors.Is(err, errQuit) {
			sig <- syscall.SIGINT
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Close stops any running autoplay and releases the engine.
func (sc *ShellController) Close() {
	sc.stopAutoplay()
	if sc.engine != nil {
		sc.engine.Close()
		sc.engine = nil
	}
}

// Execute runs a single command line non-interactively. A started autoplay
// is waited for.
func (sc *ShellController) Execute(line string) error {
	err := sc.executeLine(line)
	sc.waitAutoplay()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
