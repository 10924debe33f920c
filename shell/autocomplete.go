package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

var commandNames = []string{
	"new", "show", "play", "go", "search", "eval", "undo", "set",
	"autoplay", "script", "help", "exit",
}

var commandOptions = map[string][]string{
	"new":      {"-color"},
	"search":   {"-depth", "-time"},
	"autoplay": {"stop", "analyze", "-games", "-threads", "-time", "-logfile"},
	"set":      settingKeys,
	"help":     commandNames,
}

var optionValues = map[string][]string{
	"-color": {"black", "white"},
	"color":  {"black", "white"},
}

// shellCompleter implements readline.AutoCompleter.
type shellCompleter struct{}

func newCompleter() *shellCompleter { return &shellCompleter{} }

func (c *shellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var candidates []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !endsWithSpace):
		if len(fields) == 1 {
			prefix = fields[0]
		}
		candidates = commandNames
	default:
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		last := fields[len(fields)-1]
		if !endsWithSpace && len(fields) > 1 {
			last = fields[len(fields)-2]
		}
		if vals, ok := optionValues[last]; ok {
			candidates = vals
		} else {
			candidates = commandOptions[fields[0]]
		}
	}

	var out [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, []rune(cand[len(prefix):]+" "))
		}
	}
	return out, len([]rune(prefix))
}
