package repl

// note: based off of csci1270-fall23
import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// ErrExit is returned by a handler to end the loop.
var ErrExit = errors.New("exit")

type REPL struct {
	Commands map[string]func(string, *REPLConfig) error
	Help     map[string]string

	// Notify, if set, runs before every prompt so background work can
	// report what it finished.
	Notify func(io.Writer)

	mu     sync.Mutex
	rl     *readline.Instance
	closed bool
}

type REPLConfig struct {
	Writer io.Writer
}

func NewRepl() *REPL {
	r := &REPL{
		Commands: make(map[string]func(string, *REPLConfig) error),
		Help:     make(map[string]string),
	}
	return r
}

// Close ends a running loop from any goroutine. The terminal is restored
// before Close returns, and Run and Serve then return nil.
func (r *REPL) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.rl == nil {
		return nil
	}
	return r.rl.Close()
}

func (r *REPL) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Add a command, along with its help string, to the set of commands
func (r *REPL) AddCommand(trigger string, handler func(string, *REPLConfig) error, help string) {
	if trigger == "" || trigger[0] == '.' {
		return
	}
	r.Help[trigger] = help
	r.Commands[trigger] = handler
}

// Return all REPL usage information as a string
func (r *REPL) HelpString() string {
	triggers := make([]string, 0, len(r.Help))
	for k := range r.Help {
		triggers = append(triggers, k)
	}
	sort.Strings(triggers)

	var sb strings.Builder
	sb.WriteString("Commands\n")
	for _, k := range triggers {
		sb.WriteString(fmt.Sprintf("\t%s: %s\n", k, r.Help[k]))
	}
	return sb.String()
}

// Run reads commands from the terminal until EOF or a handler returns ErrExit.
func (r *REPL) Run(prompt string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    r.completer(),
	})
	if err != nil {
		return errors.Wrap(err, "readline")
	}
	defer rl.Close()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.rl = rl
	r.mu.Unlock()

	return r.Serve(func() (string, error) {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			return "", nil
		}
		return line, err
	}, rl.Stdout())
}

func (r *REPL) completer() readline.AutoCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(r.Commands))
	for k := range r.Commands {
		items = append(items, readline.PcItem(k))
	}
	return readline.NewPrefixCompleter(items...)
}

// Serve runs the loop over lines produced by next, writing to w. It
// returns nil on io.EOF, ErrExit or once Close has been called.
func (r *REPL) Serve(next func() (string, error), w io.Writer) error {
	replConfig := &REPLConfig{Writer: w}

	for {
		if r.Notify != nil {
			r.Notify(w)
		}
		line, err := next()
		if err == io.EOF || r.isClosed() {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		command := strings.Fields(input)[0]
		handler, ok := r.Commands[command]

		if !ok {
			io.WriteString(w, fmt.Sprintf("Invalid command: %s\n", command))
			io.WriteString(w, r.HelpString())
			continue
		}
		err = handler(input, replConfig)
		if errors.Is(err, ErrExit) {
			return nil
		}
		if err != nil {
			io.WriteString(w, fmt.Sprintf("Error: %v\n", err))
		}
	}
}
