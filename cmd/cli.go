package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/fzft/go-dense/densemap"
	"github.com/fzft/go-dense/deps/linenoise"
	"github.com/fzft/go-dense/log"
)

var errUnbalancedQuotes = errors.New("unbalanced quotes")

// shell runs commands against one keyspace and prints their replies.
type shell struct {
	out      io.Writer
	raw      bool
	keys     *keyspace
	commands *densemap.Map[string, *command]
	quit     bool
}

func newShell(kind setKind, out io.Writer, raw bool) *shell {
	return &shell{
		out:      out,
		raw:      raw,
		keys:     newKeyspace(kind),
		commands: newCommandTable(),
	}
}

// lookupCommand finds a command by name, ignoring case.
func (sh *shell) lookupCommand(name []byte) (*command, bool) {
	it := sh.commands.FindAs(densemap.LookupBytes(bytes.ToLower(name)))
	if it.AtEnd() {
		return nil, false
	}
	return *it.Bucket().GetSecond(), true
}

// call runs argv and returns its reply, nil for commands that reply
// nothing.
func (sh *shell) call(argv [][]byte) reply {
	c, ok := sh.lookupCommand(argv[0])
	if !ok {
		return errorReply{unknownCommandError(argv)}
	}
	if err := checkArity(c, len(argv)); err != nil {
		return errorReply{err}
	}
	log.Logger.Debug("dispatch", zap.String("command", c.name), zap.Int("argc", len(argv)))
	r, err := c.proc(sh, argv)
	if err != nil {
		log.Logger.Debug("command failed", zap.String("command", c.name), zap.Error(err))
		return errorReply{err}
	}
	return r
}

func (sh *shell) print(r reply) {
	if r == nil {
		return
	}
	if s := r.format(sh.raw); s != "" {
		fmt.Fprintln(sh.out, s)
	}
}

// exec runs one input line.
func (sh *shell) exec(line []byte) {
	argv, err := splitArgs(line)
	if err != nil {
		fmt.Fprintln(sh.out, "Invalid argument(s)")
		return
	}
	if len(argv) == 0 {
		return
	}
	sh.print(sh.call(argv))
}

func (sh *shell) prompt() string {
	if sh.keys.kind.name == "dense" {
		return "dense> "
	}
	return fmt.Sprintf("dense[%s]> ", sh.keys.kind.name)
}

// repl is the interactive loop: line editing, history and "clear".
func (sh *shell) repl(historyFile string) {
	line := linenoise.New()
	defer line.Close()

	if historyFile != "" {
		if err := line.HistoryLoad(historyFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Logger.Warn("cannot load history", zap.String("path", historyFile), zap.Error(err))
		}
	}

	for !sh.quit {
		input, err := line.Prompt(sh.prompt())
		if err != nil {
			// EOF or Ctrl-C.
			break
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)
		if strings.EqualFold(trimmed, "clear") {
			if err := linenoise.ClearScreen(sh.out); err != nil {
				log.Logger.Warn("cannot clear screen", zap.Error(err))
			}
			continue
		}
		sh.exec([]byte(input))
	}

	if historyFile != "" {
		if err := line.HistorySave(historyFile); err != nil {
			log.Logger.Warn("cannot save history", zap.Error(errors.Wrapf(err, "saving %s", historyFile)))
		}
	}
}

// script runs the commands of in, one per line, until EOF or QUIT.
func (sh *shell) script(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for !sh.quit && scanner.Scan() {
		sh.exec(scanner.Bytes())
	}
	return scanner.Err()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// splitArgs tokenizes a command line into views of line. Arguments are
// separated by blanks; a single or double quoted argument may contain
// blanks and must be followed by a blank or the end of the line.
func splitArgs(line []byte) ([][]byte, error) {
	var argv [][]byte
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			return argv, nil
		}
		if q := line[i]; q == '"' || q == '\'' {
			end := bytes.IndexByte(line[i+1:], q)
			if end < 0 {
				return nil, errUnbalancedQuotes
			}
			start, stop := i+1, i+1+end
			argv = append(argv, line[start:stop:stop])
			i = stop + 1
			if i < len(line) && !isSpace(line[i]) {
				return nil, errUnbalancedQuotes
			}
			continue
		}
		start := i
		for i < len(line) && !isSpace(line[i]) {
			i++
		}
		argv = append(argv, line[start:i:i])
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Main runs dense-cli with args (without the program name) and returns the
// process exit code.
func Main(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(stderr, "dense-cli: error: %v\n", err)
		return 1
	}

	var cfg Config
	exitCode := -1
	parser, err := kong.New(&cfg,
		kong.Name("dense-cli"),
		kong.Description("A shell over named sets of strings."),
		kong.Vars{"version": Version()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "dense-cli: error: %v\n", err)
		return 1
	}
	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return 1
	}
	if exitCode >= 0 {
		// --help or --version.
		return exitCode
	}

	if err := log.InitLogger(cfg.Verbose); err != nil {
		fmt.Fprintf(stderr, "dense-cli: error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Logger.Sync() }()

	raw := cfg.Raw || (!cfg.NoRaw && !isTerminal(stdout))
	sh := newShell(kindFor(&cfg), stdout, raw)
	log.Logger.Debug("starting", zap.String("set_kind", sh.keys.kind.name), zap.Bool("raw", raw))

	if len(cfg.Command) > 0 {
		argv := make([][]byte, len(cfg.Command))
		for i, arg := range cfg.Command {
			argv[i] = []byte(arg)
		}
		r := sh.call(argv)
		sh.print(r)
		if _, failed := r.(errorReply); failed {
			return 1
		}
		return 0
	}

	if isTerminal(stdin) {
		sh.repl(historyPath(cfg.History))
		return 0
	}
	if err := sh.script(stdin); err != nil {
		log.Logger.Error("reading commands", zap.Error(err))
		fmt.Fprintf(stderr, "dense-cli: error: %v\n", err)
		return 1
	}
	return 0
}
