package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/nightlist/internal/app"
	"github.com/dori/nightlist/internal/config"
	"github.com/dori/nightlist/internal/model"
	"github.com/dori/nightlist/internal/store"
	"github.com/dori/nightlist/internal/ui"
	"github.com/dori/nightlist/internal/ui/theme"
)

var (
	version = "0.1.0"
)

// Exit codes
const (
	exitOK      = 0
	exitUser    = 1
	exitStorage = 2
)

const saveFailedText = "Failed to save tasks. Changes may be lost."

// options are the global flags accepted before a subcommand
type options struct {
	theme      string
	file       string
	configPath string
	storage    string
}

// cli carries the streams so subcommands can be tested
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	c := cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}

func (c cli) run(args []string) int {
	fs := flag.NewFlagSet("nightlist", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { c.printHelp() }

	var opts options
	fs.StringVar(&opts.theme, "theme", "", "Theme name ("+strings.Join(theme.Names(), ", ")+")")
	fs.StringVar(&opts.file, "file", "", "Task file (overrides tasks_file)")
	fs.StringVar(&opts.configPath, "config", "", "Config file path")
	fs.StringVar(&opts.storage, "storage", "", "Storage backend (json, sqlite)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUser
	}
	rest := fs.Args()

	// Subcommands that need no store
	if len(rest) > 0 {
		switch rest[0] {
		case "version":
			fmt.Fprintf(c.stdout, "nightlist v%s\n", version)
			return exitOK
		case "help", "-h", "--help":
			c.printHelp()
			return exitOK
		}
	}

	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUser
	}

	if len(rest) == 0 {
		return c.runTUI(cfg, cfgPath, opts.theme == "")
	}

	var handler func(*app.App, []string) int
	switch rest[0] {
	case "add":
		handler = c.handleAdd
	case "list", "ls":
		handler = c.handleList
	case "done":
		handler = c.handleDone
	case "rm", "delete":
		handler = c.handleRemove
	case "clear":
		handler = c.handleClear
	case "log":
		handler = c.handleLog
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n", rest[0])
		fmt.Fprintln(c.stderr, "Run 'nightlist help' for usage.")
		return exitUser
	}

	application, code := c.openApp(cfg)
	if application == nil {
		return code
	}

	code = handler(application, rest[1:])
	if err := application.Close(); err != nil && code == exitOK {
		fmt.Fprintln(c.stderr, saveFailedText)
		code = exitStorage
	}
	return code
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(opts options) (*config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}

	if opts.theme != "" {
		cfg.Theme = opts.theme
	}
	if opts.storage != "" {
		cfg.Storage = opts.storage
	}
	if opts.file != "" {
		// --file is relative to the working directory, not the data directory
		abs, err := filepath.Abs(opts.file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve task file: %w", err)
		}
		cfg.TasksFile = abs
	}

	if _, ok := theme.ByName(cfg.Theme); !ok {
		return nil, "", fmt.Errorf("unknown theme %q (available: %s)", cfg.Theme, strings.Join(theme.Names(), ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

// openApp creates the application and maps startup failures to exit codes
func (c cli) openApp(cfg *config.Config) (*app.App, int) {
	application, err := app.New(cfg)
	if err != nil {
		if errors.Is(err, app.ErrAlreadyRunning) {
			fmt.Fprintln(c.stderr, "Error: nightlist is already running")
		} else {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
		}
		return nil, exitStorage
	}
	return application, exitOK
}

func (c cli) printHelp() {
	help := `nightlist - a small to-do list for the terminal

Usage:
  nightlist [flags]                 Start the TUI
  nightlist [flags] add <task>      Add a task
  nightlist [flags] list            List tasks
  nightlist [flags] done <n>        Toggle task n done/pending
  nightlist [flags] rm [--yes] <n>  Delete task n (asks first)
  nightlist [flags] clear           Remove completed tasks
  nightlist [flags] log [-n N]      Show recent activity
  nightlist version                 Show version
  nightlist help                    Show this help

Flags:
  --theme <name>     Theme (` + strings.Join(theme.Names(), ", ") + `)
  --file <path>      Task file
  --config <path>    Config file (default ` + config.DefaultPath() + `)
  --storage <name>   Storage backend (json, sqlite)

Keybindings:
  enter          Add the typed task
  ↑/↓ home/end   Move cursor
  tab            Toggle done
  del / C-d      Delete (with confirm)
  C-x            Clear completed
  C-y            Copy task text
  C-t            Cycle theme
  F1             Help
  esc / C-c      Quit`

	fmt.Fprintln(c.stdout, help)
}

// refuseDamaged stops mutating commands from overwriting a file that failed to load
func (c cli) refuseDamaged(a *app.App) bool {
	if a.LoadErr == nil {
		return false
	}
	fmt.Fprintln(c.stderr, ui.LoadWarning(a.LoadErr))
	fmt.Fprintf(c.stderr, "Fix or remove %s and try again.\n", a.Store.Location())
	return true
}

// reportStoreError prints a store failure and returns the exit code for it
func (c cli) reportStoreError(a *app.App, err error) int {
	var perr *store.PersistError
	switch {
	case errors.As(err, &perr):
		a.ReportPersist(err)
		fmt.Fprintln(c.stderr, saveFailedText)
		return exitStorage
	case errors.Is(err, store.ErrIndexOutOfRange):
		fmt.Fprintln(c.stderr, "Error: no such task")
		return exitUser
	default:
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitStorage
	}
}

func (c cli) handleAdd(a *app.App, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "Usage: nightlist add <task>")
		fmt.Fprintln(c.stderr, "Example: nightlist add \"Buy groceries\"")
		return exitUser
	}
	if c.refuseDamaged(a) {
		return exitStorage
	}

	task, err := a.Store.Add(strings.Join(args, " "))
	switch {
	case errors.Is(err, model.ErrEmptyText):
		fmt.Fprintln(c.stderr, "Please enter a task first!")
		return exitUser
	case errors.Is(err, model.ErrTextTooLong):
		fmt.Fprintf(c.stderr, "Please keep tasks under %d characters.\n", model.MaxTextLength)
		return exitUser
	}

	fmt.Fprintf(c.stdout, "Added: %s\n", task.Text)
	if err != nil {
		return c.reportStoreError(a, err)
	}
	return exitOK
}

func (c cli) handleList(a *app.App, args []string) int {
	if a.LoadErr != nil {
		fmt.Fprintln(c.stderr, ui.LoadWarning(a.LoadErr))
		return exitStorage
	}

	for i, t := range a.Store.Tasks() {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(c.stdout, "%3d. %s %s\n", i+1, box, t.Text)
	}
	fmt.Fprintln(c.stdout, a.Store.Counts().String())
	return exitOK
}

// parseIndex turns a 1-based task number into a store index
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid task number %q", arg)
	}
	return n - 1, nil
}

func (c cli) handleDone(a *app.App, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "Usage: nightlist done <n>")
		return exitUser
	}
	index, err := parseIndex(args[0])
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUser
	}
	if c.refuseDamaged(a) {
		return exitStorage
	}

	task, err := a.Store.Toggle(index)
	if errors.Is(err, store.ErrIndexOutOfRange) {
		return c.reportStoreError(a, err)
	}
	if task.Completed {
		fmt.Fprintf(c.stdout, "Completed: %s\n", task.Text)
	} else {
		fmt.Fprintf(c.stdout, "Reopened: %s\n", task.Text)
	}
	if err != nil {
		return c.reportStoreError(a, err)
	}
	return exitOK
}

func (c cli) handleRemove(a *app.App, args []string) int {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	yes := fs.Bool("yes", false, "Delete without asking")
	if err := fs.Parse(args); err != nil {
		return exitUser
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Usage: nightlist rm [--yes] <n>")
		return exitUser
	}
	index, err := parseIndex(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUser
	}
	if c.refuseDamaged(a) {
		return exitStorage
	}

	confirm := c.promptConfirm
	if *yes {
		confirm = func(model.Task) bool { return true }
	}

	removed, err := a.Store.Delete(index, confirm)
	if errors.Is(err, store.ErrIndexOutOfRange) {
		return c.reportStoreError(a, err)
	}
	if !removed {
		fmt.Fprintln(c.stdout, "Kept.")
		return exitOK
	}
	fmt.Fprintln(c.stdout, "Deleted.")
	if err != nil {
		return c.reportStoreError(a, err)
	}
	return exitOK
}

// promptConfirm asks on the terminal before a delete
func (c cli) promptConfirm(task model.Task) bool {
	fmt.Fprintf(c.stdout, "Are you sure you want to delete this task?\n  %s\n[y/N] ", task.Text)

	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.stdout)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (c cli) handleClear(a *app.App, args []string) int {
	if c.refuseDamaged(a) {
		return exitStorage
	}

	n, err := a.Store.ClearCompleted()
	if n == 0 && err == nil {
		fmt.Fprintln(c.stdout, "No completed tasks to clear!")
		return exitOK
	}
	fmt.Fprintf(c.stdout, "Cleared %d completed task(s)!\n", n)
	if err != nil {
		return c.reportStoreError(a, err)
	}
	return exitOK
}

// eventOrder fixes the order of the summary line
var eventOrder = []model.EventKind{
	model.EventAdd,
	model.EventComplete,
	model.EventReopen,
	model.EventDelete,
	model.EventClear,
}

func (c cli) handleLog(a *app.App, args []string) int {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	limit := fs.Int("n", 20, "Number of events to show")
	if err := fs.Parse(args); err != nil {
		return exitUser
	}

	if a.DB == nil {
		fmt.Fprintln(c.stderr, "The activity journal is disabled (set journal: true in the config).")
		return exitUser
	}

	events, err := a.DB.RecentEvents(*limit)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading journal: %v\n", err)
		return exitStorage
	}
	if len(events) == 0 {
		fmt.Fprintln(c.stdout, "No activity yet.")
		return exitOK
	}

	// Oldest first reads naturally in a terminal
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		fmt.Fprintf(c.stdout, "%s  %-8s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Kind, e.Text)
	}

	counts, err := a.DB.CountEvents()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading journal: %v\n", err)
		return exitStorage
	}
	var parts []string
	for _, kind := range eventOrder {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	fmt.Fprintf(c.stdout, "\nAll time: %s\n", strings.Join(parts, " • "))
	return exitOK
}

func (c cli) runTUI(cfg *config.Config, cfgPath string, rememberTheme bool) int {
	application, code := c.openApp(cfg)
	if application == nil {
		return code
	}

	if t, ok := theme.ByName(cfg.Theme); ok {
		theme.SetTheme(t)
	}

	root := ui.NewRootModel(application)

	p := tea.NewProgram(
		root,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, runErr := p.Run()

	if picked := theme.Current.Theme.Name; rememberTheme && picked != cfg.Theme {
		if err := saveTheme(cfgPath, picked); err != nil {
			application.Log.Warn().Err(err).Msg("failed to save theme")
		}
	}

	closeErr := application.Close()

	if runErr != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", runErr)
		return exitUser
	}
	if closeErr != nil {
		fmt.Fprintln(c.stderr, saveFailedText)
		return exitStorage
	}
	return exitOK
}

// saveTheme remembers the last theme picked with ctrl+t. The file is read
// again so flag overrides are not written back.
func saveTheme(path, name string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Theme = name
	return config.Save(path, cfg)
}
