package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/rowview/internal/datasource"
	"github.com/vanderheijden86/rowview/pkg/config"
	"github.com/vanderheijden86/rowview/pkg/debug"
	"github.com/vanderheijden86/rowview/pkg/metrics"
	"github.com/vanderheijden86/rowview/pkg/model"
	"github.com/vanderheijden86/rowview/pkg/store"
	"github.com/vanderheijden86/rowview/pkg/ui"
	"github.com/vanderheijden86/rowview/pkg/version"
	"github.com/vanderheijden86/rowview/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file (default: $XDG_CONFIG_HOME/rv/config.yaml)")
	dataFlag := flag.String("data", "", "Comma-separated data files (overrides config)")
	printFlag := flag.Bool("print", false, "Render the table once to stdout and exit")
	widthFlag := flag.Int("width", 0, "Width for --print (default: terminal width)")
	watchFlag := flag.Bool("watch", false, "Reload when a data file changes")
	expandAll := flag.Bool("expand-all", false, "Start with every row expanded")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: rv [options] [data files...]")
		fmt.Println("\nA tree table viewer for JSON, JSONL, YAML and SQLite records.")
		flag.PrintDefaults()
		return
	}

	if *versionFlag {
		fmt.Printf("rv %s\n", version.Version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *expandAll {
		cfg.Table.ExpandAll = true
	}
	if *watchFlag {
		cfg.Data.Watch = true
	}

	paths := dataPaths(*dataFlag, flag.Args(), cfg)
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no data files given (pass them as arguments, --data, or data.paths in the config)")
		os.Exit(2)
	}

	if err := run(cfg, paths, *printFlag, *widthFlag, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if debug.Enabled() {
		for _, s := range metrics.AllTimingStats() {
			debug.Log("%s: n=%d avg=%.3fms max=%.3fms", s.Name, s.Count, s.AvgMs, s.MaxMs)
		}
		for _, c := range metrics.AllCounters() {
			debug.Log("%s: %d", c.Name(), c.Value())
		}
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// dataPaths picks the data files: positional arguments first, then --data,
// then the config file.
func dataPaths(dataFlag string, args []string, cfg config.Config) []string {
	if len(args) > 0 {
		return args
	}
	if dataFlag != "" {
		var paths []string
		for _, p := range strings.Split(dataFlag, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		return paths
	}
	return cfg.Data.Paths
}

func run(cfg config.Config, paths []string, printOnly bool, width int, out io.Writer) error {
	load := func(ctx context.Context) ([]model.Record, error) {
		return datasource.LoadAll(ctx, paths)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	records, err := load(ctx)
	cancel()
	if err != nil {
		return err
	}

	st := store.New()
	statePath := ""
	if cfg.PersistExpanded && !printOnly {
		statePath = config.ExpandedStatePath(paths[0])
		if statePath != "" {
			st.LoadExpanded(statePath)
		}
	}

	opts := []ui.Option{ui.WithStore(st)}
	if cfg.Data.Watch && !printOnly {
		w, err := watcher.New(paths, watcher.WithOnError(func(err error) {
			debug.Log("watcher: %v", err)
		}))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		opts = append(opts, ui.WithWatcher(w, load))
	}

	m, err := ui.NewModel(records, cfg, opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	if printOnly {
		if width <= 0 {
			width = terminalWidth()
		}
		_, err := fmt.Fprintln(out, m.RenderStatic(width))
		return err
	}

	runErr := runTUIProgram(m, cfg)
	if statePath != "" {
		if err := st.SaveExpanded(statePath); err != nil {
			log.Printf("warning: saving expanded rows: %v", err)
		}
	}
	return runErr
}

// terminalWidth returns stdout's width, or 0 (unbounded) when stdout is not
// a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

func programOptions(cfg config.Config) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithoutSignalHandler()}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	return opts
}

func runTUIProgram(m *ui.Model, cfg config.Config) error {
	p := tea.NewProgram(m, programOptions(cfg)...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set RV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("RV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
