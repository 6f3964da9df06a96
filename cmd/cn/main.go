package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vanderheijden86/constellation/internal/datasource"
	"github.com/vanderheijden86/constellation/pkg/config"
	"github.com/vanderheijden86/constellation/pkg/debug"
	"github.com/vanderheijden86/constellation/pkg/export"
	"github.com/vanderheijden86/constellation/pkg/ui"
	"github.com/vanderheijden86/constellation/pkg/version"
	"github.com/vanderheijden86/constellation/pkg/watcher"
)

// Snapshot canvas extent in cells. 150x50 keeps the exported image
// proportions close to a typical maximized terminal.
const (
	snapshotCols = 150
	snapshotRows = 50
)

func main() {
	dataDir := flag.String("data-dir", "", "Data directory holding contacts.json or constellation.db (default: config, then cwd)")
	view := flag.String("view", "", "Initial view: connections or email (default: config)")
	snapshot := flag.String("snapshot", "", "Render a static snapshot of the overview to the given .svg/.png path and exit")
	title := flag.String("title", "", "Title for --snapshot output")
	noWatch := flag.Bool("no-watch", false, "Disable live reload of the data source")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Println("Usage: cn [options]")
		fmt.Println("\nA terminal viewer for relationship constellations.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("cn %s\n", version.Version)
		os.Exit(0)
	}

	if *debugFlag {
		debug.SetEnabled(true)
	}

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

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		debug.Log("config load failed: %v", cfgErr)
		cfg = config.DefaultConfig()
	}
	if *view != "" {
		cfg.UI.DefaultView = *view
	}

	dir := *dataDir
	if dir == "" {
		dir = cfg.DataDir
	}
	if dir == "" {
		dir = "."
	}

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		DataDir:                dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
	})
	if err != nil || len(sources) == 0 {
		fmt.Fprintf(os.Stderr, "No contact data found in %s\n", dir)
		fmt.Fprintln(os.Stderr, "Expected a contacts.json or constellation.db file.")
		os.Exit(1)
	}
	best, err := datasource.SelectBestSource(sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting data source: %v\n", err)
		os.Exit(1)
	}
	data, err := datasource.LoadFromSource(best)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", best.Path, err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6e7375636f6e))

	if *snapshot != "" {
		if err := renderSnapshot(cfg, data, rng, *snapshot, *title); err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *snapshot)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "cn needs an interactive terminal (use --snapshot for non-interactive output)")
		os.Exit(1)
	}

	var w *watcher.Watcher
	if cfg.WatchEnabled() && !*noWatch {
		// The JSON loader reads emails.json next to the contacts file, so
		// both are part of the dataset's change surface.
		w, err = watcher.NewWatcher(best.Path, watcher.WithSiblings(datasource.EmailsFileName))
		if err != nil {
			debug.Log("watcher setup failed for %s: %v", best.Path, err)
		} else if err := w.Start(); err != nil {
			debug.Log("watcher start failed: %v", err)
			w = nil
		}
	}

	m := ui.NewModel(ui.ModelParams{
		Data:    data,
		DataDir: dir,
		Config:  cfg,
		Watcher: w,
		Rand:    rng,
	})
	defer m.Close()

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running cn: %v\n", err)
		os.Exit(1)
	}
}

// renderSnapshot lays out the overview for the configured variant without a
// terminal and writes it as SVG or PNG.
func renderSnapshot(cfg config.Config, data *datasource.Dataset, rng *rand.Rand, path, title string) error {
	variant := ui.VariantConnections
	if cfg.UI.DefaultView == "email" {
		variant = ui.VariantEmail
	}

	g := ui.NewGraphView(ui.GraphViewParams{
		Variant: variant,
		Theme:   ui.DefaultTheme(lipgloss.DefaultRenderer()),
		Data:    data,
		Rand:    rng,
	})
	defer g.Close()
	g.SetSize(snapshotCols, snapshotRows)

	if title == "" {
		title = variant.String() + " overview"
	}
	return export.SaveSnapshot(export.SnapshotOptions{
		Path:  path,
		Title: title,
		Scene: g.Sim().Scene(),
	})
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

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

	// Optional auto-quit for automated tests: set CN_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CN_TUI_AUTOCLOSE_MS"); v != "" {
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

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
