// pattern: Imperative Shell
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"projdex/internal/cli"
	"projdex/internal/config"
	"projdex/internal/inventory"
	"projdex/internal/logging"
	"projdex/internal/tui"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: $XDG_CONFIG_HOME/projdex or ~/.config/projdex)")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir)
	if app.Execute(flag.Args()) {
		if err := runTUI(*configDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// tuiSession is everything the interactive TUI runs with.
type tuiSession struct {
	model      tui.Model
	logs       *logging.Manager
	configPath string
}

// setupTUI loads config and wires logging and the engine into a TUI model.
// A config file that fails to parse is reported and the defaults are used;
// the TUI then never writes the file back, so the user's text survives.
func setupTUI(configDir string) (*tuiSession, error) {
	dataDir := cli.ResolveDataDir(configDir)
	configPath := config.PathIn(dataDir)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		configPath = ""
	}

	logManager, err := cli.OpenLogs(dataDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	appLogger := logManager.For("app")
	appLogger.Info("application starting", "version", version, "data_dir", dataDir)
	if configPath == "" {
		appLogger.Warn("config file unreadable, running on defaults", "path", config.PathIn(dataDir))
	}

	engine := inventory.NewEngine(inventory.NewStore(dataDir), inventory.WithLogger(logManager))
	model := tui.NewModel(tui.Options{
		Engine:     engine,
		Config:     cfg,
		ConfigPath: configPath,
		Logs:       logManager.Entries(),
		Dropped:    logManager.Dropped,
	}, logManager)

	return &tuiSession{model: model, logs: logManager, configPath: configPath}, nil
}

// runTUI launches the interactive TUI.
func runTUI(configDir string) error {
	session, err := setupTUI(configDir)
	if err != nil {
		return err
	}
	defer func() { _ = session.logs.Close() }()

	appLogger := session.logs.For("app")
	p := tea.NewProgram(session.model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		appLogger.Error("application exited with error", "error", err)
		return fmt.Errorf("running program: %w", err)
	}

	appLogger.Info("application stopped")
	return nil
}
