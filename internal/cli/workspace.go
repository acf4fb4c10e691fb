// pattern: Imperative Shell
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"projdex/internal/config"
	"projdex/internal/inventory"
	"projdex/internal/logging"
)

// logFileName is written beside config.yaml by every projdex process.
const logFileName = "projdex.log"

// ResolveDataDir returns the directory holding config, catalog, lock and log
// files. An explicit configDir wins.
func ResolveDataDir(configDir string) string {
	return config.Dir(configDir)
}

// Workspace is what a command works against: the loaded config and an
// engine over the catalog in the data directory.
type Workspace struct {
	DataDir    string
	ConfigPath string
	Config     config.Config
	Engine     *inventory.Engine
	Logs       logging.LoggerProvider

	close func() error
}

// Close flushes the log file.
func (w *Workspace) Close() error {
	if w.close == nil {
		return nil
	}
	return w.close()
}

// OpenLogs creates the log manager writing to <dataDir>/projdex.log.
func OpenLogs(dataDir, level string) (*logging.Manager, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return logging.NewManager(logging.Config{
		FilePath:       filepath.Join(dataDir, logFileName),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          level,
	})
}

// openWorkspace loads config from configDir and opens the catalog beside it.
// A malformed config file is an error here; the defaults only stand in for a
// missing one.
func openWorkspace(configDir string, opts ...inventory.Option) (*Workspace, error) {
	dataDir := ResolveDataDir(configDir)
	configPath := config.PathIn(dataDir)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()

	logs, err := OpenLogs(dataDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	opts = append([]inventory.Option{inventory.WithLogger(logs)}, opts...)
	return &Workspace{
		DataDir:    dataDir,
		ConfigPath: configPath,
		Config:     cfg,
		Engine:     inventory.NewEngine(inventory.NewStore(dataDir), opts...),
		Logs:       logs,
		close:      logs.Close,
	}, nil
}

// withWorkspace opens the workspace for the duration of fn.
func withWorkspace(configDir string, fn func(*Workspace) error) error {
	ws, err := openWorkspace(configDir)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()
	return fn(ws)
}
