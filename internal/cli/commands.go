// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"projdex/internal/config"
	"projdex/internal/instance"
	"projdex/internal/launcher"
	"projdex/internal/project"
)

// BuildApp creates and configures the CLI application with all commands.
func BuildApp(version string, configDir string) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "scan",
		Summary: "Rescan the configured workspaces",
		Usage:   "Usage: projdex scan",
		Run: func(args []string) error {
			if len(args) > 0 {
				return ErrUsage
			}
			return withWorkspace(configDir, func(ws *Workspace) error {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				projects, err := ws.Engine.Scan(ctx, ws.Config.ScanConfig())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(app.Stdout, "Scanned %d projects\n", len(projects))
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "list",
		Summary: "Print the catalog",
		Usage:   "Usage: projdex list [--json] [--sort hits|last_opened|name]",
		Run: func(args []string) error {
			fs := newFlagSet("list")
			asJSON := fs.Bool("json", false, "print JSON instead of a table")
			sortBy := fs.String("sort", "", "sort order (default: project_sort_by from config)")
			if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
				return ErrUsage
			}
			return withWorkspace(configDir, func(ws *Workspace) error {
				by := ws.Config.SortBy()
				if *sortBy != "" {
					parsed, ok := project.ParseSortBy(*sortBy)
					if !ok {
						return fmt.Errorf("invalid sort order %q", *sortBy)
					}
					by = parsed
				}
				projects, err := ws.Engine.Catalog()
				if err != nil {
					return err
				}
				project.Sort(projects, by)
				if *asJSON {
					return PrintJSON(app.Stdout, projects)
				}
				PrintTable(app.Stdout, projects, ws.Config.Registry())
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "detect",
		Summary: "Classify the technology stack of every project, or of one path",
		Usage:   "Usage: projdex detect [path]",
		Run: func(args []string) error {
			if len(args) > 1 {
				return ErrUsage
			}
			return withWorkspace(configDir, func(ws *Workspace) error {
				if len(args) == 1 {
					tag, err := ws.Engine.ClassifyOne(config.ExpandPath(args[0]))
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(app.Stdout, tag)
					return nil
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				last := -1
				projects, err := ws.Engine.ClassifyBatch(ctx, func(percent int) {
					if percent != last {
						last = percent
						_, _ = fmt.Fprintf(app.Stderr, "\rclassifying... %3d%%", percent)
					}
				})
				if last >= 0 {
					_, _ = fmt.Fprintln(app.Stderr)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(app.Stdout, "Classified %d projects\n", len(projects))
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "add",
		Summary: "Track a folder the scanner would not find",
		Usage:   "Usage: projdex add <path>",
		Run: pathCommand(configDir, func(ws *Workspace, path string) error {
			p, err := ws.Engine.AddCustom(path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(app.Stdout, "Added %s\n", p.Path)
			return nil
		}),
	})

	app.AddCommand(&Command{
		Name:    "remove",
		Summary: "Stop tracking a folder added with 'add'",
		Usage:   "Usage: projdex remove <path>",
		Run: pathCommand(configDir, func(ws *Workspace, path string) error {
			if err := ws.Engine.RemoveCustom(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(app.Stdout, "Removed %s\n", path)
			return nil
		}),
	})

	app.AddCommand(&Command{
		Name:    "exclude",
		Summary: "Exclude a project from future scans and drop it from the catalog",
		Usage:   "Usage: projdex exclude <path>",
		Run: pathCommand(configDir, func(ws *Workspace, path string) error {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if ws.Config.Exclude(abs) {
				if err := ws.Config.Save(ws.ConfigPath); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
			}
			if err := ws.Engine.Forget(abs); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(app.Stdout, "Excluded %s\n", abs)
			return nil
		}),
	})

	app.AddCommand(&Command{
		Name:    "open",
		Summary: "Record an open and print the launcher command",
		Usage:   "Usage: projdex open <path> [--with <launcher-id>]",
		Run: func(args []string) error {
			fs := newFlagSet("open")
			with := fs.String("with", "", "bind this launcher to the project first")
			if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
				return ErrUsage
			}
			path := config.ExpandPath(fs.Arg(0))
			return withWorkspace(configDir, func(ws *Workspace) error {
				reg := ws.Config.Registry()
				if *with != "" {
					id := launcher.ID(*with)
					if _, ok := reg.Resolve(&id); !ok {
						return fmt.Errorf("unknown launcher %q", *with)
					}
					if _, err := ws.Engine.BindLauncher(path, &id); err != nil {
						return err
					}
				}
				p, err := ws.Engine.RecordOpen(path)
				if err != nil {
					return err
				}
				if l, ok := reg.Resolve(p.LauncherID); ok {
					_, _ = fmt.Fprintln(app.Stdout, l.CommandLine(p.Path))
					return nil
				}
				_, _ = fmt.Fprintf(app.Stderr, "%s opened %d times (no launcher bound)\n", p.DisplayName(), p.Hits)
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "pin",
		Summary: "Keep a project at the top of the list",
		Usage:   "Usage: projdex pin <path>",
		Run: pathCommand(configDir, func(ws *Workspace, path string) error {
			p, err := ws.Engine.SetTop(path, true)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(app.Stdout, "Pinned %s\n", p.DisplayName())
			return nil
		}),
	})

	app.AddCommand(&Command{
		Name:    "unpin",
		Summary: "Undo 'pin'",
		Usage:   "Usage: projdex unpin <path>",
		Run: pathCommand(configDir, func(ws *Workspace, path string) error {
			p, err := ws.Engine.SetTop(path, false)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(app.Stdout, "Unpinned %s\n", p.DisplayName())
			return nil
		}),
	})

	app.AddCommand(&Command{
		Name:    "alias",
		Summary: "Set the display name of a project, or clear it",
		Usage:   "Usage: projdex alias <path> [name]",
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return ErrUsage
			}
			alias := ""
			if len(args) == 2 {
				alias = strings.TrimSpace(args[1])
			}
			return withWorkspace(configDir, func(ws *Workspace) error {
				p, err := ws.Engine.SetAlias(config.ExpandPath(args[0]), alias)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(app.Stdout, "%s is now shown as %s\n", p.Path, p.DisplayName())
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "serve",
		Summary: "Run the HTTP API until interrupted",
		Usage:   "Usage: projdex serve [--bind <addr>] [--port <n>]",
		Run: func(args []string) error {
			fs := newFlagSet("serve")
			bind := fs.String("bind", "", "listen address (default: web.bind from config)")
			port := fs.Int("port", -1, "listen port, 0 for ephemeral (default: web.port from config)")
			if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
				return ErrUsage
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, ServeOptions{
				ConfigDir: configDir,
				Bind:      *bind,
				Port:      *port,
				Out:       app.Stdout,
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "status",
		Summary: "Report whether a server is running",
		Usage:   "Usage: projdex status",
		Run: func(args []string) error {
			if len(args) > 0 {
				return ErrUsage
			}
			srv, err := instance.Discover(ResolveDataDir(configDir))
			if err != nil {
				return err
			}
			n, err := instance.NewClient(srv.BaseURL).CatalogSize()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(app.Stdout, "projdex server at %s (%d projects, pid %d, up %s)\n",
				srv.BaseURL, n, srv.PID, srv.Uptime(time.Now()))
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "clear-cache",
		Summary: "Delete the stored catalog",
		Usage:   "Usage: projdex clear-cache",
		Run: func(args []string) error {
			if len(args) > 0 {
				return ErrUsage
			}
			return withWorkspace(configDir, func(ws *Workspace) error {
				if err := ws.Engine.Clear(); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(app.Stdout, "Catalog cleared.")
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove the record a crashed server left behind",
		Usage:   "Usage: projdex cleanup",
		Run: func(args []string) error {
			if len(args) > 0 {
				return ErrUsage
			}
			dataDir := ResolveDataDir(configDir)
			// Getting the lock proves no server is running.
			lock, err := instance.Acquire(dataDir)
			if err != nil {
				return fmt.Errorf("a projdex server appears to be running, stop it first")
			}
			lock.Release()
			_, _ = fmt.Fprintln(app.Stdout, "Removed stale server record.")
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: projdex version",
		Run: func(args []string) error {
			_, _ = fmt.Fprintln(app.Stdout, version)
			return nil
		},
	})

	return app
}

// pathCommand wraps handlers that take exactly one path argument.
func pathCommand(configDir string, fn func(ws *Workspace, path string) error) func([]string) error {
	return func(args []string) error {
		if len(args) != 1 || args[0] == "" {
			return ErrUsage
		}
		path := config.ExpandPath(args[0])
		return withWorkspace(configDir, func(ws *Workspace) error {
			return fn(ws, path)
		})
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	return fs
}
