package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"alphatrack-engine/internal/config"
	"alphatrack-engine/internal/rawlog"
	"alphatrack-engine/internal/run"
	"alphatrack-engine/internal/scheduler"
	"alphatrack-engine/internal/snapshot"
	"alphatrack-engine/internal/source"
	"alphatrack-engine/internal/source/boards"
	"alphatrack-engine/internal/source/careers"
	"alphatrack-engine/internal/store"
)

type CLI struct {
	ConfigFile string           `name:"config" help:"Path to config file." default:"config/config.yml" type:"path"`
	Verbose    bool             `help:"Enable debug logging." short:"v"`
	Version    kong.VersionFlag `help:"Print version and quit."`

	Run    RunCmd    `cmd:"" help:"Execute one ingestion cycle for every configured target."`
	Watch  WatchCmd  `cmd:"" help:"Run ingestion cycles on the configured interval until interrupted."`
	Stale  StaleCmd  `cmd:"" help:"List a target's records not seen since a cutoff."`
	Config ConfigCmd `cmd:"" help:"Manage the user config."`
}

type Context struct {
	Log        zerolog.Logger
	ConfigPath string
}

func (c *Context) load() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, err
	}
	return cfg, config.Validate(cfg)
}

type RunCmd struct{}

func (c *RunCmd) Run(ctx *Context) error {
	cfg, err := ctx.load()
	if err != nil {
		return err
	}
	targets, cleanup, err := buildTargets(cfg, ctx.Log)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := &run.Runner{Log: ctx.Log}
	summaries, err := runner.RunAll(context.Background(), targets)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(summaries); encErr != nil {
		return encErr
	}
	return err
}

type WatchCmd struct{}

func (c *WatchCmd) Run(cmdCtx *Context) error {
	cfg, err := cmdCtx.load()
	if err != nil {
		return err
	}
	targets, cleanup, err := buildTargets(cfg, cmdCtx.Log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.Polling.IntervalSeconds) * time.Second
	runner := &run.Runner{Log: cmdCtx.Log}

	cmdCtx.Log.Info().Dur("interval", interval).Int("targets", len(targets)).Msg("watching")
	scheduler.Every(ctx, interval, "ingest", cmdCtx.Log, func(ctx context.Context) error {
		_, err := runner.RunAll(ctx, targets)
		return err
	})
	return nil
}

type StaleCmd struct {
	Target string        `arg:"" help:"Target name from the config."`
	Since  time.Duration `help:"Age after which a record counts as stale." default:"168h"`
}

func (c *StaleCmd) Run(ctx *Context) error {
	cfg, err := ctx.load()
	if err != nil {
		return err
	}

	var found bool
	for _, t := range cfg.Targets {
		if t.Name == c.Target {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown target %q", c.Target)
	}

	db, err := store.Open(filepath.Join(cfg.App.DataDir, c.Target, "jobs.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	cutoff := time.Now().UTC().Add(-c.Since)
	records, err := db.StaleSince(context.Background(), cutoff)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Seed a user config in the data directory from the shipped default."`
	Path ConfigPathCmd `cmd:"" help:"Print the config path in use."`
}

type ConfigInitCmd struct {
	DataDir string `help:"Data directory to hold the user config." default:"data" env:"ALPHATRACK_DATA_DIR"`
}

func (c *ConfigInitCmd) Run(ctx *Context) error {
	path, err := config.EnsureUserConfig(c.DataDir, ctx.ConfigPath)
	if err != nil {
		return err
	}
	_, err = fmt.Println(path)
	return err
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(ctx *Context) error {
	_, err := fmt.Println(ctx.ConfigPath)
	return err
}

// buildTargets wires one run.Target per configured target: its own sqlite
// store, snapshot dir, and lock file under data_dir/<name>, all sharing a
// single rate-limited HTTP client.
func buildTargets(cfg config.Config, log zerolog.Logger) ([]run.Target, func(), error) {
	limiter := source.NewHostLimiter(cfg.Fetch.HostReqPerSec, cfg.Fetch.HostBurst)
	client := source.NewClient(limiter)

	var raw *rawlog.Archiver
	if cfg.Raw.Enabled {
		raw = &rawlog.Archiver{Dir: filepath.Join(cfg.App.DataDir, "raw_responses")}
	}

	var targets []run.Target
	cleanup := func() {
		for _, t := range targets {
			_ = t.Store.Close()
		}
	}

	for _, t := range cfg.Targets {
		dir := filepath.Join(cfg.App.DataDir, t.Name)
		db, err := store.Open(filepath.Join(dir, "jobs.db"))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open store for %s: %w", t.Name, err)
		}

		slog := log.With().Str("target", t.Name).Logger()
		var src source.Source
		switch t.Source {
		case "careers":
			src = careers.New(careers.Config{BaseURL: t.URL}, client, raw, slog)
		case "boards":
			src = boards.New(boards.Config{BaseURL: t.URL}, client, raw, slog)
		default:
			_ = db.Close()
			cleanup()
			return nil, nil, fmt.Errorf("target %s: unknown source %q", t.Name, t.Source)
		}

		targets = append(targets, run.Target{
			Name:      t.Name,
			Source:    src,
			Store:     db,
			Snapshots: snapshot.Writer{Dir: dir},
			LockPath:  filepath.Join(dir, ".run.lock"),
		})
	}
	return targets, cleanup, nil
}
