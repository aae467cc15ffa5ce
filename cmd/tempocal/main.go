package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"tempocal/internal/audit"
	"tempocal/internal/config"
	appLog "tempocal/internal/log"
	"tempocal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	debug      bool
}

func main() {
	appLog.Info("tempocal starting", "version", "0.1.0-dev")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"default_start", conf.DefaultStart,
		"occurrence_cap", conf.OccurrenceCap,
		"prune_cron", conf.PruneCron,
		"audit_path", conf.Audit.Path,
		"retention_days", conf.Audit.RetentionDays,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	store, err := audit.Open(audit.Config{
		Path:        conf.Audit.Path,
		BusyTimeout: 5 * time.Second,
	})
	if err != nil {
		// The engine stays useful without history; run without snapshots.
		appLog.Error("audit store unavailable, snapshots disabled", err, "path", conf.Audit.Path)
		store = nil
	} else {
		defer store.Close()
	}

	// Periodic audit retention sweep.
	if store != nil {
		c := cron.New()
		retention := time.Duration(conf.Audit.RetentionDays) * 24 * time.Hour
		_, err := c.AddFunc(conf.PruneCron, func() {
			pruneCtx, pruneCancel := context.WithTimeout(ctx, 30*time.Second)
			defer pruneCancel()
			n, perr := store.Prune(pruneCtx, time.Now().Add(-retention))
			if perr != nil {
				appLog.Error("audit prune failed", perr)
				return
			}
			appLog.Info("audit prune completed", "deleted", n)
		})
		if err != nil {
			appLog.Error("invalid prune cron spec, sweep disabled", err, "spec", conf.PruneCron)
		} else {
			c.Start()
			defer c.Stop()
		}
	}

	if err := web.StartServer(ctx, conf, store); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("tempocal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/tempocal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
