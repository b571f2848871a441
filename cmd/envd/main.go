// Command envd loads the front-end environment once and serves it.
//
// It:
// - builds the environment from the compiled-in preset, config file and CS_* env,
// - checks it through the API and auth consumers, and
// - serves /environment.json and /environment.js until interrupted.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"coffee-env/internal/accesslog"
	"coffee-env/internal/apiclient"
	"coffee-env/internal/auth"
	"coffee-env/internal/config"
	"coffee-env/internal/environment"
	"coffee-env/internal/envserver"
	"coffee-env/internal/runid"
)

func fatal(msg string, err error, attrs ...any) {
	args := make([]any, 0, 2+len(attrs))
	args = append(args, "err", err)
	args = append(args, attrs...)
	slog.Error(msg, args...)
	os.Exit(1)
}

// check runs the environment through every consumer's initialization.
func check(env environment.Environment) (*apiclient.Client, *auth.Client, error) {
	api, err := apiclient.New(env)
	if err != nil {
		return nil, nil, err
	}
	ac, err := auth.New(env)
	if err != nil {
		return nil, nil, err
	}
	return api, ac, nil
}

// logLevel keeps debug output out of production deployments.
func logLevel(env environment.Environment) slog.Level {
	if env.Production {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func printEnvironment(w io.Writer, env environment.Environment) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode environment: %w", err)
	}
	return enc.Close()
}

func main() {
	fs := pflag.NewFlagSet("envd", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "f", "", "environment YAML file (default: search environment.yaml in . and config/)")
	checkOnly := fs.Bool("check", false, "validate the environment and exit")
	printOnly := fs.Bool("print", false, "print the environment as YAML and exit")
	_ = fs.Parse(os.Args[1:])

	// Set up logging first so early failures are captured consistently.
	runID := runid.New()
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With("run_id", runID))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal("config load failed", err)
	}
	holder := environment.New(cfg.Environment)
	env := holder.Environment()
	level.Set(logLevel(env))

	if *printOnly {
		if err := printEnvironment(os.Stdout, env); err != nil {
			fatal("print failed", err)
		}
		return
	}

	api, ac, err := check(env)
	if err != nil {
		fatal("environment invalid", err, "environment", cfg.Name, "file", cfg.File)
	}
	if *checkOnly {
		slog.Info("environment ok", "environment", cfg.Name)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Shutdown watch: once a shutdown signal is received, allow a bounded window
	// for goroutines to exit cleanly before forcing termination.
	go func() {
		<-ctx.Done()
		t := time.NewTimer(10 * time.Second)
		defer t.Stop()
		<-t.C
		slog.Error("shutdown timed out after 10s, forcing exit")
		os.Exit(2)
	}()

	slog.Info(
		"starting envd",
		"environment", cfg.Name,
		"production", env.Production,
		"addr", cfg.ServerAddr,
		"api", api.BaseURL(),
		"issuer", ac.Issuer(),
	)
	slog.Debug("auth urls", "login", ac.LoginURL(), "logout", ac.LogoutURL())

	var al *accesslog.Logger
	if cfg.AccessLogPath != "" {
		al, err = accesslog.New(cfg.AccessLogPath, runID)
		if err != nil {
			fatal("open access log failed", err, "path", cfg.AccessLogPath)
		}
		defer func() { _ = al.Close() }()
		slog.Info("access log enabled", "path", cfg.AccessLogPath)
	} else {
		slog.Info("access log disabled (default); set CS_TELEMETRY_ACCESS_LOG_PATH to enable")
	}

	srv, err := envserver.Start(ctx, cfg.ServerAddr, holder, al)
	if err != nil {
		fatal("envserver start failed", err, "addr", cfg.ServerAddr)
	}
	slog.Info("serving environment", "addr", srv.Addr())

	<-ctx.Done()
	slog.Info("shutdown requested")
	<-srv.Done()
	slog.Info("envserver stopped", "access_log_failures", al.Failures())
}
