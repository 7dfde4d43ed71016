package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/filesystem"
	"github.com/brettbedarf/webterm/internal/util"
	"github.com/brettbedarf/webterm/mount"
	"github.com/brettbedarf/webterm/server"
	"github.com/brettbedarf/webterm/shell"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		serve      bool
		mnt        string
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.IntVar(&verbose, "verbose", 0, "Log verbosity between 1 (error) and 5 (trace). Overrides config and env. Default is 3 (info).")
	flag.IntVar(&verbose, "v", 0, "--verbose (shorthand)")
	flag.BoolVar(&serve, "serve", false, "Serve the browser terminal API on the configured address")
	flag.BoolVar(&serve, "s", false, "--serve (shorthand)")
	flag.StringVar(&mnt, "mount", "", "Mount a read-only snapshot of a seeded tree at this directory")
	flag.StringVar(&mnt, "m", "", "--mount (shorthand)")
	flag.Parse()

	util.InitializeLogger(config.DefaultLogLvl)
	logger := util.GetLogger("main")

	// Config precedence: defaults < file < env < flags
	cfg := config.NewDefaultConfig()
	if configPath != "" {
		override, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		cfg.Merge(override)
	}
	envOverride, err := config.LoadEnvOverride()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read environment")
	}
	cfg.Merge(envOverride)
	if verbose != 0 {
		cfg.Merge(&config.ConfigOverride{LogLvl: &verbose})
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid config")
	}

	util.InitializeLogger(cfg.LogLvl)
	logger = util.GetLogger("main")
	logger.Debug().Str("config", configPath).Bool("serve", serve).Str("mnt", mnt).Msg("webterm initializing")

	switch {
	case mnt != "":
		runMount(cfg, mnt)
	case serve:
		runServer(cfg)
	default:
		if err := runREPL(cfg, os.Stdin, os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("Shell exited with error")
		}
	}
}

func runMount(cfg *config.Config, mnt string) {
	logger := util.GetLogger("main")

	tree, err := filesystem.NewTree(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create tree")
	}
	if err := tree.Seed(cfg.Seed); err != nil {
		logger.Warn().Err(err).Msg("Seeding incomplete")
	}

	m := mount.New(cfg, tree)
	if err := m.Serve(mnt); err != nil {
		logger.Fatal().Err(err).Msg("Failed to mount filesystem")
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// An external `fusermount -u` ends the server without a signal
	unmounted := make(chan struct{})
	go func() {
		m.Wait()
		close(unmounted)
	}()

	select {
	case <-unmounted:
		logger.Info().Msg("Filesystem unmounted externally")
		return
	case sig := <-signalChan:
		logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")
	}

	if err := m.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	} else {
		logger.Info().Msg("Filesystem unmounted successfully")
	}
}

func runServer(cfg *config.Config) {
	logger := util.GetLogger("main")

	srv := server.New(cfg, shell.DefaultRegistry())
	done := srv.StartAsync()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-done:
		if err != nil {
			logger.Fatal().Err(err).Msg("Server failed")
		}
		return
	case sig := <-signalChan:
		logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down server")
	}
	<-done
}
