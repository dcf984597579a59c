// Package main provides the entry point for pipeviz, an interactive replay
// of a pipelined processor's cycle-by-cycle execution.
//
// Usage:
//
//	pipeviz -source prog.s                  # terminal UI
//	pipeviz -ui web -listen :8090           # websocket presenter
//	pipeviz -ui dump -source prog.s         # frames as JSON lines
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sarchlab/pipeviz/engine"
	"github.com/sarchlab/pipeviz/loader"
	"github.com/sarchlab/pipeviz/log"
	"github.com/sarchlab/pipeviz/playback"
	"github.com/sarchlab/pipeviz/session"
)

var (
	configPath = flag.String("config", "", "Path to playback configuration JSON file")
	engineURL  = flag.String("engine", "", "Base URL of the simulation engine")
	sourcePath = flag.String("source", "", "Program source file, or - for stdin")
	forwarding = flag.Bool("forwarding", false, "Enable data forwarding")
	ui         = flag.String("ui", "tui", "Presenter: tui, web or dump")
	listenAddr = flag.String("listen", "", "Listen address of the web presenter")
	tickMS     = flag.Int64("tick", 0, "Initial auto-advance interval in milliseconds")
	logPath    = flag.String("log", "", "Write log lines to this file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := openLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	var text string
	if *sourcePath != "" {
		src, err := loader.LoadSource(*sourcePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading source: %v\n", err)
			os.Exit(1)
		}
		text = src.Text
		logger.Infof("loaded %d bytes of source from %s", len(text), src.Path)
	}

	client := engine.NewClient(config.EngineURL,
		engine.WithTimeout(config.RequestTimeout()),
		engine.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []session.Option{
		session.WithConfig(config),
		session.WithLogger(logger),
		session.WithContext(ctx),
	}

	var code int
	switch *ui {
	case "tui":
		code = runTUI(client, text, opts)
	case "web":
		code = runWeb(ctx, client, config.ListenAddr, text, logger, opts)
	case "dump":
		code = runDump(ctx, client, text, os.Stdout, opts)
	default:
		fmt.Fprintf(os.Stderr, "Unknown presenter %q (valid: tui, web, dump)\n", *ui)
		code = 2
	}

	closeLog()
	os.Exit(code)
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides.
func loadConfig() (*playback.Config, error) {
	config := playback.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = playback.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *engineURL != "" {
		config.EngineURL = *engineURL
	}
	if *listenAddr != "" {
		config.ListenAddr = *listenAddr
	}
	if *tickMS != 0 {
		config.TickMS = *tickMS
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// openLogger picks the log destination. The terminal UI owns the screen,
// so without -log it logs nothing.
func openLogger() (log.Logger, func(), error) {
	level := log.LevelInfo
	if *verbose {
		level = log.LevelDebug
	}

	if *logPath != "" {
		file, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		closed := false
		return log.NewWithWriter(file, level), func() {
			if !closed {
				closed = true
				_ = file.Close()
			}
		}, nil
	}

	if *ui == "tui" {
		return log.NewNullLogger(), func() {}, nil
	}
	return log.NewWithWriter(os.Stderr, level), func() {}, nil
}
