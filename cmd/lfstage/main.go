package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tox-wtf/lfstage/internal/config"
	"github.com/tox-wtf/lfstage/internal/logging"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitConfigError    = 3
	ExitDownloadFailed = 4
	ExitScriptFailed   = 5
	ExitStorageError   = 6
)

// logFile is where process logs are mirrored.
const logFile = "/var/log/lfstage/lfstage.log"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "build":
		return runBuild(cmdArgs)
	case "download":
		return runDownload(cmdArgs)
	case "export":
		return runExport(cmdArgs)
	case "import":
		return runImport(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: lfstage <command> [options]

Commands:
  build     Build a stage file for a profile
  download  Download the sources a profile requires
  export    Export a built stage file to object storage
  import    Import a stage file from object storage

Run 'lfstage <command> -h' for command-specific help.`)
}

// loadRuntime loads configuration (file, then environment) and sets up the
// process logger. The returned closer flushes the log file.
func loadRuntime(configPath string) (config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, nil, err
	}

	log, closeLog := logging.Setup(cfg.LogLevel, logFile, cfg.LogMaxSize)
	return cfg, log, closeLog, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[lfstage] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}
