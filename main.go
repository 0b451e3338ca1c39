// Package main is the aigen entry point.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"aigen/commands"
	"aigen/core"
	"aigen/logging"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	// Service management commands (install, uninstall, ...) run before
	// anything else; they are Windows-only and no-ops elsewhere.
	if HandleServiceCommand(args) {
		return core.ExitCodeSuccess
	}

	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("configuration error: %v", err))
		return core.ExitCodeError
	}

	logger, err := logging.NewLogger(cfg.DevMode, filepath.Join(core.GetDataDirectory(), "logs", "aigen.log"))
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("logger setup failed: %v", err))
		return core.ExitCodeError
	}
	defer logger.Sync()

	app := &commands.App{Config: cfg, Logger: logger, Version: version}

	if asService, err := RunAsService(app); asService {
		if err != nil {
			return core.ExitCodeError
		}
		return core.ExitCodeSuccess
	}

	if err := commands.NewRootCmd(app).Execute(); err != nil {
		var sigErr *commands.SignalExitError
		if errors.As(err, &sigErr) {
			return sigErr.Code
		}
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		return core.ExitCodeError
	}
	return core.ExitCodeSuccess
}
