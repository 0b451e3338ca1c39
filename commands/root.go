// Package commands implements the aigen command-line interface.
//
// Each subcommand is built by a newXxxCmd factory so tests can construct
// and execute commands in isolation. Shared state (configuration, logger,
// version) travels in an App value rather than package globals.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aigen/core"
)

// App carries the state every command needs.
type App struct {
	Config  *core.Config
	Logger  *zap.Logger
	Version string
}

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aigen",
		Short: "Local AI image and video generation",
		Long: `aigen generates images and video with a local diffusion backend, picking
generation parameters to suit the hardware it detects. Run a generation
subcommand for one-off output, or "aigen serve" for the web dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(app),
		newInfoCmd(app),
		newTextToImageCmd(app),
		newImageToImageCmd(app),
		newTextToVideoCmd(app),
		newOutputsCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
