package commands

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"aigen/device"
	"aigen/diffusion"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and backend information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("aigen %s\n", app.Version)
			cmd.Printf("backend: %s\n", diffusion.BackendInfo())
			return nil
		},
	}
}

func newInfoCmd(app *App) *cobra.Command {
	var showEnv bool

	c := &cobra.Command{
		Use:   "info",
		Short: "Show detected hardware capabilities and derived defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			caps := device.DetectHost(app.Config.ForceCPU, app.Logger)
			defaults := device.Optimize(caps)

			heading := color.New(color.Bold).SprintFunc()

			cmd.Println(heading("Device"))
			cmd.Printf("  accelerator:    %s\n", caps.Accelerator)
			cmd.Printf("  precision:      %s\n", caps.Precision)
			cmd.Printf("  memory:         %d GiB\n", caps.MaxMemoryGiB)
			cmd.Printf("  arm optimized:  %v\n", caps.ARMOptimized)

			cmd.Println(heading("Image defaults"))
			cmd.Printf("  size:     %dx%d\n", defaults.Image.Width, defaults.Image.Height)
			cmd.Printf("  steps:    %d\n", defaults.Image.Steps)
			cmd.Printf("  guidance: %.1f\n", defaults.Image.GuidanceScale)

			cmd.Println(heading("Video defaults"))
			cmd.Printf("  size:     %dx%d\n", defaults.Video.Width, defaults.Video.Height)
			cmd.Printf("  steps:    %d\n", defaults.Video.Steps)
			cmd.Printf("  frames:   %d\n", defaults.Video.FrameCount)

			if showEnv {
				env := device.ComputeEnvironment(device.CurrentHost(), app.Config.ModelCacheDir, app.Config.ForceCPU)
				keys := make([]string, 0, len(env))
				for k := range env {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				cmd.Println(heading("Tuned environment"))
				for _, k := range keys {
					cmd.Println("  " + fmt.Sprintf("%s=%s", k, env[k]))
				}
			}
			return nil
		},
	}
	c.Flags().BoolVar(&showEnv, "env", false, "also print the tuned environment variables")
	return c
}
