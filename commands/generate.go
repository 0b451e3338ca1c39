package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"aigen/device"
	"aigen/media"
	"aigen/pipeline"
)

// generateFlags holds the parameter overrides shared by the generation
// subcommands. Zero values mean "use the hardware-derived default".
type generateFlags struct {
	negativePrompt string
	model          string
	width          int
	height         int
	steps          int
	guidance       float64
	images         int
	seed           int64
	outputDir      string
}

func (f *generateFlags) register(c *cobra.Command) {
	flags := c.Flags()
	flags.StringVarP(&f.negativePrompt, "negative-prompt", "n", "", "content to steer away from")
	flags.StringVarP(&f.model, "model", "m", "", "model ID overriding the registry default")
	flags.IntVar(&f.width, "width", 0, "output width in pixels")
	flags.IntVar(&f.height, "height", 0, "output height in pixels")
	flags.IntVar(&f.steps, "steps", 0, "denoising steps")
	flags.Float64Var(&f.guidance, "guidance", 0, "classifier-free guidance scale")
	flags.Int64Var(&f.seed, "seed", -1, "seed for reproducible output (-1 picks a random seed)")
	flags.StringVarP(&f.outputDir, "output", "o", "", "directory for generated files (default OUTPUT_DIR)")
}

func (f *generateFlags) request(prompt string) pipeline.Request {
	return pipeline.Request{
		Prompt:         prompt,
		NegativePrompt: f.negativePrompt,
		ModelID:        f.model,
		Seed:           f.seed,
		Image: device.ImageParams{
			Width:         f.width,
			Height:        f.height,
			Steps:         f.steps,
			GuidanceScale: f.guidance,
			ImageCount:    f.images,
		},
	}
}

func newTextToImageCmd(app *App) *cobra.Command {
	var f generateFlags

	c := &cobra.Command{
		Use:     "text-to-image <prompt>",
		Aliases: []string{"txt2img"},
		Short:   "Generate images from a text prompt",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := f.request(strings.Join(args, " "))
			return runGenerate(cmd, app, pipeline.TextToImage, req, f.outputDir, 0)
		},
	}
	f.register(c)
	c.Flags().IntVarP(&f.images, "num-images", "c", 0, "number of images to generate")
	return c
}

func newImageToImageCmd(app *App) *cobra.Command {
	var f generateFlags
	var initImage string
	var strength float64

	c := &cobra.Command{
		Use:     "image-to-image <prompt>",
		Aliases: []string{"img2img"},
		Short:   "Transform an input image guided by a text prompt",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(initImage)
			if err != nil {
				return fmt.Errorf("read init image: %w", err)
			}

			req := f.request(strings.Join(args, " "))
			req.InitImage = data
			req.Strength = strength
			return runGenerate(cmd, app, pipeline.ImageToImage, req, f.outputDir, 0)
		},
	}
	f.register(c)
	c.Flags().IntVarP(&f.images, "num-images", "c", 0, "number of images to generate")
	c.Flags().StringVarP(&initImage, "init-image", "i", "", "input image file (required)")
	c.Flags().Float64VarP(&strength, "strength", "s", 0, "transformation strength in (0, 1], default 0.75")
	c.MarkFlagRequired("init-image")
	return c
}

func newTextToVideoCmd(app *App) *cobra.Command {
	var f generateFlags
	var frames, fps int

	c := &cobra.Command{
		Use:     "text-to-video <prompt>",
		Aliases: []string{"txt2vid"},
		Short:   "Generate a short video from a text prompt",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := f.request(strings.Join(args, " "))
			req.Video = device.VideoParams{
				Width:         f.width,
				Height:        f.height,
				Steps:         f.steps,
				GuidanceScale: f.guidance,
				FrameCount:    frames,
			}
			req.Image = device.ImageParams{}
			return runGenerate(cmd, app, pipeline.TextToVideo, req, f.outputDir, fps)
		},
	}
	f.register(c)
	c.Flags().IntVar(&frames, "frames", 0, "number of frames to render")
	c.Flags().IntVar(&fps, "fps", media.DefaultVideoFPS, "playback frame rate of the saved video")
	return c
}

// runGenerate builds the pipeline manager, runs one generation, and writes
// the artifacts to disk. Ctrl+C cancels the generation cleanly.
func runGenerate(cmd *cobra.Command, app *App, m pipeline.Modality, req pipeline.Request, outputDir string, fps int) error {
	mgr, _, err := app.buildManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if outputDir == "" {
		outputDir = app.Config.OutputDir
	}

	start := time.Now()
	result, err := mgr.Generate(ctx, m, req)
	if err != nil {
		return err
	}

	var files []string
	if m.IsVideo() {
		path, err := media.SaveVideo(outputDir, result.Artifacts, fps)
		if err != nil {
			return fmt.Errorf("save video: %w", err)
		}
		files = append(files, path)
	} else {
		for _, artifact := range result.Artifacts {
			path, err := media.SaveArtifact(outputDir, artifact)
			if err != nil {
				return fmt.Errorf("save image: %w", err)
			}
			files = append(files, path)
		}
	}

	elapsed := time.Since(start).Round(10 * time.Millisecond)
	cmd.Println(color.GreenString("generated %d file(s) in %s (seed %d)", len(files), elapsed, result.Seed))
	for _, path := range files {
		cmd.Println("  " + path)
	}
	return nil
}
