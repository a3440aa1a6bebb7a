package main

import (
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"pathtracer/render"
)

var (
	renderFrames int
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render [scene.obj|scene.gltf]",
	Short: "Render offline and write a PNG",
	Long: `render accumulates the requested number of progressive frames
without opening a window and writes the tonemapped result to disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderFrames, "frames", "n", 64, "frames to accumulate")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "render.png", "output image path")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := buildScene(args, &cfg)
	if err != nil {
		return err
	}

	rend := render.NewRenderer(sc, cfg)

	start := time.Now()
	for i := 0; i < renderFrames; i++ {
		rend.RenderFrame()
		if (i+1)%16 == 0 {
			logVerbose("frame %d/%d (%.1fs)", i+1, renderFrames, time.Since(start).Seconds())
		}
	}
	logVerbose("rendered %d frames in %s", renderFrames, time.Since(start))

	return imaging.Save(rend.Image(), renderOutput)
}
