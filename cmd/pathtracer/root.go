package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pathtracer/core"
	"pathtracer/math"
	"pathtracer/opengl"
	"pathtracer/render"
	"pathtracer/scene"
)

var (
	version = "0.1.0"
	verbose bool

	configPath string
	flagCfg    render.Config
)

var rootCmd = &cobra.Command{
	Use:   "pathtracer [scene.obj|scene.gltf]",
	Short: "Interactive CPU path tracer",
	Long: `pathtracer — a progressive CPU path tracer with a binned-SAH BVH,
next-event estimation and an edge-aware denoiser.

With no argument it renders a built-in demo room; pass a Wavefront
.obj or a glTF file to trace a mesh scene.`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runViewer,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagCfg.Width, "width", 0, "frame width")
	pf.IntVar(&flagCfg.Height, "height", 0, "frame height")
	pf.IntVar(&flagCfg.MaxDepth, "max-depth", 0, "path length cap without Russian roulette")
	pf.IntVar(&flagCfg.LightSamples, "light-samples", 0, "light samples per diffuse bounce")
	pf.IntVar(&flagCfg.BVHBins, "bvh-bins", 0, "SAH bin count")
	pf.IntVar(&flagCfg.KernelSize, "kernel-size", -1, "denoiser kernel size (odd, 0 disables)")
	pf.IntVar(&flagCfg.Workers, "workers", 0, "render workers (0 = all cores)")
	pf.StringVar(&flagCfg.Sky, "sky", "", "environment map (.hdr or .bin)")
	pf.BoolVar(&flagCfg.UseSSAA, "ssaa", false, "4x supersampling")
	pf.BoolVar(&flagCfg.UseVignette, "vignette", false, "vignette post filter")
	pf.BoolVar(&flagCfg.VisualizeBVH, "visualize-bvh", false, "BVH traversal heatmap")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"pathtracer %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[pathtracer] "+format+"\n", args...)
	}
}

// buildConfig layers the defaults, the optional YAML file, and any
// explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command) (render.Config, error) {
	cfg := render.DefaultConfig()
	if configPath != "" {
		loaded, err := render.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = flagCfg.Width
	}
	if flags.Changed("height") {
		cfg.Height = flagCfg.Height
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = flagCfg.MaxDepth
	}
	if flags.Changed("light-samples") {
		cfg.LightSamples = flagCfg.LightSamples
	}
	if flags.Changed("bvh-bins") {
		cfg.BVHBins = flagCfg.BVHBins
	}
	if flags.Changed("kernel-size") {
		cfg.KernelSize = flagCfg.KernelSize
	}
	if flags.Changed("workers") {
		cfg.Workers = flagCfg.Workers
	}
	if flags.Changed("sky") {
		cfg.Sky = flagCfg.Sky
	}
	if flags.Changed("ssaa") {
		cfg.UseSSAA = flagCfg.UseSSAA
	}
	if flags.Changed("vignette") {
		cfg.UseVignette = flagCfg.UseVignette
	}
	if flags.Changed("visualize-bvh") {
		cfg.VisualizeBVH = flagCfg.VisualizeBVH
	}

	return cfg, cfg.Validate()
}

// buildScene loads the requested scene file or falls back to the demo
// room, then prepares the BVH and environment map.
func buildScene(args []string, cfg *render.Config) (*scene.Scene, error) {
	var sc *scene.Scene

	if len(args) == 0 {
		sc = scene.DefaultScene()
	} else {
		path := args[0]
		var err error

		sc = scene.NewScene()
		switch strings.ToLower(filepath.Ext(path)) {
		case ".obj":
			sc.Triangles, sc.Materials, err = scene.LoadOBJ(path, scene.NewTextureCache())
		case ".gltf", ".glb":
			sc.Triangles, sc.Materials, err = scene.LoadGLTF(path)
		default:
			err = fmt.Errorf("unsupported scene file %q (want .obj, .gltf or .glb)", path)
		}
		if err != nil {
			return nil, err
		}

		sc.Lights = []scene.Light{
			scene.NewLight(math.NewVec3(-5, 10, 0), 8, core.NewColor(50, 50, 50)),
		}
		sc.Camera = scene.NewCamera(math.NewVec3(-18, -15, -0.1), math.NewVec3(1, 0.25, 0))
	}

	if cfg.Sky != "" {
		sky, err := scene.LoadSkyDome(cfg.Sky)
		if err != nil {
			return nil, err
		}
		sc.Sky = sky
	}

	start := time.Now()
	sc.BuildBVH(cfg.BVHBins, cfg.UseBVH)
	if sc.BVH != nil {
		logVerbose("BVH over %d triangles: %d nodes in %s",
			len(sc.Triangles), sc.BVH.NodeCount-1, time.Since(start))
	}

	return sc, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := buildScene(args, &cfg)
	if err != nil {
		return err
	}

	win, err := core.NewWindow(core.WindowConfig{
		Width:  cfg.Width,
		Height: cfg.Height,
		Title:  "Path Tracer",
		VSync:  true,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	blit, err := opengl.NewBlitter(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer blit.Destroy()

	rend := render.NewRenderer(sc, cfg)
	ctl := newController()

	last := time.Now()
	fps := float32(0)

	for !win.ShouldClose() {
		win.PollEvents()
		if win.IsKeyPressed(core.KeyEscape) {
			break
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now
		if dt > 0 {
			fps = 0.9*fps + 0.1/dt
		}

		ctl.update(win, sc.Camera, dt)

		rend.RenderFrame()
		drawHUD(rend.Buffer, cfg.Width, cfg.Height, sc.Camera, rend.Acc.Frames, fps)

		blit.Present(rend.Buffer)
		win.SwapBuffers()
	}

	return nil
}
