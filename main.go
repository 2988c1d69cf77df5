package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/df07/voxel-timelapse/pkg/config"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/timelapse"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, renders the timelapse and writes the frames
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, help, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	if help {
		printHelp(stdout)
		return nil
	}

	logger := core.NewWriterLogger("voxel-timelapse", cfg.Debug, stdout, stderr)

	driver, err := timelapse.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	writer := timelapse.WriterFromConfig(cfg, logger)
	if err := driver.Run(ctx, writer); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish output: %w", err)
	}

	logger.Infof("Frames saved in %s", cfg.Output.Dir)
	return nil
}

// parseArgs loads the optional config file and applies the flags that were set on top
func parseArgs(args []string, stderr io.Writer) (config.Config, bool, error) {
	fs := flag.NewFlagSet("voxel-timelapse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML run configuration")
	width := fs.Int("width", 0, "Image width in pixels")
	height := fs.Int("height", 0, "Image height in pixels")
	fps := fs.Float64("fps", 0, "Frames per second")
	duration := fs.Float64("duration", 0, "Seconds of footage")
	frames := fs.Int("frames", 0, "Exact frame count, overrides fps × duration")
	workers := fs.Int("workers", 0, "Number of parallel workers (0 = use CPU count)")
	tile := fs.Int("tile", 0, "Square tile size in pixels")
	depth := fs.Int("depth", 0, "Reflection bounces")
	samples := fs.Int("samples", 0, "Stratified samples per axis (N² rays per pixel)")
	out := fs.String("out", "", "Output directory")
	formats := fs.String("format", "", "Comma separated output formats: bmp, png, gif")
	dayStart := fs.Float64("day-start", 0, "Time of day of the first frame (0 midnight, 0.5 noon)")
	dayCycles := fs.Float64("day-cycles", 0, "Days elapsed over the run")
	clock := fs.Bool("clock", false, "Draw the time of day on each frame")
	debug := fs.Bool("debug", false, "Enable debug logging")
	help := fs.Bool("help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, false, err
	}
	if *help {
		return config.Config{}, true, nil
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return config.Config{}, false, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "fps":
			cfg.FPS = *fps
		case "duration":
			cfg.Duration = *duration
		case "frames":
			cfg.Frames = *frames
		case "workers":
			cfg.Render.Workers = *workers
		case "tile":
			cfg.Render.TileWidth, cfg.Render.TileHeight = *tile, *tile
		case "depth":
			cfg.Render.MaxDepth = *depth
		case "samples":
			cfg.Render.SamplesPerAxis = *samples
		case "out":
			cfg.Output.Dir = *out
		case "format":
			cfg.Output.Formats = splitList(*formats)
		case "day-start":
			cfg.Day.Start = *dayStart
		case "day-cycles":
			cfg.Day.Cycles = *dayCycles
		case "clock":
			cfg.Output.Clock = *clock
		case "debug":
			cfg.Debug = *debug
		}
	})

	return cfg, false, cfg.Validate()
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(strings.ToLower(item)); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Voxel Timelapse")
	fmt.Fprintln(w, "Renders a voxel house through a day/night cycle while the camera orbits it.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: voxel-timelapse [-config run.yaml] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags override values from the config file. Frames are written to")
	fmt.Fprintln(w, "<out>/frame_NNNN.<format>; the gif format writes <out>/timelapse.gif.")
	fmt.Fprintln(w, "Run with -h to list every flag.")
}
