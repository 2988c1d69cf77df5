package main

import (
	"context"
	"flag"
	"os"

	"github.com/df07/voxel-timelapse/pkg/config"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/timelapse"
	"github.com/df07/voxel-timelapse/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	configPath := flag.String("config", "", "YAML run configuration")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := core.NewDefaultLogger("web", *debug)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Errorf("Loading config: %v", err)
			os.Exit(1)
		}
	}

	driver, err := timelapse.FromConfig(context.Background(), cfg, logger)
	if err != nil {
		logger.Errorf("Building scene: %v", err)
		os.Exit(1)
	}

	webServer := server.NewServer(*port, cfg, driver, logger)

	logger.Infof("Voxel Timelapse Web Server")
	logger.Infof("Visit http://localhost:%d to preview frames", *port)

	if err := webServer.Start(); err != nil {
		logger.Errorf("Error starting server: %v", err)
		os.Exit(1)
	}
}
