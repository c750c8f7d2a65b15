package main

import (
	"fmt"
	"os"

	"property-explorer/internal/config"
	"property-explorer/internal/imagery"
	"property-explorer/internal/interaction"
	"property-explorer/internal/logger"
	"property-explorer/internal/scene"
	"property-explorer/internal/visual"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgPath  string
	verbose  bool
	feedPath string

	// Set by PersistentPreRunE.
	cfg config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Score-driven 3D property explorer",
	Long: `explorer places each property of a feed in a 3D scene at a height given by its
match score, shows street-level or overhead imagery on it depending on the camera
angle, and opens a detail panel for the property you click.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		log, err = logger.New(logger.Options{Level: level, File: cfg.Logging.File, Console: true})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&feedPath, "feed", "f", "", "Property feed file (YAML)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(prefetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func googleOptions(c config.Config) imagery.GoogleOptions {
	gl := c.Imagery.GroundLevel
	return imagery.GoogleOptions{
		APIKey:         c.Imagery.APIKey,
		StreetViewURL:  c.Imagery.StreetViewURL,
		StaticMapURL:   c.Imagery.StaticMapURL,
		Width:          gl.Width,
		Height:         gl.Height,
		FOV:            gl.FOV,
		Heading:        gl.Heading,
		Pitch:          gl.Pitch,
		Zoom:           c.Imagery.Overhead.Zoom,
		Timeout:        c.Imagery.Timeout,
		MaxTextureSize: c.Imagery.MaxTextureSize,
		CacheDir:       c.Imagery.CacheDir,
	}
}

func sceneOptions(c config.Config) scene.Options {
	s := c.Scene
	return scene.Options{
		Visual: visual.Options{
			Size:        rl.NewVector3(s.HouseSize[0], s.HouseSize[1], s.HouseSize[2]),
			RodRadius:   s.RodRadius,
			LabelOffset: s.LabelOffset,
			LabelSize:   visual.DefaultOptions().LabelSize,
		},
		MaxHeight:        s.MaxHeight,
		LayoutRadius:     s.LayoutRadius,
		OverheadPitchDeg: c.Switcher.OverheadPitchDeg,
		HysteresisDeg:    c.Switcher.HysteresisDeg,
		BobAmplitude:     s.Bob,
	}
}

func interactionOptions(c config.Config) interaction.Options {
	o := interaction.DefaultOptions()
	if c.Interaction.ExplodeDuration > 0 {
		o.Duration = c.Interaction.ExplodeDuration
	}
	off := c.Interaction.CameraOffset
	if off != [3]float32{} {
		o.CameraOffset = rl.NewVector3(off[0], off[1], off[2])
	}
	return o
}
