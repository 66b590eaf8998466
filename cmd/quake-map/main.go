package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-quake-map/internal/config"
	"github.com/mr1hm/go-quake-map/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "quake-map",
	Short:         "Render USGS earthquakes onto an interactive map",
	Long:          "Fetches the USGS earthquake feed and tectonic plate boundaries and writes a Leaflet map colored by depth and sized by magnitude.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig runs before commands that fetch or write; legend and classify
// need no configuration.
func loadConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	logging.Setup(cfg.Logging.Level)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Fatalf("quake-map: %v", err)
	}
}
