package main

import (
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-quake-map/internal/depth"
	"github.com/mr1hm/go-quake-map/internal/feed"
	"github.com/mr1hm/go-quake-map/internal/models"
	"github.com/mr1hm/go-quake-map/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short:   "Fetch the feeds and write the map page",
	PreRunE: loadConfig,
	RunE:    runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "output HTML path (overrides OUTPUT_PATH)")
	renderCmd.Flags().Bool("no-plates", false, "skip the tectonic plates overlay")
	renderCmd.Flags().String("geojson", "", "also write the styled earthquakes as GeoJSON to this path")
	renderCmd.Flags().String("title", "Earthquakes - Past 7 Days", "page title")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Output.Path = out
	}
	if noPlates, _ := cmd.Flags().GetBool("no-plates"); noPlates {
		cfg.Feeds.PlatesEnabled = false
	}
	title, _ := cmd.Flags().GetString("title")
	geojsonPath, _ := cmd.Flags().GetString("geojson")

	m := render.NewMap(
		models.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLon},
		cfg.Map.Zoom,
		render.DefaultBaseLayers(),
	)
	m.SetLegend(render.NewLegend(depth.LegendEntries()))

	loader := feed.NewLoader(cfg, &http.Client{})
	subscribeLayers(loader, m)
	if geojsonPath != "" {
		loader.Subscribe(feed.LayerEarthquakes, func(res feed.Result) {
			if !res.OK() {
				return
			}
			if err := render.WriteGeoJSON(geojsonPath, res.Earthquakes); err != nil {
				slog.Error("geojson export failed", "path", geojsonPath, "error", err)
				return
			}
			slog.Info("geojson written", "path", geojsonPath, "count", len(res.Earthquakes))
		})
	}

	err := loader.Start(ctx)
	if err == nil {
		err = loader.Wait(ctx)
	}
	loader.Stop()
	if err != nil {
		return err
	}

	if err := m.WritePage(cfg.Output.Path, title); err != nil {
		return err
	}

	slog.Info("map written", "path", cfg.Output.Path, "overlays", len(m.Overlays()))
	return nil
}

// subscribeLayers adds each layer to m as soon as its own fetch completes.
// A failed fetch leaves its overlay off the map.
func subscribeLayers(loader *feed.Loader, m *render.Map) {
	loader.Subscribe(feed.LayerEarthquakes, func(res feed.Result) {
		if !res.OK() {
			slog.Warn("earthquake layer skipped", "error", res.Err)
			return
		}
		m.AddOverlay(render.EarthquakeLayer(res.Earthquakes))
	})
	loader.Subscribe(feed.LayerPlates, func(res feed.Result) {
		if !res.OK() {
			slog.Warn("plates layer skipped", "error", res.Err)
			return
		}
		m.AddOverlay(render.PlatesLayer(res.Plates))
	})
}
