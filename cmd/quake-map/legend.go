package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-quake-map/internal/depth"
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print the depth legend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printLegend(cmd.OutOrStdout(), depth.LegendEntries())
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Print the marker color and radius for a depth and magnitude",
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().Float64("depth", 0, "depth in km (negative above sea level)")
	classifyCmd.Flags().String("mag", "", "magnitude; empty means absent")
	_ = classifyCmd.MarkFlagRequired("depth")

	rootCmd.AddCommand(legendCmd)
	rootCmd.AddCommand(classifyCmd)
}

func printLegend(w io.Writer, entries []depth.LegendEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s  %s\n", e.Color, e.Label); err != nil {
			return err
		}
	}
	return nil
}

func runClassify(cmd *cobra.Command, _ []string) error {
	d, _ := cmd.Flags().GetFloat64("depth")
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("depth must be finite")
	}

	magFlag, _ := cmd.Flags().GetString("mag")
	mag, err := parseMagnitude(magFlag)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "color=%s radius=%s\n",
		depth.ColorForDepth(d),
		strconv.FormatFloat(depth.RadiusForMagnitude(mag), 'f', -1, 64),
	)
	return err
}

// parseMagnitude treats "" and "null" as an absent magnitude.
func parseMagnitude(s string) (*float64, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid magnitude %q: %w", s, err)
	}
	return &f, nil
}
