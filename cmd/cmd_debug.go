// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jcodagnone/geomap/geocoding"
	"github.com/jcodagnone/geomap/mapping"
	"github.com/jcodagnone/geomap/spatial"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugNormalizeContentType string

var debugNormalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Flatten an XML geocoder response into JSON",
	Long: `Reads an XML geocoder response from a file or from stdin and prints the
collected fields, attributes and coordinate.

$ curl -s 'https://nominatim.openstreetmap.org/search?q=soho&format=xml' | geomap debug normalize`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := cmd.InOrStdin()

		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("error opening file: %w", err)
			}
			defer f.Close()

			r = f
		} else if f, ok := r.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			fmt.Fprintln(os.Stderr, "Reading from stdin. Paste XML and press Ctrl+D to finish.")
		}

		raw, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}

		resp, err := geocoding.NormalizeBytes(raw, debugNormalizeContentType)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var debugWidgetProvider string

var debugWidgetCmd = &cobra.Command{
	Use:   "widget [lat lng]",
	Short: "Print a test map page with a single marker",
	Args:  cobra.MatchAll(cobra.MaximumNArgs(2), validCoordinateArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		var apiKey string
		if debugWidgetProvider == mapping.ProviderGoogle {
			apiKey = os.Getenv(geocoding.APIKeyEnv)
		}

		w, err := mapping.NewWidget(debugWidgetProvider, apiKey, nil)
		if err != nil {
			return err
		}

		location := spatial.Point{Lat: 20, Lng: 22}
		if len(args) == 2 {
			if location, err = parsePoint(args[0], args[1]); err != nil {
				return err
			}
		}

		if err := w.ForLocation(location, true, "Test marker"); err != nil {
			return err
		}

		page, err := w.RenderPage()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), page)

		return err
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugNormalizeCmd)
	debugCmd.AddCommand(debugWidgetCmd)
	debugNormalizeCmd.Flags().StringVar(
		&debugNormalizeContentType,
		"content-type",
		"",
		"Content-Type of the input, used to pick its charset",
	)
	debugWidgetCmd.Flags().StringVar(
		&debugWidgetProvider,
		"provider",
		mapping.ProviderLeaflet,
		"Map widget provider: leaflet or google",
	)
}
