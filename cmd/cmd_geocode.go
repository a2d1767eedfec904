// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"strings"

	"github.com/jcodagnone/geomap/geocoding"
	"github.com/spf13/cobra"
)

var geocodeRaw bool

var geocodeCmd = &cobra.Command{
	Use:   "geocode <query>",
	Short: "Geocode a place and print the result as JSON",
	Long: `Geocodes a free form query with the selected provider.

With --raw the whole provider response is printed, flattened into fields and
attributes. Only XML providers (nominatim) support it.

$ geomap geocode "Plaza Independencia, Montevideo"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		geocoder, err := options.newGeocoder(cmd.Context())
		if err != nil {
			return err
		}

		if !geocodeRaw {
			result, err := geocoder.Geocode(cmd.Context(), query)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		}

		raw, ok := geocoder.(geocoding.RawGeocoder)
		if !ok {
			return errors.New("--raw is only supported by the nominatim geocoder")
		}

		resp, err := raw.GeocodeRaw(cmd.Context(), query)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.Flags().BoolVar(&geocodeRaw, "raw", false, "Print the normalized provider response")
}
