// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geomap/geocoding"
	"github.com/jcodagnone/geomap/mapping"
	"github.com/jcodagnone/geomap/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveOptions = server.Options{}
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the map web server (local only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		geocoder, err := options.newGeocoder(cmd.Context())
		if err != nil {
			return err
		}

		if serveOptions.Provider == mapping.ProviderGoogle {
			key, err := geocoding.ResolveAPIKey(cmd.Context(), geocoding.APIKeyEnv, geocoding.APIKeyDisplayName)
			if err != nil {
				return fmt.Errorf("google maps widgets need an API key: %w", err)
			}
			serveOptions.APIKey = key
		}

		if !serveOptions.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		log.Printf("Geocoding with %s, open http://%s/map in your browser", options.Geocoder, serveAddr)

		return server.NewServer(repo, geocoder, serveOptions).Run(serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&serveOptions.Debug, "debug", false, "Enable the /debug routes")
	serveCmd.Flags().StringVar(
		&serveOptions.Provider,
		"provider",
		mapping.ProviderLeaflet,
		"Map widget provider: leaflet or google",
	)
}
