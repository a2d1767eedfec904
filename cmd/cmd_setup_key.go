// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/jcodagnone/geomap/geocoding"
	"github.com/spf13/cobra"
)

var setupKeyProject string

var setupKeyCmd = &cobra.Command{
	Use:   "setup-key",
	Short: "Create the Google Maps API key in a GCP project when missing",
	Long: `Looks up the API key named "` + geocoding.APIKeyDisplayName + `" with the application
default credentials and creates it, restricted to the geocoding and maps APIs,
when the project has none. The key is printed so it can be exported as
` + geocoding.APIKeyEnv + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, created, err := geocoding.EnsureAPIKey(
			cmd.Context(),
			setupKeyProject,
			geocoding.APIKeyDisplayName,
			geocoding.MapsServices,
		)
		if err != nil {
			return err
		}

		if created {
			log.Printf("Created API key '%s'", geocoding.APIKeyDisplayName)
		} else {
			log.Printf("API key '%s' already exists", geocoding.APIKeyDisplayName)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "export %s=%q\n", geocoding.APIKeyEnv, key)

		return err
	},
}

func init() {
	rootCmd.AddCommand(setupKeyCmd)
	setupKeyCmd.Flags().StringVar(&setupKeyProject, "project", "", "GCP project, defaults to the one of the default credentials")
}
