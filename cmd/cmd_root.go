// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "geomap",
	Short: "geocode places and draw them on maps",
	Long: `
geomap geocodes free form place queries, keeps the results in a local
database and renders them as markers on Leaflet or Google Maps pages.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadEnv(options.EnvFile)
	},
}

// loadEnv loads path into the environment. Variables already set win.
func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

var Version = "dev"

func Execute(version string) {
	Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&options.DbPath,
		"db-path",
		"db",
		"Base directory where the places database is kept",
	)
	rootCmd.PersistentFlags().StringVar(
		&options.Geocoder,
		"geocoder",
		providerNominatim,
		"Geocoding provider: nominatim or google",
	)
	rootCmd.PersistentFlags().StringVar(
		&options.Region,
		"region",
		"",
		"Region bias for the google geocoder, as a ccTLD (e.g. uy)",
	)
	rootCmd.PersistentFlags().StringVar(
		&options.EnvFile,
		"env-file",
		".env",
		"Environment file loaded before running, when present",
	)
	rootCmd.PersistentFlags().BoolVar(
		&options.Trace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&options.TraceBody,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
