// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/geomap/places"
	"github.com/jcodagnone/geomap/spatial"
	"github.com/jcodagnone/geomap/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const placesFile = "places.json"

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Manage saved places",
}

var placesAddName string

var placesAddCmd = &cobra.Command{
	Use:   "add <query> [lat lng]",
	Short: "Geocode a query and save it, or save it at the given coordinates",
	Long: `Geocodes query with the selected provider and saves the result. When a
latitude and a longitude are given the place is saved there without geocoding.
Separate negative coordinates with --:

$ geomap places add --name Plaza "Plaza Independencia" -- -34.9065 -56.1998`,
	Args:  cobra.MatchAll(cobra.RangeArgs(1, 3), validAddArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		query := places.SanitizeQuery(args[0])

		var place *places.Place
		if len(args) == 3 {
			point, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}

			place = &places.Place{Query: query, Point: point, Provider: "manual", Confidence: "high"}
		} else {
			geocoder, err := options.newGeocoder(cmd.Context())
			if err != nil {
				return err
			}

			result, err := geocoder.Geocode(cmd.Context(), query)
			if err != nil {
				return err
			}

			place = places.FromResult(query, result)
		}

		if placesAddName != "" {
			place.DisplayName = placesAddName
		}

		if err := places.Validate(place); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		if err := repo.Save(place); err != nil {
			return fmt.Errorf("saving place: %w", err)
		}

		return printJSON(cmd.OutOrStdout(), place)
	},
}

var placesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved places",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		list, err := repo.List(0, 0)
		if err != nil {
			return fmt.Errorf("listing places: %w", err)
		}

		printPlaces(cmd.OutOrStdout(), list)

		return nil
	},
}

var placesNearRings int

var placesNearCmd = &cobra.Command{
	Use:   "near <lat> <lng>",
	Short: "List saved places near a coordinate, nearest first",
	Long: `Lists saved places within --rings H3 cells of the coordinate, nearest first.
Separate negative coordinates with --:

$ geomap places near -- -34.9070 -56.2010`,
	Args:  cobra.MatchAll(cobra.ExactArgs(2), validCoordinateArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		point, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}

		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		list, err := repo.ListNear(point, placesNearRings)
		if err != nil {
			return fmt.Errorf("listing places near %s: %w", point, err)
		}

		printPlaces(cmd.OutOrStdout(), list)

		return nil
	},
}

var placesDeleteCmd = &cobra.Command{
	Use:   "delete <query>",
	Short: "Delete a saved place",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		return repo.Delete(args[0])
	},
}

var placesDuplicatesMeters float64

var placesDuplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List groups of places closer than --meters to each other",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		list, err := repo.List(0, 0)
		if err != nil {
			return fmt.Errorf("listing places: %w", err)
		}

		dups := places.Duplicates(list, placesDuplicatesMeters)
		for i, cluster := range dups {
			fmt.Fprintf(cmd.OutOrStdout(), "Cluster %d\n", i+1)
			printPlaces(cmd.OutOrStdout(), cluster)
		}

		log.Printf("Found %d clusters of places within %.1fm", len(dups), placesDuplicatesMeters)

		return nil
	},
}

var importOptions = struct {
	Delay   time.Duration
	Refresh bool
}{}

var placesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Geocode and save every query of a file, one per line",
	Long: `Geocodes every line of file (or stdin when file is -) and saves the results.
Blank lines and lines starting with # are ignored. Queries already saved are
skipped unless --refresh is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("error opening file: %w", err)
			}
			defer f.Close()

			r = f
		}

		queries, err := places.ReadQueries(r)
		if err != nil {
			return err
		}

		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		geocoder, err := options.newGeocoder(cmd.Context())
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(queries),
				progressbar.OptionSetDescription("Geocoding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		im := places.NewImporter(repo, geocoder)
		im.Delay = importOptions.Delay
		im.Refresh = importOptions.Refresh
		im.OnQuery = func(query string, err error) {
			switch {
			case err != nil && !errors.Is(err, places.ErrAlreadySaved):
				log.Printf("Geocoding %q failed - %s", query, err)
			case bar == nil:
				log.Printf("Geocoded %q", query)
			}

			if bar != nil {
				if err := bar.Add(1); err != nil {
					log.Printf("updating progress bar for %q: %s", query, err)
				}
			}
		}

		err = im.Import(cmd.Context(), queries)

		log.Printf(
			"Import complete - %s saved, %s skipped, %s failed from %s queries",
			textutils.FormatInt(int64(im.Metrics.Saved)),
			textutils.FormatInt(int64(im.Metrics.Skipped)),
			textutils.FormatInt(int64(im.Metrics.Failed)),
			textutils.FormatInt(int64(im.Metrics.Total)),
		)

		return err
	},
}

var placesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export saved places to a JSON file",
	Long:  `Exports every saved place to a JSON file, sorted by query to minimize diffs when checking into version control.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := placesFile
		if len(args) > 0 {
			path = args[0]
		}

		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		list, err := repo.List(0, 0)
		if err != nil {
			return fmt.Errorf("listing places: %w", err)
		}

		slices.SortFunc(list, func(a, b *places.Place) int {
			return strings.Compare(textutils.QueryKey(a.Query), textutils.QueryKey(b.Query))
		})

		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling places: %w", err)
		}

		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing places file: %w", err)
		}

		log.Printf("Exported %s places to %s", textutils.FormatInt(int64(len(list))), path)

		return nil
	},
}

var placesLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load places from a JSON file written by export",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := placesFile
		if len(args) > 0 {
			path = args[0]
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading places file: %w", err)
		}

		var list []*places.Place
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("unmarshaling places: %w", err)
		}

		repo, closer, err := options.openRepository()
		if err != nil {
			return err
		}
		defer closer.Close()

		for _, p := range list {
			if err := places.Validate(p); err != nil {
				return fmt.Errorf("place %q: %w", p.Query, err)
			}

			if err := repo.Save(p); err != nil {
				return fmt.Errorf("saving place %q: %w", p.Query, err)
			}
		}

		log.Printf("Loaded %s places from %s", textutils.FormatInt(int64(len(list))), path)

		return nil
	},
}

func printPlaces(w io.Writer, list []*places.Place) {
	a, b, c := strings.Repeat("─", 24), strings.Repeat("─", 24), strings.Repeat("─", 40)
	fmt.Fprintf(w, "╭─%-24s─┬─%-24s─┬─%-40s─╮\n", a, b, c)
	fmt.Fprintf(w, "│ %-24s │ %-24s │ %-40s │\n", "Query", "Coordinate", "Name")
	fmt.Fprintf(w, "├─%-24s─┼─%-24s─┼─%-40s─┤\n", a, b, c)

	for _, p := range list {
		fmt.Fprintf(w, "│ %-24s │ %11.6f,%12.6f │ %-40s │\n",
			truncate(p.Query, 24), p.Point.Lat, p.Point.Lng, truncate(p.Name(), 40))
	}

	fmt.Fprintf(w, "╰─%-24s─┴─%-24s─┴─%-40s─╯\n", a, b, c)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func parsePoint(lat, lng string) (spatial.Point, error) {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("invalid latitude %q", lat)
	}

	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("invalid longitude %q", lng)
	}

	if err := places.ValidateCoordinates(latitude, longitude); err != nil {
		return spatial.Point{}, err
	}

	return spatial.Point{Lat: latitude, Lng: longitude}, nil
}

// validCoordinateArgs accepts no arguments or a latitude and a longitude.
func validCoordinateArgs(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 2:
		_, err := parsePoint(args[0], args[1])

		return err
	default:
		return errors.New("expected a latitude and a longitude")
	}
}

func validAddArgs(cmd *cobra.Command, args []string) error {
	return validCoordinateArgs(cmd, args[1:])
}

func init() {
	rootCmd.AddCommand(placesCmd)
	placesCmd.AddCommand(placesAddCmd)
	placesCmd.AddCommand(placesListCmd)
	placesCmd.AddCommand(placesNearCmd)
	placesCmd.AddCommand(placesDeleteCmd)
	placesCmd.AddCommand(placesDuplicatesCmd)
	placesCmd.AddCommand(placesImportCmd)
	placesCmd.AddCommand(placesExportCmd)
	placesCmd.AddCommand(placesLoadCmd)

	placesAddCmd.Flags().StringVar(&placesAddName, "name", "", "Display name of the place")
	placesNearCmd.Flags().IntVar(&placesNearRings, "rings", 1, "Number of H3 rings around the coordinate to search")
	placesDuplicatesCmd.Flags().Float64Var(&placesDuplicatesMeters, "meters", 10, "Distance threshold in meters")
	placesImportCmd.Flags().DurationVar(
		&importOptions.Delay,
		"delay",
		time.Second,
		"Minimum time between two geocoder requests (Nominatim allows one per second)",
	)
	placesImportCmd.Flags().BoolVar(&importOptions.Refresh, "refresh", false, "Geocode queries that are already saved")
}
