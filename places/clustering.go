// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package places

// Cluster groups places lying within distanceThreshold meters of any member of
// the group. Order follows the input; singletons are returned as well.
func Cluster(places []*Place, distanceThreshold float64) [][]*Place {
	clusters := make([][]*Place, 0, len(places))

	visited := make([]bool, len(places))

	for i, p1 := range places {
		if visited[i] {
			continue
		}

		cluster := []*Place{p1}
		visited[i] = true

		// a member added late may pull in earlier candidates
		for grown := true; grown; {
			grown = false

			for j, p2 := range places {
				if visited[j] {
					continue
				}

				for _, member := range cluster {
					if p2.Point.HaversineDistance(&member.Point) <= distanceThreshold {
						cluster = append(cluster, p2)
						visited[j] = true
						grown = true

						break
					}
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

// Duplicates returns the clusters holding more than one place.
func Duplicates(places []*Place, distanceThreshold float64) [][]*Place {
	var dups [][]*Place

	for _, c := range Cluster(places, distanceThreshold) {
		if len(c) > 1 {
			dups = append(dups, c)
		}
	}

	return dups
}
