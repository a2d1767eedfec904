// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/geomap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
