// Copyright 2025 The GeoMap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSource is returned when a value carries no usable coordinate.
var ErrUnsupportedSource = errors.New(
	"source must expose latitude and longitude or be indexable with two numeric elements")

// LatLng is implemented by anything exposing a named latitude and longitude.
type LatLng interface {
	Latitude() float64
	Longitude() float64
}

// Indexable is implemented by positional coordinate sources.
type Indexable interface {
	Len() int
	At(i int) any
}

// Named is implemented by sources that carry a human readable name.
type Named interface {
	Name() string
}

// Tuple is a positional coordinate source, e.g. Tuple{51.5, -0.1}.
type Tuple []any

// Len implements Indexable.
func (t Tuple) Len() int { return len(t) }

// At implements Indexable.
func (t Tuple) At(i int) any { return t[i] }

// Extract resolves a coordinate from source. Named latitude/longitude take
// precedence over positional elements; positional elements 0 and 1 must both be
// native numbers, numeric-looking strings are rejected. A nil pointer is
// unsupported rather than dereferenced.
func Extract(source any) (Point, error) {
	switch s := source.(type) {
	case *Point:
		if s == nil {
			break
		}

		return *s, nil
	case LatLng:
		return Point{Lat: s.Latitude(), Lng: s.Longitude()}, nil
	case Indexable:
		if s.Len() < 2 {
			break
		}

		return pair(source, s.At(0), s.At(1))
	case []any:
		if len(s) < 2 {
			break
		}

		return pair(source, s[0], s[1])
	case []float64:
		return numbers(source, s)
	case []float32:
		return numbers(source, s)
	case []int:
		return numbers(source, s)
	case []int8:
		return numbers(source, s)
	case []int16:
		return numbers(source, s)
	case []int32:
		return numbers(source, s)
	case []int64:
		return numbers(source, s)
	case []uint:
		return numbers(source, s)
	case []uint16:
		return numbers(source, s)
	case []uint32:
		return numbers(source, s)
	case []uint64:
		return numbers(source, s)
	case [2]float64:
		return numbers(source, s[:])
	case [2]float32:
		return numbers(source, s[:])
	case [2]int:
		return numbers(source, s[:])
	case [2]int32:
		return numbers(source, s[:])
	case [2]int64:
		return numbers(source, s[:])
	}

	return Point{}, fmt.Errorf("%w: got %T", ErrUnsupportedSource, source)
}

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func numbers[T number](source any, s []T) (Point, error) {
	if len(s) < 2 {
		return Point{}, fmt.Errorf("%w: %T has %d elements", ErrUnsupportedSource, source, len(s))
	}

	return Point{Lat: float64(s[0]), Lng: float64(s[1])}, nil
}

func pair(source, lat, lng any) (Point, error) {
	la, okLat := toFloat(lat)
	lo, okLng := toFloat(lng)

	if !okLat || !okLng {
		return Point{}, fmt.Errorf("%w: %T holds (%T, %T)", ErrUnsupportedSource, source, lat, lng)
	}

	return Point{Lat: la, Lng: lo}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
