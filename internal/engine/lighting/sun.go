// Package lighting provides lighting utilities for terrain rendering.
package lighting

import "math"

// SunDirection converts an azimuth (degrees clockwise from +Y, 0-360) and an elevation
// (degrees above the XY plane, 0-90) to a normalized vector pointing towards the sun.
// The world is Z-up.
func SunDirection(azimuth, elevation float32) [3]float32 {
	azRad := float64(azimuth) * math.Pi / 180.0
	elRad := float64(elevation) * math.Pi / 180.0

	x := float32(math.Cos(elRad) * math.Sin(azRad))
	y := float32(math.Cos(elRad) * math.Cos(azRad))
	z := float32(math.Sin(elRad))

	return [3]float32{x, y, z}
}
