package trajectory

import (
	"errors"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// ErrDistanceOutOfRange indicates a requested arc-length lies outside
// [0, polyline length], within isrcore.EpsLength.
var ErrDistanceOutOfRange = errors.New("trajectory: distance outside polyline length")

// PointAtDistance returns the point at arc-length d along points, linearly
// interpolating within whichever leg contains d. Used by package segment's
// cut operation to locate each vehicle's position along its current
// segment's delta at a given global distance.
func PointAtDistance(points []isrcore.Point, d float64) (isrcore.Point, error) {
	if len(points) == 0 {
		return isrcore.Point{}, ErrEmptyRoute
	}
	if d < -isrcore.EpsLength {
		return isrcore.Point{}, ErrDistanceOutOfRange
	}
	if len(points) == 1 {
		if d > isrcore.EpsLength {
			return isrcore.Point{}, ErrDistanceOutOfRange
		}
		return points[0], nil
	}

	remaining := d
	for i := 0; i+1 < len(points); i++ {
		legLen := points[i].DistanceTo(points[i+1])
		if remaining <= legLen+isrcore.EpsLength {
			if legLen <= isrcore.EpsGeom {
				return points[i], nil
			}
			t := remaining / legLen
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			return points[i].Add(points[i+1].Sub(points[i]).Scale(t)), nil
		}
		remaining -= legLen
	}
	return isrcore.Point{}, ErrDistanceOutOfRange
}

// Truncate returns the prefix of points ending exactly at arc-length d: every
// full leg before the cut, followed by the interpolated cut point (unless it
// coincides with the preceding vertex within EpsGeom). Used by package
// segment to discard a delta's tail past the cut distance.
func Truncate(points []isrcore.Point, d float64) ([]isrcore.Point, error) {
	cut, err := PointAtDistance(points, d)
	if err != nil {
		return nil, err
	}

	out := make([]isrcore.Point, 0, len(points))
	var consumed float64
	for i := 0; i+1 < len(points); i++ {
		out = append(out, points[i])
		legLen := points[i].DistanceTo(points[i+1])
		if consumed+legLen >= d-isrcore.EpsLength {
			if !points[i].AlmostEqual(cut) {
				out = append(out, cut)
			}
			return out, nil
		}
		consumed += legLen
	}
	out = append(out, points[len(points)-1])
	return out, nil
}
