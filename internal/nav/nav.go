// Package nav models the sticky section navigation: when the bar sticks to
// the top of the viewport, and which content group it highlights.
//
// Everything here is pure. client/scripts/main.js runs the same
// computations in the browser; the page hands it HeaderHeight as the
// nav's data-scroll-offset.
package nav

import "math"

// HeaderHeight is the fixed header offset subtracted when scrolling to a group.
const HeaderHeight = 90

// short-circuit ratio: a group this visible wins without looking further
const mostlyVisible = 0.9

// Rect is a bounding box relative to the viewport top.
type Rect struct {
	Top    float64
	Bottom float64
	Height float64
}

// VisibleHeight returns how much of r falls inside a viewport of the given height.
func VisibleHeight(r Rect, viewport float64) float64 {
	switch {
	case r.Top < 0:
		if r.Bottom < 0 {
			// scrolled off the top
			return 0
		}
		return math.Min(r.Height+r.Top, viewport)
	case r.Top < viewport:
		if r.Bottom < viewport {
			return r.Height
		}
		return viewport - r.Top
	default:
		// below the fold
		return 0
	}
}

// Ratio is the visible share of r, 0 for an empty rect.
func Ratio(r Rect, viewport float64) float64 {
	if r.Height <= 0 {
		return 0
	}
	return VisibleHeight(r, viewport) / r.Height
}

// MostVisible picks the group to highlight. The first group more than 90%
// visible wins outright; otherwise the highest ratio wins and ties go to
// the lower index. ok is false when no group is visible at all.
func MostVisible(groups []Rect, viewport float64) (index int, ok bool) {
	best, bestRatio := -1, 0.0
	for i, g := range groups {
		ratio := Ratio(g, viewport)
		if ratio > mostlyVisible {
			return i, true
		}
		if ratio > bestRatio {
			best, bestRatio = i, ratio
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// ScrollTarget is the document offset to scroll to so that a group whose
// top is at groupTop (viewport-relative) lands just below the header.
func ScrollTarget(groupTop, pageYOffset float64) float64 {
	return groupTop + pageYOffset - HeaderHeight
}
