package nav

import (
	"honours/internal/domain/sheet"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewport = 800

func rect(top, height float64) Rect {
	return Rect{Top: top, Bottom: top + height, Height: height}
}

func TestVisibleHeight(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want float64
	}{
		{"fully on screen", rect(100, 200), 200},
		{"off the top", rect(-500, 200), 0},
		{"leaving the top", rect(-50, 200), 150},
		{"leaving the bottom", rect(700, 300), 100},
		{"below the fold", rect(800, 300), 0},
		{"covers viewport", rect(-100, 2000), viewport},
		{"touching bottom edge", rect(600, 200), 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibleHeight(tt.r, viewport))
		})
	}
}

func TestMostVisibleShortCircuits(t *testing.T) {
	groups := []Rect{
		rect(-10, 200),  // 95% visible, first above 0.9
		rect(190, 300),  // fully visible
		rect(490, 1000), // partly
	}
	i, ok := MostVisible(groups, viewport)
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestMostVisibleHighestRatio(t *testing.T) {
	groups := []Rect{
		rect(-900, 1000), // 10%
		rect(100, 2000),  // 35%
		rect(-1500, 1600), // 6.25%
	}
	i, ok := MostVisible(groups, viewport)
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestMostVisibleTieGoesToLowerIndex(t *testing.T) {
	groups := []Rect{
		rect(-1800, 2000), // 10%
		rect(780, 200),    // 10%
	}
	i, ok := MostVisible(groups, viewport)
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestMostVisibleNoneVisible(t *testing.T) {
	_, ok := MostVisible([]Rect{rect(-500, 100), rect(900, 100)}, viewport)
	assert.False(t, ok)

	_, ok = MostVisible(nil, viewport)
	assert.False(t, ok)
}

func TestTrackerSticksAndHighlights(t *testing.T) {
	var tr Tracker
	groups := []Rect{rect(0, 300), rect(300, 2000)}

	c := tr.Update(50, groups, viewport)
	assert.False(t, c.Stuck)
	assert.False(t, c.StuckChanged)
	assert.False(t, c.HasCurrent)

	c = tr.Update(0, groups, viewport)
	assert.True(t, c.Stuck)
	assert.True(t, c.StuckChanged)
	require.True(t, c.HasCurrent)
	assert.Equal(t, 0, c.Current)
	assert.True(t, c.CurrentChanged)

	c = tr.Update(-10, []Rect{rect(-400, 300), rect(-100, 2000)}, viewport)
	assert.False(t, c.StuckChanged)
	assert.Equal(t, 1, c.Current)
	assert.True(t, c.CurrentChanged)

	c = tr.Update(-10, []Rect{rect(-400, 300), rect(-120, 2000)}, viewport)
	assert.False(t, c.CurrentChanged)

	c = tr.Update(5, groups, viewport)
	assert.False(t, c.Stuck)
	assert.True(t, c.StuckChanged)
	assert.False(t, c.HasCurrent)
	assert.True(t, c.CurrentChanged)
	assert.False(t, tr.Stuck())
	_, has := tr.Current()
	assert.False(t, has)
}

func TestScrollTarget(t *testing.T) {
	assert.Equal(t, float64(1210), ScrollTarget(300, 1000))
	assert.Equal(t, float64(-90), ScrollTarget(0, 0))
}

func TestLinks(t *testing.T) {
	orders := []sheet.Order{
		{ID: 1.0, Fields: sheet.Fields{"name": "Order of the British Empire", "shortname": "British Empire"}},
		{ID: 2.0, Fields: sheet.Fields{"name": "Order of the Bath"}},
		{ID: 3.0, Fields: sheet.Fields{"name": "Order of the Bath"}},
		{ID: 4.0},
	}
	links := Links(orders)
	require.Len(t, links, 4)
	assert.Equal(t, Link{Label: "British Empire", Anchor: "group-british-empire", Index: 0}, links[0])
	assert.Equal(t, "group-order-of-the-bath", links[1].Anchor)
	assert.Equal(t, "group-order-of-the-bath-2", links[2].Anchor)
	assert.Equal(t, "4", links[3].Label)
	assert.Equal(t, "group-4", links[3].Anchor)
}
