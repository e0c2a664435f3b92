package nav

// Tracker holds the nav state between scroll events.
type Tracker struct {
	stuck   bool
	current int
	has     bool
}

// Change describes what an Update did to the tracker.
type Change struct {
	Stuck        bool
	StuckChanged bool

	// Current is meaningful only when HasCurrent is set.
	Current        int
	HasCurrent     bool
	CurrentChanged bool
}

func (t *Tracker) Stuck() bool { return t.stuck }

// Current returns the highlighted group, if any.
func (t *Tracker) Current() (int, bool) { return t.current, t.has }

// Update applies one scroll or load event. navTop is the nav bar's
// placeholder top relative to the viewport.
func (t *Tracker) Update(navTop float64, groups []Rect, viewport float64) Change {
	var c Change

	switch {
	case !t.stuck && navTop <= 0:
		t.stuck = true
		c.StuckChanged = true
	case t.stuck && navTop > 0:
		t.stuck = false
		c.StuckChanged = true
	}

	prev, hadPrev := t.current, t.has
	if t.stuck {
		t.current, t.has = MostVisible(groups, viewport)
	} else {
		t.current, t.has = 0, false
	}
	if !t.has {
		t.current = 0
	}

	c.Stuck = t.stuck
	c.Current, c.HasCurrent = t.current, t.has
	c.CurrentChanged = hadPrev != t.has || (t.has && prev != t.current)
	return c
}
