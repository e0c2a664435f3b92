package render

import (
	"honours/internal/domain/config"
	"honours/internal/domain/sheet"
	"honours/internal/nav"
	"time"
)

// MainPage is everything main-page.tmpl sees.
type MainPage struct {
	Site     config.SiteConfig
	Options  map[string]string
	Profiles []sheet.Profile
	Orders   []sheet.Order
	Nav      []nav.Link
	// pixels the browser subtracts from a group's top when scrolling to it
	ScrollOffset int

	// "p" for production builds, "t" otherwise
	TrackingEnv string
	Generated   time.Time
}

func (p MainPage) Option(name string) string {
	return p.Options[name]
}
