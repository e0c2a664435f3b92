package fetch

import (
	"honours/internal/domain/sheet"
	"net/url"
	"sort"
	"strings"
)

// Reshape folds ranks and recipients into their orders.
//
// A rank belongs to the order whose id equals the rank's order column. A
// recipient belongs to every rank whose male or female award name equals the
// recipient's award, grouped into divisions by name ("" when unnamed). Ranks
// without recipients are dropped, then orders without ranks.
func Reshape(p sheet.Payload) sheet.Document {
	orders := make([]sheet.Order, 0, len(p.Orders))
	for _, o := range p.Orders {
		var ranks []sheet.Rank
		for _, r := range p.Ranks {
			if !sheet.SameValue(r.Order, o.ID) {
				continue
			}
			r = attachRecipients(r, p.Recipients)
			if r.Count > 0 {
				ranks = append(ranks, r)
			}
		}
		if len(ranks) == 0 {
			continue
		}
		o.Ranks = ranks
		orders = append(orders, o)
	}

	profiles := make([]sheet.Profile, 0, len(p.Profiles))
	for _, pr := range p.Profiles {
		profiles = append(profiles, encodeProfile(pr))
	}

	options := make(map[string]string, len(p.Options))
	for _, opt := range p.Options {
		options[opt.Name] = sheet.Text(opt.Value)
	}

	return sheet.Document{
		Options:  options,
		Profiles: profiles,
		Orders:   orders,
	}
}

func attachRecipients(r sheet.Rank, recipients []sheet.Recipient) sheet.Rank {
	byName := make(map[string][]sheet.Recipient)
	count := 0
	for _, rc := range recipients {
		if !r.Matches(rc) {
			continue
		}
		byName[rc.Division] = append(byName[rc.Division], rc)
		count++
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	// plain byte-wise order; "" sorts first
	sort.Strings(names)

	divisions := make([]sheet.Division, 0, len(names))
	for _, name := range names {
		divisions = append(divisions, sheet.Division{Name: name, Recipients: byName[name]})
	}

	r.Count = count
	r.Divisions = divisions
	return r
}

// encodeProfile replaces imageurl with its URI-component-encoded form.
func encodeProfile(p sheet.Profile) sheet.Profile {
	out := make(sheet.Profile, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out["imageURLEncoded"] = EncodeURIComponent(p.Get("imageurl"))
	delete(out, "imageurl")
	return out
}

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does:
// everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is percent-encoded.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentFixups.Replace(escaped)
}

var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
