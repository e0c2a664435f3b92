package nav

import (
	"honours/internal/domain/sheet"
	"strconv"
	"strings"
	"unicode"
)

// Link is one entry of the rendered nav bar.
type Link struct {
	Label  string
	Anchor string
	Index  int
}

// Links builds one nav link per order group, in document order. The label
// prefers the order's short name column when the sheet has one.
func Links(orders []sheet.Order) []Link {
	out := make([]Link, 0, len(orders))
	seen := make(map[string]int)
	for i, o := range orders {
		label := o.Get("shortname")
		if label == "" {
			label = o.Get("name")
		}
		if label == "" {
			label = sheet.Text(o.ID)
		}
		anchor := Anchor(label)
		if n := seen[anchor]; n > 0 {
			seen[anchor] = n + 1
			anchor = anchor + "-" + strconv.Itoa(n+1)
		} else {
			seen[anchor] = 1
		}
		out = append(out, Link{Label: label, Anchor: anchor, Index: i})
	}
	return out
}

// Anchor turns a label into an id usable in a fragment: lower-case letters
// and digits, other runs collapsed to a single dash.
func Anchor(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "group"
	}
	return "group-" + b.String()
}
