package honours

import (
	"encoding/json"
	"fmt"
	domainerr "honours/internal/domain/errors"
	"strings"
)

type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// NameParts is a person's name split for display. Suffixes are post-nominals such as "OBE".
type NameParts struct {
	Forenames string `yaml:"forenames" json:"forenames"`
	Surname   string `yaml:"surname" json:"surname"`
	Suffixes  string `yaml:"suffixes,omitempty" json:"suffixes,omitempty"`
}

// Honouree is one cleaned row of the honours list.
type Honouree struct {
	Name   string
	Honour string
	NameParts
	Gender        Gender
	GuessedGender bool

	// remaining columns, keys lower-cased, values trimmed
	Fields map[string]string
}

func NewHonouree(name, honour string, parts NameParts, gender Gender, guessed bool, fields map[string]string) (Honouree, error) {
	if strings.TrimSpace(parts.Surname) == "" {
		return Honouree{}, fmt.Errorf("%w: empty surname in %q", domainerr.ErrUnparseableName, name)
	}
	if !gender.Valid() {
		return Honouree{}, fmt.Errorf("%w for %q", domainerr.ErrUnknownGender, name)
	}
	return Honouree{
		Name:          name,
		Honour:        honour,
		NameParts:     parts,
		Gender:        gender,
		GuessedGender: guessed,
		Fields:        fields,
	}, nil
}

func (h Honouree) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(h.Fields)+7)
	for k, v := range h.Fields {
		m[k] = v
	}
	m["name"] = h.Name
	m["honour"] = h.Honour
	m["forenames"] = h.Forenames
	m["surname"] = h.Surname
	if h.Suffixes != "" {
		m["suffixes"] = h.Suffixes
	}
	m["gender"] = h.Gender
	if h.GuessedGender {
		m["guessedGender"] = true
	}
	return json.Marshal(m)
}

// HonourType describes one award level, keyed by its abbreviation (e.g. "CBE").
type HonourType struct {
	Abbr  string `json:"abbr"`
	Award string `json:"award"`
	Order string `json:"order"`
}
