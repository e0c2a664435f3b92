// Package normalize cleans the hand-entered honours list: it splits each
// name into forenames, surname and post-nominal suffixes, infers gender from
// the title, and collects one HonourType per award level.
//
// The run is all-or-nothing. A name that cannot be split or a gender that
// cannot be resolved aborts the batch, because the output is published.
package normalize

import (
	"encoding/json"
	"fmt"
	"golang.org/x/text/unicode/norm"
	domainerr "honours/internal/domain/errors"
	"honours/internal/domain/honours"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Record is one raw row of the source list, column name -> cell text.
type Record map[string]string

// columns the published data does not need
var droppedColumns = []string{"Year", "Honours List", "Order", "Award"}

var titleGenders = map[string]honours.Gender{
	"Mr":       honours.Male,
	"Sir":      honours.Male,
	"His":      honours.Male,
	"Mrs":      honours.Female,
	"Ms":       honours.Female,
	"Miss":     honours.Female,
	"Dame":     honours.Female,
	"Countess": honours.Female,
}

type Result struct {
	Honours []honours.Honouree
	Types   []honours.HonourType
	// every suffix word seen while splitting names automatically, for review
	FoundSuffixes []string
}

type Normalizer struct {
	tables Tables
}

func New(t Tables) *Normalizer {
	return &Normalizer{tables: t}
}

func (n *Normalizer) Normalize(records []Record) (*Result, error) {
	var (
		out      = make([]honours.Honouree, 0, len(records))
		types    = []honours.HonourType{}
		seenType = make(map[string]struct{})
		suffixes = make(map[string]struct{})
	)

	for i, rec := range records {
		if level, ok := rec["Level"]; ok {
			abbr := cleanValue(level)
			if _, seen := seenType[abbr]; !seen {
				seenType[abbr] = struct{}{}
				types = append(types, honours.HonourType{
					Abbr:  abbr,
					Award: cleanValue(rec["Award"]),
					Order: cleanValue(rec["Order"]),
				})
			}
		}

		fields := cleanFields(rec)
		name := fields["name"]
		honour := fields["honour"]
		delete(fields, "name")
		delete(fields, "honour")

		parts, found, err := n.SplitName(name)
		if err != nil {
			return nil, &domainerr.RecordError{Index: i, Name: name, Err: err}
		}
		for _, s := range found {
			suffixes[s] = struct{}{}
		}

		gender, guessed, err := n.ResolveGender(parts.Forenames)
		if err != nil {
			return nil, &domainerr.RecordError{Index: i, Name: name, Err: err}
		}

		h, err := honours.NewHonouree(name, honour, parts, gender, guessed, fields)
		if err != nil {
			return nil, &domainerr.RecordError{Index: i, Name: name, Err: err}
		}
		out = append(out, h)
	}

	found := make([]string, 0, len(suffixes))
	for s := range suffixes {
		found = append(found, s)
	}
	sort.Strings(found)

	return &Result{Honours: out, Types: types, FoundSuffixes: found}, nil
}

// cleanFields drops unneeded columns, collapses whitespace in every value,
// lower-cases column names and renames "level" to "honour".
func cleanFields(rec Record) map[string]string {
	out := make(map[string]string, len(rec))
	for k, v := range rec {
		if isDropped(k) {
			continue
		}
		key := strings.ToLower(k)
		if key == "level" {
			key = "honour"
		}
		out[key] = cleanValue(v)
	}
	return out
}

func isDropped(key string) bool {
	for _, d := range droppedColumns {
		if key == d {
			return true
		}
	}
	return false
}

func cleanValue(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// SplitName splits a name written as "<Title> <Forenames> <SURNAME> [SUFFIXES...]".
// The override table wins outright. Otherwise the trailing run of upper-case
// words is the surname followed by suffixes. The second return value lists the
// raw suffix words found by the automatic split.
func (n *Normalizer) SplitName(name string) (honours.NameParts, []string, error) {
	if p, ok := n.tables.Names[name]; ok {
		return p, nil, nil
	}
	if strings.TrimSpace(name) == "" {
		return honours.NameParts{}, nil, fmt.Errorf("%w: empty name", domainerr.ErrUnparseableName)
	}

	words := strings.Split(name, " ")
	cut := len(words)
	for cut > 0 && isUpperCase(words[cut-1]) {
		cut--
	}
	upper := words[cut:]
	if len(upper) == 0 {
		return honours.NameParts{}, nil, fmt.Errorf("%w: %q has no upper-case surname", domainerr.ErrUnparseableName, name)
	}

	found := append([]string(nil), upper[1:]...)
	fixed := make([]string, len(found))
	for i, s := range found {
		if s == "FRENG" {
			s = "FREng"
		}
		fixed[i] = s
	}

	return honours.NameParts{
		Forenames: strings.Join(words[:cut], " "),
		Surname:   CaseSurname(upper[0]),
		Suffixes:  strings.Join(fixed, " "),
	}, found, nil
}

// CaseSurname turns an upper-case surname into display case:
// MCDONALD -> McDonald, SMITH-JONES -> Smith-Jones, SMITH -> Smith.
// Applying it to its own output returns the same string.
func CaseSurname(s string) string {
	if len(s) >= 2 && strings.EqualFold(s[:2], "mc") {
		return "Mc" + capFirst(s[2:])
	}
	if strings.Contains(s, "-") {
		segs := strings.Split(s, "-")
		for i, seg := range segs {
			segs[i] = capFirst(seg)
		}
		return strings.Join(segs, "-")
	}
	return capFirst(s)
}

// ResolveGender infers gender from the leading title of forenames, falling
// back to the curated table. Table hits are reported as guessed.
func (n *Normalizer) ResolveGender(forenames string) (honours.Gender, bool, error) {
	title, _, _ := strings.Cut(forenames, " ")
	if g, ok := titleGenders[title]; ok {
		return g, false, nil
	}
	if g, ok := n.tables.Genders[forenames]; ok && g.Valid() {
		return g, true, nil
	}
	return "", false, fmt.Errorf("%w for %q", domainerr.ErrUnknownGender, forenames)
}

func isUpperCase(s string) bool {
	return strings.ToUpper(s) == s
}

func capFirst(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(row))
		for k, v := range row {
			switch x := v.(type) {
			case nil:
				rec[k] = ""
			case string:
				rec[k] = x
			default:
				rec[k] = fmt.Sprint(x)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteOutputs writes honours.json and types.json into dir. Both are
// encoded and written to temporary files before either is renamed into
// place, so a failed write leaves the previous outputs untouched.
func WriteOutputs(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	outputs := []struct {
		name string
		v    any
	}{
		{"honours.json", res.Honours},
		{"types.json", res.Types},
	}

	tmps := make([]string, 0, len(outputs))
	cleanup := func() {
		for _, tmp := range tmps {
			_ = os.Remove(tmp)
		}
	}
	for _, o := range outputs {
		tmp := filepath.Join(dir, o.name+".tmp")
		tmps = append(tmps, tmp)
		if err := writeJSON(tmp, o.v); err != nil {
			cleanup()
			return err
		}
	}
	for i, o := range outputs {
		if err := os.Rename(tmps[i], filepath.Join(dir, o.name)); err != nil {
			cleanup()
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", strings.TrimSuffix(filepath.Base(path), ".tmp"), err)
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
