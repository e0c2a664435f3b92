package normalize

import (
	"encoding/json"
	"errors"
	domainerr "honours/internal/domain/errors"
	"honours/internal/domain/honours"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNameOverride(t *testing.T) {
	n := New(DefaultTables())

	got, found, err := n.SplitName("Mr Andrew DE FREITAS")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, honours.NameParts{Forenames: "Mr Andrew", Surname: "De Freitas"}, got)
}

func TestSplitNameOverrideBypassesAutomaticParsing(t *testing.T) {
	tables := Tables{Names: map[string]honours.NameParts{
		"Dr Anna Danielle VAN DER GAAG": {Forenames: "Dr Anna Danielle", Surname: "van der Gaag"},
	}}
	got, _, err := New(tables).SplitName("Dr Anna Danielle VAN DER GAAG")
	require.NoError(t, err)
	// the automatic rule would have produced surname "Van" with suffixes "DER GAAG"
	assert.Equal(t, tables.Names["Dr Anna Danielle VAN DER GAAG"], got)
}

func TestSplitNameAutomatic(t *testing.T) {
	n := New(Tables{})

	tests := []struct {
		name  string
		want  honours.NameParts
		found []string
	}{
		{
			name:  "Dr Jane Rata SMITH OBE",
			want:  honours.NameParts{Forenames: "Dr Jane Rata", Surname: "Smith", Suffixes: "OBE"},
			found: []string{"OBE"},
		},
		{
			name: "Mr John MCDONALD",
			want: honours.NameParts{Forenames: "Mr John", Surname: "McDonald"},
		},
		{
			name: "Mrs Ann SMITH-JONES",
			want: honours.NameParts{Forenames: "Mrs Ann", Surname: "Smith-Jones"},
		},
		{
			name:  "Professor Ian WHITE FRENG FRS",
			want:  honours.NameParts{Forenames: "Professor Ian", Surname: "White", Suffixes: "FREng FRS"},
			found: []string{"FRENG", "FRS"},
		},
		{
			name: "SMITH",
			want: honours.NameParts{Forenames: "", Surname: "Smith"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := n.SplitName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.found), len(found))
			if len(tt.found) > 0 {
				assert.Equal(t, tt.found, found)
			}
		})
	}
}

func TestSplitNameForenamesAreLeadingWords(t *testing.T) {
	n := New(Tables{})
	names := []string{
		"Mr Alan Bob SMITH",
		"Ms Zoë Lin WU CBE DL",
		"Councillor Janet Mary O'BRIEN",
		"Sir Ian GREEN-WOOD KCB",
	}
	for _, name := range names {
		got, _, err := n.SplitName(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, got.Surname, name)

		words := strings.Split(name, " ")
		lead := 0
		for lead < len(words) && strings.ToUpper(words[lead]) != words[lead] {
			lead++
		}
		assert.Equal(t, strings.Join(words[:lead], " "), got.Forenames, name)
	}
}

func TestSplitNameWithoutUpperCaseFails(t *testing.T) {
	n := New(Tables{})
	for _, name := range []string{"Mr John Smith", ""} {
		_, _, err := n.SplitName(name)
		assert.True(t, errors.Is(err, domainerr.ErrUnparseableName), name)
	}
}

func TestCaseSurnameIsIdempotent(t *testing.T) {
	for _, in := range []string{"SMITH", "MCDONALD", "SMITH-JONES", "MC", "O'BRIEN", "ÉCLAIR", "MCKAY-LEWIS", "A--B"} {
		once := CaseSurname(in)
		assert.Equal(t, once, CaseSurname(once), in)
	}
	assert.Equal(t, "McKay-lewis", CaseSurname("MCKAY-LEWIS"))
	assert.Equal(t, "Éclair", CaseSurname("ÉCLAIR"))
}

func TestResolveGender(t *testing.T) {
	n := New(Tables{Genders: map[string]honours.Gender{"Dr Jane Rata": honours.Female}})

	g, guessed, err := n.ResolveGender("Mr Anything At All")
	require.NoError(t, err)
	assert.Equal(t, honours.Male, g)
	assert.False(t, guessed)

	for _, title := range []string{"Mrs", "Ms", "Miss", "Dame", "Countess"} {
		g, guessed, err := n.ResolveGender(title + " X")
		require.NoError(t, err)
		assert.Equal(t, honours.Female, g, title)
		assert.False(t, guessed, title)
	}

	g, guessed, err = n.ResolveGender("Dr Jane Rata")
	require.NoError(t, err)
	assert.Equal(t, honours.Female, g)
	assert.True(t, guessed)

	_, _, err = n.ResolveGender("Dr Unknown Person")
	assert.True(t, errors.Is(err, domainerr.ErrUnknownGender))
}

func TestNormalizeBatch(t *testing.T) {
	records := []Record{
		{
			"Year": "2016", "Honours List": "New Year", "Order": "Order of the British Empire",
			"Award": "Officer", "Level": "OBE", "Name": "  Dr Jane   Rata SMITH OBE ",
			"Citation": "For services\n to Science.",
		},
		{
			"Year": "2016", "Honours List": "New Year", "Order": "Order of the British Empire",
			"Award": "Officer (dup)", "Level": "OBE", "Name": "Mr Andrew DE FREITAS",
			"Citation": "For services to Sport.",
		},
		{
			"Order": "Order of the Bath", "Award": "Companion", "Level": "CB",
			"Name": "Sir Ian GREEN", "Citation": "",
		},
	}

	res, err := New(DefaultTables()).Normalize(records)
	require.NoError(t, err)
	require.Len(t, res.Honours, 3)

	first := res.Honours[0]
	assert.Equal(t, "Dr Jane Rata SMITH OBE", first.Name)
	assert.Equal(t, "OBE", first.Honour)
	assert.Equal(t, "Smith", first.Surname)
	assert.Equal(t, honours.Female, first.Gender)
	assert.True(t, first.GuessedGender)
	assert.Equal(t, map[string]string{"citation": "For services to Science."}, first.Fields)

	assert.Equal(t, "De Freitas", res.Honours[1].Surname)
	assert.False(t, res.Honours[1].GuessedGender)

	want := []honours.HonourType{
		{Abbr: "OBE", Award: "Officer", Order: "Order of the British Empire"},
		{Abbr: "CB", Award: "Companion", Order: "Order of the Bath"},
	}
	if diff := cmp.Diff(want, res.Types); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"OBE"}, res.FoundSuffixes)
}

func TestNormalizeAbortsWholeBatch(t *testing.T) {
	records := []Record{
		{"Level": "MBE", "Name": "Mr Good PERSON"},
		{"Level": "MBE", "Name": "Dr Nobody KNOWN"},
	}
	res, err := New(Tables{}).Normalize(records)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, domainerr.ErrUnknownGender))

	var re *domainerr.RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 1, re.Index)
	assert.Equal(t, "Dr Nobody KNOWN", re.Name)
}

func TestReadAndWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "original-data.json")
	require.NoError(t, os.WriteFile(in, []byte(`[
	  {"Year": 2016, "Level": "MBE", "Award": "Member", "Order": "OBE", "Name": "Mrs Ann SMITH-JONES"}
	]`), 0o644))

	recs, err := ReadRecords(in)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2016", recs[0]["Year"])

	res, err := New(Tables{}).Normalize(recs)
	require.NoError(t, err)

	out := filepath.Join(dir, "out")
	require.NoError(t, WriteOutputs(out, res))

	var hs []map[string]any
	b, err := os.ReadFile(filepath.Join(out, "honours.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &hs))
	require.Len(t, hs, 1)
	assert.Equal(t, "Smith-Jones", hs[0]["surname"])
	assert.Equal(t, "MBE", hs[0]["honour"])
	assert.NotContains(t, hs[0], "year")

	b, err = os.ReadFile(filepath.Join(out, "types.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"abbr":"MBE","award":"Member","order":"OBE"}]`, string(b))
}

func TestLoadTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
names:
  "Mrs Isabel DE PELET":
    forenames: Mrs Isabel
    surname: de Pelet
genders:
  "Dr Jane Rata": F
`), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, "de Pelet", tables.Names["Mrs Isabel DE PELET"].Surname)
	assert.Equal(t, honours.Female, tables.Genders["Dr Jane Rata"])

	require.NoError(t, os.WriteFile(path, []byte("genders:\n  \"Dr X\": Q\n"), 0o644))
	_, err = LoadTables(path)
	assert.True(t, errors.Is(err, domainerr.ErrInvalid))
}

func TestDefaultTablesAreValid(t *testing.T) {
	require.NoError(t, DefaultTables().Validate())
}

func TestWriteOutputsLeavesNothingOnFailure(t *testing.T) {
	res, err := New(Tables{}).Normalize([]Record{{"Level": "MBE", "Name": "Mrs Ann SMITH"}})
	require.NoError(t, err)

	out := t.TempDir()
	// a directory in the way makes the second temporary write fail
	require.NoError(t, os.MkdirAll(filepath.Join(out, "types.json.tmp", "x"), 0o755))

	require.Error(t, WriteOutputs(out, res))
	for _, name := range []string{"honours.json", "honours.json.tmp", "types.json"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.True(t, os.IsNotExist(err), name)
	}
}
