package normalize

import (
	"fmt"
	"gopkg.in/yaml.v3"
	domainerr "honours/internal/domain/errors"
	"honours/internal/domain/honours"
	"os"
)

// Tables are the curated exceptions to automatic name parsing and gender
// inference. Keys are matched exactly.
type Tables struct {
	// raw name -> explicit split, for surnames the upper-case rule gets wrong
	Names map[string]honours.NameParts `yaml:"names"`
	// forenames (title included) -> gender, for titles that do not imply one
	Genders map[string]honours.Gender `yaml:"genders"`
}

func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, err
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse tables %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

func (t Tables) Validate() error {
	var ve domainerr.ValidationError
	for raw, p := range t.Names {
		if p.Surname == "" {
			ve.Add("names."+raw, "surname must not be empty")
		}
	}
	for forenames, g := range t.Genders {
		if !g.Valid() {
			ve.Add("genders."+forenames, fmt.Sprintf("gender must be M or F, got %q", g))
		}
	}
	if ve.HasAny() {
		return ve
	}
	return nil
}

// DefaultTables returns the tables curated for the 2016 New Year Honours list.
func DefaultTables() Tables {
	return Tables{
		Names: map[string]honours.NameParts{
			"Ms Emma Catherine Ramsay WILLIS (MRS CORFIELD)": {Forenames: "Ms Emma Catherine Ramsay", Surname: "Willis (Mrs Corfield)"},
			"Rt Hon Lord David Ivor YOUNG OF GRAFFHAM DL":    {Forenames: "Rt Hon Lord David Ivor", Surname: "Young of Graffham", Suffixes: "DL"},
			"Professor Julian Ernest Michael LE GRAND FBA":   {Forenames: "Professor Julian Ernest Michael", Surname: "Le Grand", Suffixes: "FBA"},
			"Ms Barbara Mary PLUNKET GREENE OBE":             {Forenames: "Ms Barbara Mary", Surname: "Plunket Greene", Suffixes: "OBE"},
			"Ms Kristin SCOTT THOMAS OBE":                    {Forenames: "Ms Kristin", Surname: "Scott Thomas", Suffixes: "OBE"},
			"Mr Philip Richard WOOD QC (HON)":                {Forenames: "Mr Philip Richard", Surname: "Wood", Suffixes: "QC (HON)"},
			"Dr Anna Danielle VAN DER GAAG":                  {Forenames: "Dr Anna Danielle", Surname: "van der Gaag"},
			"Mr Andrew DE FREITAS":                           {Forenames: "Mr Andrew", Surname: "De Freitas"},
			"Countess Carolyn Mary DE SALIS":                 {Forenames: "Countess Carolyn Mary", Surname: "de Salis"},
			"Mrs Sonja LE VAY":                               {Forenames: "Mrs Sonja", Surname: "Le Vay"},
			"Mrs Lydia Helena LOPES CARDOZO":                 {Forenames: "Mrs Lydia Helena", Surname: "Lopes Cardozo"},
			"Mr Andrew LORRAIN SMITH":                        {Forenames: "Mr Andrew", Surname: "Lorrain Smith"},
			"Mrs Isabel DE PELET":                            {Forenames: "Mrs Isabel", Surname: "de Pelet"},
			"Mrs Angela Catherine WARNEKEN GOLD":             {Forenames: "Mrs Angela Catherine", Surname: "Warneken Gold"},
			"Dr Michèle DIX":                                 {Forenames: "Dr Michèle", Surname: "Dix"},
		},
		Genders: defaultGenders(),
	}
}

func defaultGenders() map[string]honours.Gender {
	const m, f = honours.Male, honours.Female
	return map[string]honours.Gender{
		"Rt Hon Lord Jeremy John Durham":    m,
		"Rt Hon Lord David Ivor":            m,
		"Professor Richard Robert":          m,
		"Professor (Andrew) Jonathan":       m,
		"Dr Simon Fraser":                   m,
		"Dr Anthony Herbert":                m,
		"Professor Julian Ernest Michael":   m,
		"Professor Martyn":                  m,
		"Professor Nilesh Jayantilal":       m,
		"Professor Nigel John":              m,
		"Professor Norman Stanley":          m,
		"Dr Andrew John":                    m,
		"Professor Christopher John MacRae": m,
		"Professor Sir John Irving":         m,
		"Professor Carol Ann":               f,
		"Rt Hon Anne Catherine":             f,
		"Professor Teresa Lesley":           f,
		"Professor Eileen":                  f,
		"Professor Marina Sarah":            f,
		"Professor Graeme William Walter":   m,
		"Professor Alistair Stanyer":        m,
		"Dr Michèle":                        f,
		"Professor Ruth Sarah":              f,
		"Professor Russell":                 m,
		"Rt Hon (John) Michael":             m,
		"Professor Heather Evelyn":          f,
		"Councillor Erica":                  f,
		"Dr Ruth Jane":                      f,
		"Carolyn":                           f,
		"Dr Alice Mary":                     f,
		"Dr Bridget Mary":                   f,
		"Professor Julienne Elizabeth":      f,
		"Professor Timothy Noel":            m,
		"Professor Sharon Jayne":            f,
		"Professor David Anthony":           m,
		"Professor Peter Wynne":             m,
		"Professor Stephen Michael":         m,
		"Dr (Vivecca) Vicky":                f,
		"Professor Fiona Mary":              f,
		"Professor Caroline":                f,
		"Professor Rosalind Louise":         f,
		"Dr Anna Danielle":                  f,
		"Professor Paul":                    m,
		"Professor Caroline Elizabeth":      m,
		"Professor Bill":                    m,
		"Dr Mohinder Singh":                 m,
		"Professor Diane Joan":              m,
		"Dr Helen":                          f,
		"Professor Peter Riven":             m,
		"Professor Margaret Louise":         f,
		"Professor Stewart":                 m,
		"Dr Sarah":                          f,
		"Dr Hilary Dawn":                    f,
		"Colonel Edward Paul Ronald":        m,
		"Lt Col (Retd) Jerome Wilfrid":      m,
		"Dr Beverly Jane":                   f,
		"Dr David Gordon":                   m,
		"Professor Cyrus":                   m,
		"Judge John Joseph":                 m,
		"Dr Lesley Sharon":                  f,
		"Dr John Damien":                    m,
		"Dr Bernadette":                     f,
		"Colonel Robin Dewhurst":            m,
		"Dr George Thompson":                m,
		"Dr Robert":                         m,
		"Professor Geoffrey":                m,
		"Dr Jacqui Lunday":                  f,
		"Dr Glynn":                          m,
		"Dr William":                        m,
		"Dr Roshan":                         m,
		"Dr Graeme Peter Alexander":         m,
		"Dr Ruth Louise":                    f,
		"Professor Robert Hamilton":         m,
		"Professor Ian Mark":                m,
		"Dr Anne Philomena":                 f,
		"Professor Venugopal Karunakaran":   m,
		"Professor Dilip":                   m,
		"Gwen":                              f,
		"Dr David Alasdair Hamley":          m,
		"Dr Timothy William":                m,
		"Lt Col Peter Albert":               m,
		"Dr John William":                   m,
		"Professor Kenneth Richard":         m,
		"Dr John Anthony":                   m,
		"Professor Iram":                    m,
		"Professor Nigel James":             m,
		"Professor Sarah Katherine":         f,
		"Professor Gwyneth Mary":            f,
		"Lady Jean Roberta":                 f,
		"Professor Valerie":                 f,
		"Professor Christopher Allan":       m,
		"Professor Hugh Godfrey Maturin":    m,
		"Colonel Edward Christopher":        m,
		"Councillor Elizabeth":              f,
		"Alderman William Alexander Fraser": m,
		"Professor Uduak":                   f,
		"Dr Pamela Oriri Scholastica":       f,
		"Professor Elizabeth Margaret":      f,
		"Dr Robert Dean Joseph":             m,
		"Dr David":                          m,
		"Dr Alan":                           m,
		"Pastor Gbolahan Ayorinde":          m,
		"Councillor Janet":                  f,
		"Professor Janatha Hetherington":    f,
		"Dr Colin Deas":                     m,
		"Dr Audrey Elizabeth Arlene":        f,
		"Professor Quintin Ivor":            m,
		"Dr Gillian":                        f,
		"Dr Robert Anthony":                 m,
		"Dr Heather Mary":                   f,
		"Councillor Carole Maxwell":         f,
		"Professor Barbara Ann":             f,
		"Dr Mary Patricia":                  f,
		"Captain Hugh Francis Joseph":       m,
		"Professor Jennifer Elizabeth":      f,
		"Professor Patrick":                 m,
		"Dr Kate Miriam":                    f,
		"Professor Susan":                   f,
		"Dr Barbara":                        f,
		"Professor Martin Anthony":          m,
		"Professor Katharine":               f,
		"Rev Dr Richard Leslie":             m,
		"Professor Peter Kenneth":           m,
		"Professor Elisabeth Ann":           f,
		"Dr Stefan Maria Josef Stanislaus":  f,
		"Dr Kenneth David":                  m,
		"Dr Michael John":                   m,
		"Dr Brian Douglas":                  m,
		"Dr Paul":                           m,
		"Dr Jean":                           f,
		"Lt Col David Edward":               m,
		"Dr Rosaleen Mary":                  f,
		"Professor Carole Margaret":         f,
		"Rabbi Barry":                       m,
		"The Reverend Ronald":               m,
		"Councillor John":                   m,
		"Alderman Maurice Turtle":           m,
		"Dr Patrick Alfred":                 m,
		"Dr Caron":                          f,
		"Professor Nanette":                 f,
		"Dr Alastair Lockington":            m,
		"Dr Stephen Roger":                  m,
		"Councillor Francis":                m,
		"Gail":                              f,
		"Professor Richard Thomas":          m,
		"Professor John Joseph":             m,
		"Dr Jay":                            f,
		"Dr Wendy Barbara":                  f,
		"Dr David Farquharson":              m,
		"Dr Michael Vaughan":                m,
		"Dr Jane Rata":                      f,
		"Councillor James Gregory":          m,
		"Dr Leslie":                         m,
		"Dr Elizabeth Anne":                 f,
		"Councillor Josephine Mary":         f,
		"Dr William Huw John":               m,
		"Councillor Martha Glenys Dianne":   f,
		"The Reverend Susan Mary":           f,
		"Dr Shazad":                         m,
		"Dr Arthur James":                   m,
	}
}
