package sheet

// Payload is the body returned by the spreadsheet publishing endpoint.
type Payload struct {
	Orders     []Order     `json:"orders"`
	Ranks      []Rank      `json:"ranks"`
	Recipients []Recipient `json:"recipients"`
	Profiles   []Profile   `json:"profiles"`
	Options    []Option    `json:"options"`
}

type Option struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Document is the reshaped data the templates are rendered from.
type Document struct {
	Options  map[string]string `json:"options"`
	Profiles []Profile         `json:"profiles"`
	Orders   []Order           `json:"orders"`
}

type Order struct {
	ID     any
	Ranks  []Rank
	Fields Fields
}

func (o Order) Get(key string) string { return o.Fields.Get(key) }

func (o *Order) UnmarshalJSON(data []byte) error {
	d := newObjectDecoder(data)
	d.take("id", &o.ID)
	d.take("ranks", &o.Ranks)
	f, err := d.rest()
	if err != nil {
		return err
	}
	o.Fields = f
	return nil
}

func (o Order) MarshalJSON() ([]byte, error) {
	known := map[string]any{"id": o.ID}
	if o.Ranks != nil {
		known["ranks"] = o.Ranks
	}
	return marshalWith(o.Fields, known)
}

// Rank is an award level within an order. Male and Female hold the award
// name as it is written for each (e.g. "Knight Bachelor" / "Dame").
type Rank struct {
	Order     any
	Male      string
	Female    string
	Count     int
	Divisions []Division
	Fields    Fields
}

func (r Rank) Get(key string) string { return r.Fields.Get(key) }

// Matches reports whether a recipient holds this rank.
func (r Rank) Matches(rc Recipient) bool {
	return rc.Award == r.Male || rc.Award == r.Female
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	d := newObjectDecoder(data)
	d.take("order", &r.Order)
	d.take("male", &r.Male)
	d.take("female", &r.Female)
	d.take("count", &r.Count)
	d.take("divisions", &r.Divisions)
	f, err := d.rest()
	if err != nil {
		return err
	}
	r.Fields = f
	return nil
}

func (r Rank) MarshalJSON() ([]byte, error) {
	known := map[string]any{
		"order":  r.Order,
		"male":   r.Male,
		"female": r.Female,
		"count":  r.Count,
	}
	if r.Divisions != nil {
		known["divisions"] = r.Divisions
	}
	return marshalWith(r.Fields, known)
}

// Division groups the recipients of a rank; Name is "" for the unnamed division.
type Division struct {
	Name       string      `json:"name"`
	Recipients []Recipient `json:"recipients"`
}

type Recipient struct {
	Award    string
	Division string
	Fields   Fields
}

func (rc Recipient) Get(key string) string { return rc.Fields.Get(key) }

func (rc *Recipient) UnmarshalJSON(data []byte) error {
	d := newObjectDecoder(data)
	var award, division any
	d.take("award", &award)
	d.take("division", &division)
	f, err := d.rest()
	if err != nil {
		return err
	}
	rc.Award = Text(award)
	rc.Division = Text(division)
	rc.Fields = f
	return nil
}

func (rc Recipient) MarshalJSON() ([]byte, error) {
	known := map[string]any{"award": rc.Award}
	if rc.Division != "" {
		known["division"] = rc.Division
	}
	return marshalWith(rc.Fields, known)
}

// Profile is a featured honouree. Columns are kept as-is apart from the image URL.
type Profile Fields

func (p Profile) Get(key string) string { return Fields(p).Get(key) }
