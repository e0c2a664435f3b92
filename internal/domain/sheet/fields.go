package sheet

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Fields holds spreadsheet columns the build does not interpret itself.
type Fields map[string]any

// Get returns a column rendered as text; absent columns are "".
func (f Fields) Get(key string) string {
	return Text(f[key])
}

// Text renders a decoded JSON scalar the way a spreadsheet cell reads.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// SameValue compares two decoded JSON scalars with strict equality:
// a string id never matches a numeric one.
func SameValue(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	default:
		return false
	}
}

type objectDecoder struct {
	raw map[string]json.RawMessage
	err error
}

func newObjectDecoder(data []byte) *objectDecoder {
	d := &objectDecoder{}
	d.err = json.Unmarshal(data, &d.raw)
	return d
}

// take decodes and removes a known key; missing keys leave dst untouched.
func (d *objectDecoder) take(key string, dst any) {
	if d.err != nil {
		return
	}
	v, ok := d.raw[key]
	if !ok {
		return
	}
	delete(d.raw, key)
	if err := json.Unmarshal(v, dst); err != nil {
		d.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (d *objectDecoder) rest() (Fields, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make(Fields, len(d.raw))
	for k, v := range d.raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func marshalWith(f Fields, known map[string]any) ([]byte, error) {
	m := make(map[string]any, len(f)+len(known))
	for k, v := range f {
		m[k] = v
	}
	for k, v := range known {
		m[k] = v
	}
	return json.Marshal(m)
}
