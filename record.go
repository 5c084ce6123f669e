package labindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Fields is a raw input record, shaped like:
//
//	{
//	    "name": "LP-0200",
//	    "plate": {
//	        "sterile": false, "skirted": true, "enzyme_free": true,
//	        "length": 127.76, "width": 85.48, "height": 10.48,
//	        "well_spacing": 4.5, "well_num": 384,
//	        "composition": "Cyclic Olefin Copolymer"
//	    },
//	    "well": {
//	        "volume": 14, "depth": 5.10,
//	        "top_diameter": 2.432, "bottom_diameter": 1.53
//	    }
//	}
//
// Every field except plate.composition is required.
type Fields map[string]interface{}

// fieldReader pulls typed values out of a Fields map and remembers the
// first problem it hits, so FromFields reads as a flat list.
type fieldReader struct {
	err *MalformedRecordError
}

func (r *fieldReader) fail(field, reason string) {
	if r.err == nil {
		r.err = &MalformedRecordError{Field: field, Reason: reason}
	}
}

func (r *fieldReader) sub(f Fields, key string) Fields {
	v, ok := f[key]
	if !ok {
		r.fail(key, "")
		return Fields{}
	}
	switch m := v.(type) {
	case Fields:
		return m
	case map[string]interface{}:
		return Fields(m)
	}
	r.fail(key, fmt.Sprintf("expected object, got %T", v))
	return Fields{}
}

func (r *fieldReader) str(f Fields, prefix, key string, required bool) string {
	v, ok := f[key]
	if !ok || v == nil {
		if required {
			r.fail(prefix+key, "")
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(prefix+key, fmt.Sprintf("expected string, got %T", v))
	}
	return s
}

func (r *fieldReader) boolean(f Fields, prefix, key string) bool {
	v, ok := f[key]
	if !ok {
		r.fail(prefix+key, "")
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(prefix+key, fmt.Sprintf("expected boolean, got %T", v))
	}
	return b
}

func (r *fieldReader) number(f Fields, prefix, key string) float64 {
	v, ok := f[key]
	if !ok {
		r.fail(prefix+key, "")
		return 0
	}
	n, ok := toFloat(v)
	if !ok {
		r.fail(prefix+key, fmt.Sprintf("expected number, got %T", v))
	}
	return n
}

// maxExact is the largest integer every numeric input type, float64
// included, holds without rounding.
const maxExact = 1 << 53

// integer reads a positive count.  Values that are not whole, or that
// are too large to be held exactly, are rejected rather than rounded.
func (r *fieldReader) integer(f Fields, prefix, key string) int {
	v, ok := f[key]
	if !ok {
		r.fail(prefix+key, "")
		return 0
	}
	n, ok := toInt(v)
	if !ok {
		r.fail(prefix+key, fmt.Sprintf("expected integer, got %T %v", v, v))
		return 0
	}
	if n < 1 || n > maxExact {
		r.fail(prefix+key, fmt.Sprintf("out of range: %d", n))
		return 0
	}
	return int(n)
}

// toInt converts whole numbers of any numeric type to int64.  It fails
// for fractions and for anything outside the int64 range.
func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > maxExact {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// FromFields builds a Labware from a raw input record.  A missing
// required field, at any nesting level, or a field of the wrong type
// yields a *MalformedRecordError naming the field.
func FromFields(f Fields) (lw *Labware, err error) {
	r := &fieldReader{}

	name := r.str(f, "", "name", true)
	if r.err == nil && name == "" {
		r.fail("name", "empty")
	}

	pf := r.sub(f, "plate")
	wf := r.sub(f, "well")

	sterile := r.boolean(pf, "plate.", "sterile")
	skirted := r.boolean(pf, "plate.", "skirted")
	enzymeFree := r.boolean(pf, "plate.", "enzyme_free")
	length := r.number(pf, "plate.", "length")
	width := r.number(pf, "plate.", "width")
	height := r.number(pf, "plate.", "height")
	spacing := r.number(pf, "plate.", "well_spacing")
	wellNum := r.integer(pf, "plate.", "well_num")
	composition := r.str(pf, "plate.", "composition", false)

	well := Well{
		Volume:         r.number(wf, "well.", "volume"),
		Depth:          r.number(wf, "well.", "depth"),
		TopDiameter:    r.number(wf, "well.", "top_diameter"),
		BottomDiameter: r.number(wf, "well.", "bottom_diameter"),
	}

	if r.err != nil {
		return nil, r.err
	}

	plate := NewPlate(sterile, skirted, enzymeFree, length, width, height,
		spacing, wellNum, well, composition)
	return NewLabware(name, plate), nil
}

// FromJSON decodes a JSON record and builds a Labware from it.
func FromJSON(buf []byte) (lw *Labware, err error) {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var f Fields
	err = dec.Decode(&f)
	if err != nil {
		return nil, &MalformedRecordError{Reason: err.Error()}
	}
	return FromFields(f)
}

// FromYAML decodes a YAML record and builds a Labware from it.
func FromYAML(buf []byte) (lw *Labware, err error) {
	var f Fields
	err = yaml.Unmarshal(buf, &f)
	if err != nil {
		return nil, &MalformedRecordError{Reason: err.Error()}
	}
	if f == nil {
		return nil, &MalformedRecordError{Reason: "empty document"}
	}
	return FromFields(f)
}

// LoadFile reads a record file, YAML if the extension says so and JSON
// otherwise.
func LoadFile(fn string) (lw *Labware, err error) {
	buf, err := ioutil.ReadFile(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", fn)
	}
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".yaml", ".yml":
		return FromYAML(buf)
	}
	return FromJSON(buf)
}
