package labindex

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

var requiredFields = []struct {
	parent, key string
}{
	{"", "name"},
	{"", "plate"},
	{"", "well"},
	{"plate", "sterile"},
	{"plate", "skirted"},
	{"plate", "enzyme_free"},
	{"plate", "length"},
	{"plate", "width"},
	{"plate", "height"},
	{"plate", "well_spacing"},
	{"plate", "well_num"},
	{"well", "volume"},
	{"well", "depth"},
	{"well", "top_diameter"},
	{"well", "bottom_diameter"},
}

// without returns the LP-0200 fields with one field removed, and that
// field's dotted path.
func without(parent, key string) (f Fields, path string) {
	f = lp0200()
	if parent == "" {
		delete(f, key)
		return f, key
	}
	delete(sub(f, parent), key)
	return f, parent + "." + key
}

func TestFromFields(t *testing.T) {
	lw, err := FromFields(lp0200())
	tassert(t, err == nil, "%v", err)
	tassert(t, lw.Equal(fixture(t, "lp_0200.json")), "fields and JSON disagree")
}

func TestFromFieldsMissing(t *testing.T) {
	for _, rf := range requiredFields {
		f, path := without(rf.parent, rf.key)
		lw, err := FromFields(f)
		tassert(t, lw == nil, "%s: got labware %v", path, lw)
		var merr *MalformedRecordError
		tassert(t, errors.As(err, &merr), "%s: expected MalformedRecordError, got %#v", path, err)
		tassert(t, merr.Field == path, "expected field %s, got %s", path, merr.Field)
	}
}

func TestFromFieldsWrongType(t *testing.T) {
	wellNum := func(v interface{}) func(f Fields) {
		return func(f Fields) { sub(f, "plate")["well_num"] = v }
	}
	cases := []struct {
		path   string
		mutate func(f Fields)
	}{
		{"name", func(f Fields) { f["name"] = 42 }},
		{"plate", func(f Fields) { f["plate"] = "flat" }},
		{"plate.sterile", func(f Fields) { sub(f, "plate")["sterile"] = "yes" }},
		{"plate.length", func(f Fields) { sub(f, "plate")["length"] = "127.76" }},
		{"plate.well_num", wellNum(384.5)},
		{"plate.well_num", wellNum(1e20)},
		{"plate.well_num", wellNum(1e21)},
		{"plate.well_num", wellNum(-5)},
		{"plate.well_num", wellNum(0)},
		{"plate.well_num", wellNum(int64(1<<53 + 1))},
		{"plate.well_num", wellNum(uint64(math.MaxUint64))},
		{"plate.well_num", wellNum(json.Number("9007199254740993"))},
		{"plate.well_num", wellNum(json.Number("1e20"))},
		{"well.depth", func(f Fields) { sub(f, "well")["depth"] = nil }},
	}
	for _, c := range cases {
		f := lp0200()
		c.mutate(f)
		lw, err := FromFields(f)
		var merr *MalformedRecordError
		tassert(t, errors.As(err, &merr), "%s: expected MalformedRecordError, got %#v (%v)", c.path, err, lw)
		tassert(t, merr.Field == c.path, "expected field %s, got %s", c.path, merr.Field)
		tassert(t, merr.Reason != "", "%s: expected a reason", c.path)
	}

	// whole numbers of any type are accepted as counts
	for _, v := range []interface{}{384, int64(384), uint16(384), 384.0, json.Number("384")} {
		f := lp0200()
		wellNum(v)(f)
		lw, err := FromFields(f)
		tassert(t, err == nil, "%T %v: %v", v, v, err)
		tassert(t, lw.Plate().WellNum == 384, "%T %v: got %d", v, v, lw.Plate().WellNum)
	}

	f := lp0200()
	f["name"] = ""
	_, err := FromFields(f)
	var merr *MalformedRecordError
	tassert(t, errors.As(err, &merr) && merr.Field == "name", "empty name accepted: %v", err)
}

func TestComposition(t *testing.T) {
	f := lp0200()
	delete(sub(f, "plate"), "composition")
	lw, err := FromFields(f)
	tassert(t, err == nil, "%v", err)
	tassert(t, lw.Plate().Composition == UnknownComposition, "composition %q", lw.Plate().Composition)

	// absent and empty are the same record
	f = lp0200()
	sub(f, "plate")["composition"] = ""
	empty, err := FromFields(f)
	tassert(t, err == nil, "%v", err)
	tassert(t, empty.Equal(lw), "empty and absent composition differ")

	lw = fixture(t, "no_composition.json")
	tassert(t, lw.Plate().Composition == UnknownComposition, "composition %q", lw.Plate().Composition)
}

func TestFromJSONBadData(t *testing.T) {
	_, err := LoadFile("testdata/bad_data.json")
	var merr *MalformedRecordError
	tassert(t, errors.As(err, &merr), "expected MalformedRecordError, got %#v", err)
	tassert(t, merr.Field == "plate.enzyme_free", "field %s", merr.Field)

	for _, buf := range []string{"", "{", "[1, 2]", `"LP-0200"`} {
		_, err = FromJSON(mkbuf(buf))
		tassert(t, errors.As(err, &merr), "%q: expected MalformedRecordError, got %#v", buf, err)
	}
}

func TestFromYAML(t *testing.T) {
	y := fixture(t, "lp_0200.yaml")
	j := fixture(t, "lp_0200.json")
	tassert(t, y.Equal(j), "YAML and JSON records differ: %s %s", y.ID(), j.ID())

	var merr *MalformedRecordError
	for _, buf := range []string{"", "name: [", "- a\n- b\n"} {
		_, err := FromYAML(mkbuf(buf))
		tassert(t, errors.As(err, &merr), "%q: expected MalformedRecordError, got %#v", buf, err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/nonexistent.json")
	tassert(t, err != nil, "expected error")
	var merr *MalformedRecordError
	tassert(t, !errors.As(err, &merr), "I/O error reported as malformed record")
}
