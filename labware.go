package labindex

import "fmt"

// UnknownComposition is the composition recorded when none is given.
const UnknownComposition = "unknown"

// Well describes a single well within a plate.  Volume is the maximum
// working volume in uL; the other fields are in mm, with BottomDiameter
// measured at the bottom of the conical section.
type Well struct {
	Volume         float64
	Depth          float64
	TopDiameter    float64
	BottomDiameter float64
}

func (w Well) Equal(other Well) bool {
	return w == other
}

func (w Well) String() string {
	return fmt.Sprintf("Well with volume %s uL, depth %s mm, top diameter %s mm,"+
		" and bottom diameter %s mm.",
		formatFloat(w.Volume), formatFloat(w.Depth),
		formatFloat(w.TopDiameter), formatFloat(w.BottomDiameter))
}

// Plate describes the plate infrastructure of a labware type.  Length
// and Width are measured at the base, WellSpacing between the centers
// of adjacent wells, all in mm.  A Plate owns its Well by value.
type Plate struct {
	Sterile     bool
	Skirted     bool
	EnzymeFree  bool // tested free of DNase/RNase
	Length      float64
	Width       float64
	Height      float64
	WellSpacing float64
	WellNum     int
	Composition string
	Well        Well
}

// NewPlate returns a Plate with an empty composition normalized to
// UnknownComposition.
func NewPlate(sterile, skirted, enzymeFree bool, length, width, height, wellSpacing float64, wellNum int, well Well, composition string) Plate {
	if composition == "" {
		composition = UnknownComposition
	}
	return Plate{
		Sterile:     sterile,
		Skirted:     skirted,
		EnzymeFree:  enzymeFree,
		Length:      length,
		Width:       width,
		Height:      height,
		WellSpacing: wellSpacing,
		WellNum:     wellNum,
		Composition: composition,
		Well:        well,
	}
}

func (p Plate) Equal(other Plate) bool {
	return p == other
}

func (p Plate) String() string {
	return fmt.Sprintf("Plate with length %s mm, width %s mm, height %s mm, and %d wells.",
		formatFloat(p.Length), formatFloat(p.Width), formatFloat(p.Height), p.WellNum)
}

// Labware is a named SBS-footprint labware type.  Its id is the hex
// digest of its canonical encoding and is fixed at construction; there
// are no mutators, so the id always reflects the fields.
type Labware struct {
	name  string
	plate Plate
	id    string
}

// NewLabware builds a Labware and computes its id.
func NewLabware(name string, plate Plate) *Labware {
	if plate.Composition == "" {
		plate.Composition = UnknownComposition
	}
	lw := &Labware{name: name, plate: plate}
	lw.id = hexid(lw)
	return lw
}

func (lw *Labware) Name() string { return lw.name }
func (lw *Labware) Plate() Plate { return lw.plate }
func (lw *Labware) Well() Well   { return lw.plate.Well }
func (lw *Labware) ID() string   { return lw.id }

// Rehash recomputes the id from the current fields and returns it.
func (lw *Labware) Rehash() string {
	lw.id = hexid(lw)
	return lw.id
}

// Equal reports whether lw and other have the same id.
func (lw *Labware) Equal(other *Labware) bool {
	if lw == nil || other == nil {
		return lw == other
	}
	return lw.id == other.id
}

func (lw *Labware) String() string {
	p := lw.plate
	return fmt.Sprintf("%s with length %s mm, width %s mm, height %s mm, and %d wells.",
		lw.name, formatFloat(p.Length), formatFloat(p.Width), formatFloat(p.Height), p.WellNum)
}

// Record is the serialized shape of a Labware, used for object files
// and for printing.
type Record struct {
	Name  string      `json:"name" yaml:"name" msgpack:"name"`
	Plate PlateRecord `json:"plate" yaml:"plate" msgpack:"plate"`
	Well  WellRecord  `json:"well" yaml:"well" msgpack:"well"`
}

type PlateRecord struct {
	Sterile     bool    `json:"sterile" yaml:"sterile" msgpack:"sterile"`
	Skirted     bool    `json:"skirted" yaml:"skirted" msgpack:"skirted"`
	EnzymeFree  bool    `json:"enzyme_free" yaml:"enzyme_free" msgpack:"enzyme_free"`
	Length      float64 `json:"length" yaml:"length" msgpack:"length"`
	Width       float64 `json:"width" yaml:"width" msgpack:"width"`
	Height      float64 `json:"height" yaml:"height" msgpack:"height"`
	WellSpacing float64 `json:"well_spacing" yaml:"well_spacing" msgpack:"well_spacing"`
	WellNum     int     `json:"well_num" yaml:"well_num" msgpack:"well_num"`
	Composition string  `json:"composition" yaml:"composition" msgpack:"composition"`
}

type WellRecord struct {
	Volume         float64 `json:"volume" yaml:"volume" msgpack:"volume"`
	Depth          float64 `json:"depth" yaml:"depth" msgpack:"depth"`
	TopDiameter    float64 `json:"top_diameter" yaml:"top_diameter" msgpack:"top_diameter"`
	BottomDiameter float64 `json:"bottom_diameter" yaml:"bottom_diameter" msgpack:"bottom_diameter"`
}

// Record returns the serialized shape of lw.
func (lw *Labware) Record() Record {
	p := lw.plate
	w := p.Well
	return Record{
		Name: lw.name,
		Plate: PlateRecord{
			Sterile:     p.Sterile,
			Skirted:     p.Skirted,
			EnzymeFree:  p.EnzymeFree,
			Length:      p.Length,
			Width:       p.Width,
			Height:      p.Height,
			WellSpacing: p.WellSpacing,
			WellNum:     p.WellNum,
			Composition: p.Composition,
		},
		Well: WellRecord{
			Volume:         w.Volume,
			Depth:          w.Depth,
			TopDiameter:    w.TopDiameter,
			BottomDiameter: w.BottomDiameter,
		},
	}
}

// FromRecord rebuilds a Labware from its serialized shape.  No field
// presence checks are done here; see FromFields for untrusted input.
func FromRecord(rec Record) *Labware {
	well := Well{
		Volume:         rec.Well.Volume,
		Depth:          rec.Well.Depth,
		TopDiameter:    rec.Well.TopDiameter,
		BottomDiameter: rec.Well.BottomDiameter,
	}
	p := rec.Plate
	plate := NewPlate(p.Sterile, p.Skirted, p.EnzymeFree,
		p.Length, p.Width, p.Height, p.WellSpacing, p.WellNum,
		well, p.Composition)
	return NewLabware(rec.Name, plate)
}
