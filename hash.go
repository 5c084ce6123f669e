package labindex

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"syscall"
)

// DefaultAlgo is the digest used for labware ids.
const DefaultAlgo = "sha256"

// canonVersion heads every canonical encoding.  Bump it if the field
// list or formatting below ever changes; old ids will no longer match.
const canonVersion = "labware v1"

func newHash(algo string) (h hash.Hash, err error) {
	switch algo {
	case "sha256":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	default:
		err = fmt.Errorf("%w: %s", syscall.ENOSYS, algo)
	}
	return
}

// Hash returns the binary digest of buf using algo.
func Hash(algo string, buf []byte) (binhash []byte, err error) {
	h, err := newHash(algo)
	if err != nil {
		return
	}
	_, err = h.Write(buf)
	if err != nil {
		return
	}
	return h.Sum(nil), nil
}

func bin2hex(bin []byte) string {
	return hex.EncodeToString(bin)
}

// Canonical returns the field-ordered encoding of lw that its id is
// computed from.  One "key value" line per field, in a fixed order,
// after a version line.
func Canonical(lw *Labware) []byte {
	p := lw.plate
	w := p.Well
	var b strings.Builder
	line := func(key, val string) {
		b.WriteString(key)
		b.WriteByte(' ')
		b.WriteString(val)
		b.WriteByte('\n')
	}
	b.WriteString(canonVersion + "\n")
	line("name", strconv.Quote(lw.name))
	line("plate.sterile", strconv.FormatBool(p.Sterile))
	line("plate.skirted", strconv.FormatBool(p.Skirted))
	line("plate.enzyme_free", strconv.FormatBool(p.EnzymeFree))
	line("plate.length", formatFloat(p.Length))
	line("plate.width", formatFloat(p.Width))
	line("plate.height", formatFloat(p.Height))
	line("plate.well_spacing", formatFloat(p.WellSpacing))
	line("plate.well_num", strconv.Itoa(p.WellNum))
	line("plate.composition", strconv.Quote(p.Composition))
	line("well.volume", formatFloat(w.Volume))
	line("well.depth", formatFloat(w.Depth))
	line("well.top_diameter", formatFloat(w.TopDiameter))
	line("well.bottom_diameter", formatFloat(w.BottomDiameter))
	return []byte(b.String())
}

// formatFloat renders f in shortest round-trip form.  -0 is written as
// 0 since the two compare equal.
func formatFloat(f float64) string {
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// hexid computes the printable id of lw.
func hexid(lw *Labware) string {
	binhash, err := Hash(DefaultAlgo, Canonical(lw))
	if err != nil {
		// DefaultAlgo is always supported
		panic(err)
	}
	return bin2hex(binhash)
}
