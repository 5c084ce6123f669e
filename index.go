package labindex

import (
	"io/ioutil"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack"
)

// indexName is the file, inside the registry directory, holding the
// name-to-hash mapping.
const indexName = "index"

// Entry maps one registry name to an object hash.
type Entry struct {
	Name string `msgpack:"name"`
	Hash string `msgpack:"hash"`
}

// Index is the ordered name-to-hash mapping.  Entries keep the order
// in which their names were first registered.
type Index struct {
	Entries []Entry `msgpack:"entries"`
}

func (idx *Index) find(name string) int {
	for i, e := range idx.Entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the hash registered under name.
func (idx *Index) Lookup(name string) (hash string, ok bool) {
	i := idx.find(name)
	if i < 0 {
		return "", false
	}
	return idx.Entries[i].Hash, true
}

// Set maps name to hash, keeping name's position if it is already
// present.  It returns the hash name pointed at before, if any.
func (idx *Index) Set(name, hash string) (old string) {
	i := idx.find(name)
	if i < 0 {
		idx.Entries = append(idx.Entries, Entry{Name: name, Hash: hash})
		return ""
	}
	old = idx.Entries[i].Hash
	idx.Entries[i].Hash = hash
	return
}

// Delete drops name and returns the hash it pointed at.
func (idx *Index) Delete(name string) (hash string, ok bool) {
	i := idx.find(name)
	if i < 0 {
		return "", false
	}
	hash = idx.Entries[i].Hash
	idx.Entries = append(idx.Entries[:i], idx.Entries[i+1:]...)
	return hash, true
}

// Refs counts the entries pointing at hash.
func (idx *Index) Refs(hash string) (n int) {
	for _, e := range idx.Entries {
		if e.Hash == hash {
			n++
		}
	}
	return
}

// Names returns the registered names in order.
func (idx *Index) Names() (names []string) {
	names = make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		names = append(names, e.Name)
	}
	return
}

func loadIndex(fn string) (idx *Index, err error) {
	buf, err := ioutil.ReadFile(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "read index")
	}
	idx = &Index{}
	err = msgpack.Unmarshal(buf, idx)
	if err != nil {
		return nil, errors.Wrapf(err, "decode index %s", fn)
	}
	return
}

// saveIndex replaces the index file atomically: readers see either the
// old or the new mapping, never a partial write.
func saveIndex(fn string, idx *Index) (err error) {
	buf, err := msgpack.Marshal(idx)
	if err != nil {
		return errors.Wrapf(err, "encode index")
	}
	err = renameio.WriteFile(fn, buf, WRITE)
	if err != nil {
		return errors.Wrapf(err, "write index %s", fn)
	}
	log.Debugf("wrote index with %d entries", len(idx.Entries))
	return
}
