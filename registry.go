package labindex

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DirName is the store directory created inside a working directory.
const DirName = ".labware"

// Registry is a labware store rooted at one directory.  Records are
// stored once per distinct id; the index maps registry names to ids, so
// several names may share one object.  A Registry is not safe for
// concurrent use, and two Registries must not be open on the same
// directory at the same time.
type Registry struct {
	dir   string
	index string
	// decoded objects by hash; objects are immutable once written, so
	// entries never go stale
	objects *cache.Cache
}

// Open returns the registry in workdir, creating an empty one if none
// exists yet.  An existing store is loaded as-is.
func Open(workdir string) (reg *Registry, err error) {
	workdir, err = filepath.Abs(workdir)
	if err != nil {
		return
	}
	dir := filepath.Join(workdir, DirName)
	reg = &Registry{
		dir:     dir,
		index:   filepath.Join(dir, indexName),
		objects: cache.New(cache.NoExpiration, 0),
	}
	err = mkdir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "create registry %s", dir)
	}
	if !canstat(reg.index) {
		err = saveIndex(reg.index, &Index{})
		if err != nil {
			return nil, err
		}
		log.Debugf("created registry in %s", dir)
	}
	return
}

// Dir returns the absolute path of the store directory.
func (reg *Registry) Dir() string {
	return reg.dir
}

func (reg *Registry) load() (idx *Index, err error) {
	if !canstat(reg.dir) {
		return nil, &NotRegistryError{Dir: reg.dir}
	}
	return loadIndex(reg.index)
}

// Put stores lw and files it under name, replacing whatever name
// pointed at before.  An empty name defaults to the labware's own name.
func (reg *Registry) Put(name string, lw *Labware) (err error) {
	if lw == nil {
		return &MalformedRecordError{Reason: "no labware"}
	}
	if lw.Name() == "" {
		return &MalformedRecordError{Field: "name", Reason: "empty"}
	}
	if name == "" {
		name = lw.Name()
	}
	idx, err := reg.load()
	if err != nil {
		return
	}

	lw.Rehash()
	obj, err := putObject(reg.dir, lw)
	if err != nil {
		return
	}
	old := idx.Set(name, obj.Hash)
	err = saveIndex(reg.index, idx)
	if err != nil {
		return
	}
	log.Debugf("put %s -> %s", name, obj.Hash)

	if old != "" && old != obj.Hash && idx.Refs(old) == 0 {
		err = reg.drop(old)
	}
	return
}

// PutFields builds a Labware from raw fields and stores it under name.
func (reg *Registry) PutFields(name string, f Fields) (err error) {
	lw, err := FromFields(f)
	if err != nil {
		return
	}
	return reg.Put(name, lw)
}

// PutJSON builds a Labware from a JSON record and stores it under name.
func (reg *Registry) PutJSON(name string, buf []byte) (err error) {
	lw, err := FromJSON(buf)
	if err != nil {
		return
	}
	return reg.Put(name, lw)
}

// PutFile loads a JSON or YAML record file and stores it under name.
func (reg *Registry) PutFile(name, fn string) (err error) {
	lw, err := LoadFile(fn)
	if err != nil {
		return
	}
	return reg.Put(name, lw)
}

// Resolve returns the object hash registered under name.
func (reg *Registry) Resolve(name string) (hash string, err error) {
	idx, err := reg.load()
	if err != nil {
		return
	}
	hash, ok := idx.Lookup(name)
	if !ok {
		return "", &NameNotFoundError{Name: name}
	}
	return
}

// Get returns the labware registered under name.
func (reg *Registry) Get(name string) (lw *Labware, err error) {
	hash, err := reg.Resolve(name)
	if err != nil {
		return
	}
	if v, ok := reg.objects.Get(hash); ok {
		cp := *v.(*Labware)
		return &cp, nil
	}
	lw, err = getObject(reg.dir, hash)
	if err != nil {
		return nil, err
	}
	reg.objects.Set(hash, lw, cache.NoExpiration)
	cp := *lw
	return &cp, nil
}

// Remove drops name from the index.  The object it pointed at is
// deleted only when no other name still refers to it.
func (reg *Registry) Remove(name string) (err error) {
	idx, err := reg.load()
	if err != nil {
		return
	}
	hash, ok := idx.Delete(name)
	if !ok {
		return &NameNotFoundError{Name: name}
	}
	err = saveIndex(reg.index, idx)
	if err != nil {
		return
	}
	log.Debugf("removed %s -> %s", name, hash)

	refs := idx.Refs(hash)
	if refs > 0 {
		log.Debugf("object %s still has %d names", hash, refs)
		return
	}
	return reg.drop(hash)
}

func (reg *Registry) drop(hash string) (err error) {
	reg.objects.Delete(hash)
	err = rmObject(reg.dir, hash)
	if os.IsNotExist(errors.Cause(err)) {
		return nil
	}
	return
}

// List returns the registered names in registration order.  It never
// fails; a store that can't be read lists as empty.
func (reg *Registry) List() (names []string) {
	idx, err := reg.load()
	if err != nil {
		log.Debugf("list: %v", err)
		return []string{}
	}
	return idx.Names()
}

// Wipe deletes the whole store.  This is irreversible.  The handle
// can't be used afterwards; Open the working directory again to start
// over with an empty store.
func (reg *Registry) Wipe() (err error) {
	err = os.RemoveAll(reg.dir)
	if err != nil {
		return errors.Wrapf(err, "wipe %s", reg.dir)
	}
	reg.objects.Flush()
	log.Debugf("wiped %s", reg.dir)
	return
}

// Fsck checks that every name resolves to a readable object whose
// content matches its hash, and reports object files no name refers
// to.  Each problem is one line of text.
func (reg *Registry) Fsck() (problems []string, err error) {
	idx, err := reg.load()
	if err != nil {
		return
	}
	checked := map[string]bool{}
	for _, e := range idx.Entries {
		if checked[e.Hash] {
			continue
		}
		checked[e.Hash] = true
		_, err := getObject(reg.dir, e.Hash)
		switch {
		case err == nil:
		case os.IsNotExist(errors.Cause(err)):
			problems = append(problems, fmt.Sprintf("missing object %s for %s", e.Hash, e.Name))
		default:
			problems = append(problems, fmt.Sprintf("%s: %v", e.Name, err))
		}
	}
	orphans, err := reg.orphans(idx)
	if err != nil {
		return
	}
	for _, hash := range orphans {
		problems = append(problems, fmt.Sprintf("orphan object %s", hash))
	}
	return
}

// Prune deletes object files that no name refers to, such as those
// left behind when a put was interrupted between writing the object
// and replacing the index.
func (reg *Registry) Prune() (removed []string, err error) {
	idx, err := reg.load()
	if err != nil {
		return
	}
	orphans, err := reg.orphans(idx)
	if err != nil {
		return
	}
	for _, hash := range orphans {
		err = reg.drop(hash)
		if err != nil {
			return
		}
		removed = append(removed, hash)
	}
	return
}

func (reg *Registry) orphans(idx *Index) (hashes []string, err error) {
	infos, err := ioutil.ReadDir(reg.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", reg.dir)
	}
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !isHash(name) {
			continue
		}
		if idx.Refs(name) == 0 {
			hashes = append(hashes, name)
		}
	}
	return
}

func (reg *Registry) String() string {
	var b strings.Builder
	b.WriteString("\nLabware Registry\n________________\n")
	for _, name := range reg.List() {
		b.WriteString(name + "\n")
	}
	return b.String()
}
