package labindex

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/vmihailenco/msgpack"
)

// file modes
const (
	READ  = 0444
	WRITE = 0644
)

// objectHeader is prepended to every object file so that a stray file
// that happens to carry a hash-shaped name is never taken for a record.
const objectHeader = "labware\n"

// object is a stored Labware payload at a content-addressed path.
// Object files are write-once: once renamed into place they are made
// read-only and never rewritten.
type object struct {
	*Path
}

// putObject stores lw at the path named by its id.  An existing file
// at that path already holds the same record and is left alone.
func putObject(dir string, lw *Labware) (obj *object, err error) {
	defer Return(&err)

	path, err := Path{}.New(dir, lw.ID())
	Ck(err)
	obj = &object{Path: path}

	if exists(path.Abs) {
		log.Debugf("object %s already stored", path.Hash)
		return
	}

	body, err := msgpack.Marshal(lw.Record())
	Ck(err)
	buf := append([]byte(objectHeader), body...)

	// write to a temp file in dir, then rename over path.Abs
	err = renameio.WriteFile(path.Abs, buf, READ)
	if err != nil {
		return nil, errors.Wrapf(err, "write object %s", path.Hash)
	}
	log.Debugf("wrote object %s (%d bytes)", path.Hash, len(buf))
	return
}

// getObject loads the object with the given hash, checking both the
// header and that the decoded record still hashes to its file name.
func getObject(dir, hash string) (lw *Labware, err error) {
	path, err := Path{}.New(dir, hash)
	if err != nil {
		return
	}
	buf, err := ioutil.ReadFile(path.Abs)
	if err != nil {
		return nil, errors.Wrapf(err, "read object %s", hash)
	}
	if !bytes.HasPrefix(buf, []byte(objectHeader)) {
		return nil, &CorruptObjectError{Hash: hash, Reason: "malformed header"}
	}
	var rec Record
	err = msgpack.Unmarshal(buf[len(objectHeader):], &rec)
	if err != nil {
		return nil, &CorruptObjectError{Hash: hash, Reason: err.Error()}
	}
	lw = FromRecord(rec)
	if lw.ID() != hash {
		return nil, &CorruptObjectError{
			Hash:   hash,
			Reason: fmt.Sprintf("content hashes to %s", lw.ID()),
		}
	}
	return
}

// rmObject deletes the object file for hash.
func rmObject(dir, hash string) (err error) {
	path, err := Path{}.New(dir, hash)
	if err != nil {
		return
	}
	err = os.Remove(path.Abs)
	if err != nil {
		return errors.Wrapf(err, "remove object %s", hash)
	}
	log.Debugf("removed object %s", hash)
	return
}
