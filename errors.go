package labindex

import "fmt"

// MalformedRecordError is returned when an input record is missing a
// required field, or carries a field of the wrong type.  Field is the
// dotted path of the offending field, e.g. "plate.well_num".
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed record: %s", e.Reason)
	}
	if e.Reason == "" {
		return fmt.Sprintf("malformed record: missing field %s", e.Field)
	}
	return fmt.Sprintf("malformed record: field %s: %s", e.Field, e.Reason)
}

// NameNotFoundError is returned when a registry name is not in the index.
type NameNotFoundError struct {
	Name string
}

func (e *NameNotFoundError) Error() string {
	return fmt.Sprintf("no such labware: %s", e.Name)
}

// NotRegistryError is returned when a handle's store directory is gone,
// e.g. after Wipe.
type NotRegistryError struct {
	Dir string
}

func (e *NotRegistryError) Error() string {
	return fmt.Sprintf("not a registry: %s", e.Dir)
}

// CorruptObjectError is returned when an object file can't be decoded or
// no longer hashes to its own file name.
type CorruptObjectError struct {
	Hash   string
	Reason string
}

func (e *CorruptObjectError) Error() string {
	return fmt.Sprintf("corrupt object %s: %s", e.Hash, e.Reason)
}
