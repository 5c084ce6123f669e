/*

Labindex is a local registry of laboratory labware types: multi-well
plates and the wells they carry.  Each type is stored once, under the
hash of its contents, and filed under one or more human-readable names.

Vocabulary:

- workdir: directory the registry belongs to
- dir: the .labware directory inside workdir holding everything below
- record: plain nested fields describing one labware type (name, plate, well)
- canonical encoding: fixed-order text rendering of a record used for hashing
- id: hex sha256 of the canonical encoding; equal records have equal ids
- object: one record stored as a file named by its id; write-once
- index: ordered list of name to id entries; replaced atomically on change
- name: registry key chosen by the user; defaults to the labware's own name
- orphan: an object no index entry refers to

*/

package labindex
