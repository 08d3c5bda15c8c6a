// Package dirstore implements a document store that maps directly onto the
// filesystem: a database is a root directory, a collection is a subdirectory,
// and a document is a JSON file named by its identifier.
//
// The engine targets single-process, local-first use. Every read is a
// sequential directory scan (O(n) in collection size); there is no indexing,
// no query language beyond flat equality, and no multi-document atomicity.
// A metadata record inside the root directory proves the directory belongs
// to this engine and indexes the collections it owns.
package dirstore

// Document is the unit of storage: an arbitrary JSON-serializable field
// mapping. The reserved "_id" field, when present, names the file the
// document is stored in.
type Document map[string]any

// clone returns a shallow copy so stored documents never alias caller maps.
func (d Document) clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ID returns the document's "_id" field if it is a string.
func (d Document) ID() (string, bool) {
	v, ok := d["_id"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
