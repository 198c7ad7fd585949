// Package blocks implements the structured content-block engine used for page
// bodies: a closed vocabulary of block value types, ordered schemas of block
// definitions, documents made of tagged nodes, shape and field validation,
// a JSON codec for the persisted tree and anchor extraction for headings.
//
// Schemas are built once during application start and are immutable
// afterwards. A *Schema may be shared by any number of goroutines without
// synchronization. Documents are plain values; the engine never mutates a
// document it is handed, but callers must not mutate a document while it is
// being validated, encoded or scanned for anchors.
//
// Value Types
//
// Every block value is one of the variants listed in ValueType. Leaf values
// (Text, RichText, Image, ImageWithCaption, Link, EventList) hold data;
// the Columns variant is the only container and holds a nested Document
// that must conform to the inner schema of its definition. Adding a block
// type means adding a ValueType constant, a Value variant and the matching
// arms in the validator and codec switches.
package blocks
