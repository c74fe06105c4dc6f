// Package catalog holds the album catalog: the Overview → Album → Image value
// graph, its strict JSON codec, and the Store that reads and writes the
// shared state.json document through an objectstore.Gateway.
//
// Values are immutable. AddImage and AddOrReplaceAlbum return new values and
// never write through to the receiver's backing arrays, so a snapshot taken
// before a mutation stays valid.
//
// Decoding is all-or-nothing: a document with any missing required field is
// rejected with ErrCorruptedCatalog instead of yielding a partial Overview
// that would silently drop albums on the next write.
package catalog
