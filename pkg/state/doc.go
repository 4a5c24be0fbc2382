// Package state persists normalized widget configurations.
//
// A Store loads and saves one snapshot per Ref, where a Ref names the merchant
// (optionally scoped to a tenant) the configuration belongs to. Publisher sits
// on top of a Store: it normalizes and validates legacy input before saving,
// stamps snapshot metadata, and guards concurrent edits with ETags.
//
// Data flow:
//
//	RawConfig -> Normalizer.Normalize -> Record -> Store.Save
//
// Keys:
//
//	Ref.Identifier() yields `merchant/<id>` or `tenant/<tenant>/merchant/<id>`,
//	which MemoryStore uses directly. Other adapters may map it onto their own
//	key space.
package state
