// Package snapshot saves and restores the persistable signals of a scope
// tree.
//
// A snapshot is a small binary container:
//
//	magic "RSNP" | version (1 byte) | compression tag (1 byte) |
//	uncompressed size (uvarint) | BLAKE3 keyed digest (32 bytes) | payload
//
// The payload is the deterministic CBOR encoding of a Document,
// optionally compressed with LZ4 or zstd. The digest covers the
// uncompressed payload and is verified on decode, so a snapshot that was
// truncated or modified is rejected before any signal is touched.
//
// Snapshots are kept in a Store: MemoryStore, FileStore or S3Store.
//
//	doc, _ := snapshot.Capture(root)
//	data, _ := snapshot.Encode(doc, snapshot.CompressionZstd)
//	_ = store.Put(ctx, "before-upgrade", data)
package snapshot
