// Package store implements the content-addressable object store of a repository.
//
// Commits, trees and conflicts are stored as YAML descriptors on the metadata store; file contents are
// stored on the blob store. Every object is addressed by the hex-encoded blake2b-512 hash of its
// serialized form. Writes are idempotent: writing the same object twice yields the same id.
package store
