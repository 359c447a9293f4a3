// Package cafs provides content addressing for repository objects.
//
// All content is identified by its blake2b-512 hash, rendered as a hex string.
// Identical content always yields the same key, which makes writes idempotent and
// allows readers to verify that stored content matches the key it was retrieved with.
package cafs
