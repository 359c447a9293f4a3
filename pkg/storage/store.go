// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"io/ioutil"
	"sort"
	"strings"
)

const (
	// OverWrite allows Put to replace an existing object
	OverWrite = false

	// NoOverWrite makes Put fail with status.ErrExists whenever the object exists already
	NoOverWrite = true
)

// Store implementations know how to write entries to a K/V model.
//
// Typically this is something file system-like or an embedded key/value database.
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader, bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) ([]string, string, error)
	Clear(context.Context) error
}

// ReadAll retrieves an object in memory
func ReadAll(ctx context.Context, store Store, key string) ([]byte, error) {
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rdr.Close() }()
	return ioutil.ReadAll(rdr)
}

// PageKeys applies the KeysPrefix pagination rules to a list of keys.
//
// Keys are normalized without a leading "/", filtered by prefix and sorted.
// When a delimiter is provided, keys sharing the same segment up to the first delimiter found
// after the prefix are collapsed into this segment (including the delimiter).
// The page starts at the first key greater or equal to pageToken and returns at most count keys.
// The returned token is the first key of the next page, or an empty string on the last page.
func PageKeys(all []string, pageToken, prefix, delimiter string, count int) ([]string, string) {
	prefix = strings.TrimPrefix(prefix, "/")
	pageToken = strings.TrimPrefix(pageToken, "/")

	seen := make(map[string]struct{}, len(all))
	candidates := make([]string, 0, len(all))
	for _, key := range all {
		key = strings.TrimPrefix(key, "/")
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if delimiter != "" {
			if idx := strings.Index(key[len(prefix):], delimiter); idx >= 0 {
				key = key[:len(prefix)+idx+len(delimiter)]
			}
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, key)
	}
	sort.Strings(candidates)

	start := sort.SearchStrings(candidates, pageToken)
	if start >= len(candidates) {
		return []string{}, ""
	}
	candidates = candidates[start:]
	if count <= 0 || len(candidates) <= count {
		return candidates, ""
	}
	return candidates[:count], candidates[count]
}
