// Copyright © 2018 One Concern

// Package storage provides interface to handle backend storage objects.
//
// This package supports the following backends:
//   - local file system, or any afero.Fs (localfs)
//   - embedded badger key/value database (bdgr)
//
// Any store may be decorated with Instrument to get logs and prometheus metrics
// about the storage calls.
package storage
