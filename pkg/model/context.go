package model

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// Backend is the kind of storage backing the stores of a repository
type Backend string

const (
	// LocalFS stores objects as files on a local file system
	LocalFS Backend = "localfs"

	// Badger stores objects in an embedded badger database
	Badger Backend = "badger"

	// CurrentContextVersion is the version of the context descriptor written by this package
	CurrentContextVersion uint64 = 1
)

// Context describes the storage layout of a repository
type Context struct {
	Name     string  `json:"name" yaml:"name"`
	Backend  Backend `json:"backend" yaml:"backend"`
	Metadata string  `json:"metadata" yaml:"metadata"`
	Blob     string  `json:"blob" yaml:"blob"`
	OpLog    string  `json:"oplog" yaml:"oplog"`
	Version  uint64  `json:"version" yaml:"version"`
	_        struct{}
}

// UnmarshalContext reads a context descriptor
func UnmarshalContext(b []byte) (*Context, error) {
	var c Context
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// MarshalContext writes a context descriptor
func MarshalContext(c *Context) ([]byte, error) {
	return yaml.Marshal(c)
}

// ValidateContext checks that a context descriptor is complete
func ValidateContext(c Context) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("context name is required")
	case c.Backend != LocalFS && c.Backend != Badger:
		return fmt.Errorf("context %s: unsupported backend %q", c.Name, c.Backend)
	case c.Metadata == "", c.Blob == "", c.OpLog == "":
		return fmt.Errorf("context %s: metadata, blob and oplog locations are required", c.Name)
	case c.Version > CurrentContextVersion:
		return fmt.Errorf("context %s: version %d is not supported", c.Name, c.Version)
	default:
		return nil
	}
}
