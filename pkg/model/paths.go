package model

import (
	"fmt"
	"strings"
)

const (
	contextDescriptorFile = "context.yaml"

	commitsPrefix    = "commits"
	treesPrefix      = "trees"
	conflictsPrefix  = "conflicts"
	filesPrefix      = "files"
	viewsPrefix      = "views"
	operationsPrefix = "operations"
	opHeadsPrefix    = "op_heads"
)

// ObjectKind is the kind of object addressed by a store key
type ObjectKind string

// Object kinds, named after their key prefix
const (
	KindCommit    ObjectKind = commitsPrefix
	KindTree      ObjectKind = treesPrefix
	KindConflict  ObjectKind = conflictsPrefix
	KindFile      ObjectKind = filesPrefix
	KindView      ObjectKind = viewsPrefix
	KindOperation ObjectKind = operationsPrefix
	KindOpHead    ObjectKind = opHeadsPrefix
)

// KeyComponents are the parts of a parsed store key
type KeyComponents struct {
	Kind ObjectKind
	ID   string
}

// GetKeyComponents parses a store key such as "commits/{id}".
func GetKeyComponents(key string) (KeyComponents, error) {
	cs := strings.SplitN(strings.TrimPrefix(key, "/"), "/", 2)
	if len(cs) != 2 || cs[1] == "" || strings.Contains(cs[1], "/") {
		return KeyComponents{}, fmt.Errorf("key is invalid: expect key to have 2 parts: %s", key)
	}
	switch kind := ObjectKind(cs[0]); kind {
	case KindCommit, KindTree, KindConflict, KindFile, KindView, KindOperation, KindOpHead:
		return KeyComponents{Kind: kind, ID: cs[1]}, nil
	default:
		return KeyComponents{}, fmt.Errorf("key is invalid: unknown object kind %q: %s", cs[0], key)
	}
}

// GetPathToContext yields the key of the context descriptor of a repository
func GetPathToContext() string {
	return contextDescriptorFile
}

// GetPathToCommit yields the key of a commit descriptor
func GetPathToCommit(id CommitID) string {
	return fmt.Sprint(commitsPrefix, "/", id)
}

// GetPathToTree yields the key of a tree descriptor
func GetPathToTree(id TreeID) string {
	return fmt.Sprint(treesPrefix, "/", id)
}

// GetPathToConflict yields the key of a conflict descriptor
func GetPathToConflict(id ConflictID) string {
	return fmt.Sprint(conflictsPrefix, "/", id)
}

// GetPathToFile yields the key of file contents
func GetPathToFile(id FileID) string {
	return fmt.Sprint(filesPrefix, "/", id)
}

// GetPathToView yields the key of a view descriptor
func GetPathToView(id ViewID) string {
	return fmt.Sprint(viewsPrefix, "/", id)
}

// GetPathToOperation yields the key of an operation descriptor
func GetPathToOperation(id OperationID) string {
	return fmt.Sprint(operationsPrefix, "/", id)
}

// GetPathToOpHead yields the key marking an operation as a head of the operation log
func GetPathToOpHead(id OperationID) string {
	return fmt.Sprint(opHeadsPrefix, "/", id)
}

// GetOpHeadsPrefix yields the key prefix of all op heads
func GetOpHeadsPrefix() string {
	return opHeadsPrefix + "/"
}

// GetOperationsPrefix yields the key prefix of all operations
func GetOperationsPrefix() string {
	return operationsPrefix + "/"
}
