// Package oplog provides the persisted operation log of a repository.
//
// Every committed transaction appends an operation to the log. An operation records the view
// resulting from the transaction, its description, timing and the operation(s) it was based upon.
//
// Operation ids are K-sortable tokens generated from the operation start time. The current state of
// the repository is given by the op heads: the operations that no other operation is based upon.
package oplog
