// Package model describes the base objects manipulated by strata.
//
// The package exposes a serializable model for the repository metadata.
//
// The object model for strata is composed of:
//
//  Commits:
//    A commit points to a root tree and to its parents. A commit is either open (it may still be
//    amended by rewriting it) or closed (finalized). Rewriting a commit produces a new commit which
//    lists the former one as a predecessor. All rewrites of a commit share the same change id.
//
//  Trees:
//    A flat mapping of slash-separated paths to tree values: files, symlinks or unresolved conflicts.
//
//  Conflicts:
//    An unresolved merge at some path, described by the tree values removed and added by each side.
//
//  Views:
//    The set of head commits and the checkout commit, i.e. the commit the user is working on.
//
//  Operations:
//    An append-only log entry capturing the view resulting from one committed transaction.
//
//  Contexts:
//    The storage layout of a repository: which backend holds metadata, file contents and the operation log.
package model
