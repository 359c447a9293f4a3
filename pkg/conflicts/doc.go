// Package conflicts materializes unresolved conflicts into file contents.
//
// A conflict between two versions of a file sharing a common base is resolved with a 3-way line merge.
// Changes that do not overlap are merged cleanly. Overlapping changes are rendered as a conflict block:
//
//	<<<<<<<
//	-------
//	base lines
//	+++++++
//	left lines
//	+++++++
//	right lines
//	>>>>>>>
//
// Any other shape of conflict (more sides, symlinks, nested conflicts) is rendered as a textual summary.
package conflicts
