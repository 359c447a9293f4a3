package conflicts

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/store"
)

const (
	startMarker  = "<<<<<<<\n"
	removeMarker = "-------\n"
	addMarker    = "+++++++\n"
	endMarker    = ">>>>>>>\n"

	complexConflict = "Unresolved complex conflict.\n"
)

// Materialize writes the content of a conflict located at some path
func Materialize(s *store.Store, pth string, conflict model.ConflictDescriptor, w io.Writer) error {
	if !isFileMerge(conflict) {
		return describe(conflict, w)
	}

	base, err := readFile(s, pth, conflict.Removes[0].Value)
	if err != nil {
		return err
	}
	left, err := readFile(s, pth, conflict.Adds[0].Value)
	if err != nil {
		return err
	}
	right, err := readFile(s, pth, conflict.Adds[1].Value)
	if err != nil {
		return err
	}

	_, err = w.Write(Merge(base, left, right))
	return err
}

func isFileMerge(conflict model.ConflictDescriptor) bool {
	if len(conflict.Removes) != 1 || len(conflict.Adds) != 2 {
		return false
	}
	for _, parts := range [][]model.ConflictPart{conflict.Removes, conflict.Adds} {
		for _, part := range parts {
			if part.Value.Kind != model.NormalFile {
				return false
			}
		}
	}
	return true
}

func readFile(s *store.Store, pth string, value model.TreeValue) ([]byte, error) {
	rdr, err := s.ReadFile(pth, model.FileID(value.ID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rdr.Close() }()
	return ioutil.ReadAll(rdr)
}

func describe(conflict model.ConflictDescriptor, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(complexConflict)
	for _, part := range conflict.Removes {
		fmt.Fprintf(&buf, "Removing %s\n", describePart(part))
	}
	for _, part := range conflict.Adds {
		fmt.Fprintf(&buf, "Adding %s\n", describePart(part))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func describePart(part model.ConflictPart) string {
	switch part.Value.Kind {
	case model.NormalFile:
		if part.Value.Executable {
			return fmt.Sprintf("executable file with id %s", part.Value.ID)
		}
		return fmt.Sprintf("file with id %s", part.Value.ID)
	case model.Symlink:
		return fmt.Sprintf("symlink with id %s", part.Value.ID)
	default:
		return fmt.Sprintf("conflict with id %s", part.Value.ID)
	}
}
