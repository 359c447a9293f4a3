package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/spf13/cobra"
)

// fileChange is a difference between the working copy and its parent
type fileChange struct {
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path" yaml:"path"`
}

const (
	changeAdded    = "A"
	changeModified = "M"
	changeRemoved  = "R"
	changeConflict = "C"
)

type statusResult struct {
	Checkout    string       `json:"checkout" yaml:"checkout"`
	ChangeID    string       `json:"changeId" yaml:"changeId"`
	Description string       `json:"description" yaml:"description"`
	Parents     []string     `json:"parents" yaml:"parents"`
	Changes     []fileChange `json:"changes" yaml:"changes"`
}

// diffTrees lists the paths changed from one tree to another, in path order
func diffTrees(from, to *store.Tree) []fileChange {
	var changes []fileChange
	for _, entry := range to.Entries() {
		previous, ok := from.Value(entry.Path)
		switch {
		case entry.Value.Kind == model.Conflict:
			changes = append(changes, fileChange{Kind: changeConflict, Path: entry.Path})
		case !ok:
			changes = append(changes, fileChange{Kind: changeAdded, Path: entry.Path})
		case previous != entry.Value:
			changes = append(changes, fileChange{Kind: changeModified, Path: entry.Path})
		}
	}
	for _, entry := range from.Entries() {
		if _, ok := to.Value(entry.Path); !ok {
			changes = append(changes, fileChange{Kind: changeRemoved, Path: entry.Path})
		}
	}
	return changes
}

func firstLine(description string) string {
	line := strings.SplitN(description, "\n", 2)[0]
	if line == "" {
		return "(no description set)"
	}
	return line
}

func colorChange(kind string) string {
	switch kind {
	case changeAdded:
		return color.GreenString(kind)
	case changeRemoved:
		return color.RedString(kind)
	case changeConflict:
		return color.HiRedString(kind)
	default:
		return color.YellowString(kind)
	}
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the working copy commit and its changes",
	Aliases: []string{"st"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		result, err := workingCopyStatus(w)
		if err != nil {
			wrapFatalln("get status", err)
			return
		}
		err = printData(result, func(out io.Writer, _ interface{}) error {
			fmt.Fprintf(out, "Working copy : %s %s %s\n",
				color.BlueString(model.CommitID(result.Checkout).Short()),
				color.MagentaString(model.ChangeID(result.ChangeID).Short()),
				firstLine(result.Description))
			for _, parent := range result.Parents {
				fmt.Fprintf(out, "Parent commit: %s\n", color.BlueString(model.CommitID(parent).Short()))
			}
			if len(result.Changes) == 0 {
				fmt.Fprintln(out, "The working copy has no changes.")
				return nil
			}
			fmt.Fprintln(out, "Working copy changes:")
			for _, change := range result.Changes {
				fmt.Fprintf(out, "%s %s\n", colorChange(change.Kind), change.Path)
			}
			return nil
		})
		if err != nil {
			wrapFatalln("print status", err)
		}
	},
}

func workingCopyStatus(w *workspace) (*statusResult, error) {
	checkout, err := w.checkout()
	if err != nil {
		return nil, err
	}
	tree, err := checkout.Tree()
	if err != nil {
		return nil, err
	}
	base, err := w.repo.Store().GetTree(w.repo.Store().EmptyTreeID())
	if err != nil {
		return nil, err
	}
	result := &statusResult{
		Checkout:    string(checkout.ID()),
		ChangeID:    string(checkout.ChangeID()),
		Description: checkout.Description(),
	}
	parents, err := checkout.Parents()
	if err != nil {
		return nil, err
	}
	for i, parent := range parents {
		result.Parents = append(result.Parents, string(parent.ID()))
		if i == 0 {
			if base, err = parent.Tree(); err != nil {
				return nil, err
			}
		}
	}
	result.Changes = diffTrees(base, tree)
	return result, nil
}

func init() {
	addFormatFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
