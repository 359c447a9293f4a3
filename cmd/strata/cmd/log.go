package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/oneconcern/strata/pkg/evolution"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/repo"
	"github.com/spf13/cobra"
)

type logEntry struct {
	ID          string    `json:"id" yaml:"id"`
	ChangeID    string    `json:"changeId" yaml:"changeId"`
	Parents     []string  `json:"parents,omitempty" yaml:"parents,omitempty"`
	Description string    `json:"description" yaml:"description"`
	Author      string    `json:"author" yaml:"author"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Checkout    bool      `json:"checkout,omitempty" yaml:"checkout,omitempty"`
	Open        bool      `json:"open,omitempty" yaml:"open,omitempty"`
	Pruned      bool      `json:"pruned,omitempty" yaml:"pruned,omitempty"`
	Obsolete    bool      `json:"obsolete,omitempty" yaml:"obsolete,omitempty"`
	Orphan      bool      `json:"orphan,omitempty" yaml:"orphan,omitempty"`
	Divergent   bool      `json:"divergent,omitempty" yaml:"divergent,omitempty"`
	Successors  []string  `json:"successors,omitempty" yaml:"successors,omitempty"`
	RewrittenAs []string  `json:"rewrittenAs,omitempty" yaml:"rewrittenAs,omitempty"`
}

func (e logEntry) markers() string {
	var markers []string
	if e.Open {
		markers = append(markers, color.GreenString("open"))
	}
	if e.Pruned {
		markers = append(markers, color.HiBlackString("pruned"))
	}
	if e.Obsolete {
		markers = append(markers, color.HiBlackString("obsolete"))
	}
	if len(e.RewrittenAs) > 0 {
		short := make([]string, 0, len(e.RewrittenAs))
		for _, id := range e.RewrittenAs {
			short = append(short, model.CommitID(id).Short())
		}
		markers = append(markers, color.HiBlackString("rewritten as %s", strings.Join(short, ",")))
	}
	if e.Orphan {
		markers = append(markers, color.RedString("orphan"))
	}
	if e.Divergent {
		markers = append(markers, color.RedString("divergent"))
	}
	return strings.Join(markers, " ")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the commit history",
	Long: `Show the commits reachable from the heads of the repository, most recent first.

Obsolete and pruned commits are hidden unless --all is given. The working copy commit is marked with @.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		entries, err := listLog(w.repo, params.log.all)
		if err != nil {
			wrapFatalln("list commits", err)
			return
		}
		err = printData(entries, func(out io.Writer, _ interface{}) error {
			for _, e := range entries {
				marker := "o"
				if e.Checkout {
					marker = color.New(color.Bold).Sprint("@")
				}
				fmt.Fprintf(out, "%s %s %s %s %s %s\n", marker,
					color.BlueString(model.CommitID(e.ID).Short()),
					color.MagentaString(model.ChangeID(e.ChangeID).Short()),
					e.Author,
					e.Timestamp.Format(time.RFC3339),
					e.markers(),
				)
				fmt.Fprintf(out, "| %s\n", firstLine(e.Description))
			}
			return nil
		})
		if err != nil {
			wrapFatalln("print log", err)
		}
	},
}

func listLog(r repo.Repo, all bool) ([]logEntry, error) {
	commits, err := repo.Commits(r)
	if err != nil {
		return nil, err
	}
	evo := r.Evolution()
	checkout := r.View().Checkout()

	entries := make([]logEntry, 0, len(commits))
	for _, c := range commits {
		e := logEntry{
			ID:          string(c.ID()),
			ChangeID:    string(c.ChangeID()),
			Description: c.Description(),
			Author:      c.Author().Email,
			Timestamp:   c.Committer().Timestamp,
			Checkout:    c.ID() == checkout,
			Open:        c.IsOpen(),
			Pruned:      c.IsPruned(),
		}
		for _, p := range c.ParentIDs() {
			e.Parents = append(e.Parents, string(p))
		}
		if e.Obsolete, err = evo.IsObsolete(c.ID()); err != nil {
			return nil, err
		}
		if (e.Obsolete || e.Pruned) && !all && !e.Checkout {
			continue
		}
		if e.Obsolete {
			if e.Successors, e.RewrittenAs, err = rewrites(evo, c.ID()); err != nil {
				return nil, err
			}
		}
		if e.Orphan, err = evo.IsOrphan(c.ID()); err != nil {
			return nil, err
		}
		if e.Divergent, err = evo.IsDivergent(c.ChangeID()); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// rewrites yields the commits directly rewriting an obsolete commit, then the live commits it ends up as
func rewrites(e evolution.Evolution, id model.CommitID) ([]string, []string, error) {
	direct, err := e.Successors(id)
	if err != nil {
		return nil, nil, err
	}
	live, err := e.NewSuccessors(id)
	if err != nil {
		return nil, nil, err
	}
	return commitStrings(direct), commitStrings(live), nil
}

func commitStrings(ids []model.CommitID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func init() {
	addAllFlag(logCmd)
	addFormatFlag(logCmd)
	rootCmd.AddCommand(logCmd)
}
