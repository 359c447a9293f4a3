package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type opEntry struct {
	ID          string    `json:"id" yaml:"id"`
	Parents     []string  `json:"parents,omitempty" yaml:"parents,omitempty"`
	Description string    `json:"description" yaml:"description"`
	StartTime   time.Time `json:"startTime" yaml:"startTime"`
	EndTime     time.Time `json:"endTime" yaml:"endTime"`
	User        string    `json:"user" yaml:"user"`
	Checkout    string    `json:"checkout" yaml:"checkout"`
	Heads       int       `json:"heads" yaml:"heads"`
	Current     bool      `json:"current,omitempty" yaml:"current,omitempty"`
}

type opPage struct {
	Operations []opEntry `json:"operations" yaml:"operations"`
	Next       string    `json:"next,omitempty" yaml:"next,omitempty"`
}

var opCmd = &cobra.Command{
	Use:   "op",
	Short: "Commands to inspect the operation log",
	Long: `Every command changing the repository records an operation in the operation log.
An operation points to the view of the repository it produced: its heads and its checkout.`,
}

var opLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List the operations recorded in the operation log",
	Long: `List the operations recorded in the operation log, in chronological order.

Operations are listed by pages. Use --from with the reported next id to list the following page.`,
	Example: `% strata op log --format json --limit 10`,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		w, err := openWorkspace(ctx)
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		operations, next, err := w.repo.OpLog().ListOperations(ctx, params.op.from, params.op.limit)
		if err != nil {
			wrapFatalln("list operations", err)
			return
		}
		page := opPage{Operations: make([]opEntry, 0, len(operations)), Next: next}
		for _, op := range operations {
			e := opEntry{
				ID:          string(op.ID),
				Description: op.Descriptor.Description,
				StartTime:   op.Descriptor.StartTime,
				EndTime:     op.Descriptor.EndTime,
				User:        fmt.Sprintf("%s@%s", op.Descriptor.Username, op.Descriptor.Hostname),
				Checkout:    string(op.View.Checkout),
				Heads:       len(op.View.HeadIDs),
				Current:     op.ID == w.repo.Operation().ID,
			}
			for _, p := range op.Descriptor.Parents {
				e.Parents = append(e.Parents, string(p))
			}
			page.Operations = append(page.Operations, e)
		}

		err = printData(page, func(out io.Writer, _ interface{}) error {
			for _, e := range page.Operations {
				marker := "o"
				if e.Current {
					marker = color.New(color.Bold).Sprint("@")
				}
				fmt.Fprintf(out, "%s %s %s %s %s\n", marker,
					color.BlueString(e.ID),
					e.User,
					e.StartTime.Format(time.RFC3339),
					color.HiBlackString("(%s)", e.EndTime.Sub(e.StartTime).Round(time.Millisecond)),
				)
				fmt.Fprintf(out, "| %s\n", e.Description)
			}
			if page.Next != "" {
				fmt.Fprintf(out, "more operations: --from %s\n", page.Next)
			}
			return nil
		})
		if err != nil {
			wrapFatalln("print operations", err)
		}
	},
}

func init() {
	addOpPagingFlags(opLogCmd)
	addFormatFlag(opLogCmd)
	opCmd.AddCommand(opLogCmd)
	rootCmd.AddCommand(opCmd)
}
