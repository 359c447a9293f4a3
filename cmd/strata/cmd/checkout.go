package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/strata/pkg/repo"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <revision>",
	Short: "Update the working copy to another commit",
	Long: `Update the working copy to another commit.

Checking out a closed commit creates a new open commit on top of it. Conflicts found in the
target commit are materialized as files with conflict markers.

An empty working copy commit left behind is pruned.`,
	Aliases: []string{"co"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		var checkout *store.Commit
		err = w.transact(fmt.Sprintf("check out commit %s", args[0]), func(tx *repo.Transaction) error {
			target, err := repo.ResolveCommit(tx.AsRepo(), args[0])
			if err != nil {
				return err
			}
			checkout, err = tx.CheckOut(userSettings, target)
			return err
		})
		if err != nil {
			wrapFatalln("check out", err)
			return
		}
		infoLogger.Printf("Working copy now at: %s", checkout.ID().Short())
	},
}

var newCmd = &cobra.Command{
	Use:   "new [revision]",
	Short: "Create a new open commit on top of another one, and check it out",
	Long: `Create a new open commit on top of a commit, and check it out.

The revision defaults to the working copy commit.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		revision := "@"
		if len(args) > 0 {
			revision = args[0]
		}
		var checkout *store.Commit
		err = w.transact(fmt.Sprintf("new empty commit on top of %s", revision), func(tx *repo.Transaction) error {
			parent, err := repo.ResolveCommit(tx.AsRepo(), revision)
			if err != nil {
				return err
			}
			if parent.ID() == tx.AsRepo().View().Checkout() {
				// the current checkout must not be pruned when it becomes a parent
				closed, err := repo.ForRewriteFrom(userSettings, tx.Store(), parent).SetOpen(false).WriteToTransaction(tx)
				if err != nil {
					return err
				}
				parent = closed
			}
			target, err := repo.ForOpenCommit(userSettings, tx.Store(), parent.ID(), parent.TreeID()).
				SetDescription(params.commit.message).
				WriteToTransaction(tx)
			if err != nil {
				return err
			}
			checkout, err = tx.CheckOut(userSettings, target)
			return err
		})
		if err != nil {
			wrapFatalln("create new commit", err)
			return
		}
		infoLogger.Printf("Working copy now at: %s", checkout.ID().Short())
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the working copy commit and start a new one on top of it",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		var closed, checkout *store.Commit
		err = w.transact("close working copy commit", func(tx *repo.Transaction) error {
			current, err := w.checkout()
			if err != nil {
				return err
			}
			b := repo.ForRewriteFrom(userSettings, tx.Store(), current).SetOpen(false)
			if params.commit.message != "" {
				b.SetDescription(params.commit.message)
			}
			if closed, err = b.WriteToTransaction(tx); err != nil {
				return err
			}
			checkout, err = tx.CheckOut(userSettings, closed)
			return err
		})
		if err != nil {
			wrapFatalln("close commit", err)
			return
		}
		infoLogger.Printf("Closed commit %s", closed.ID().Short())
		infoLogger.Printf("Working copy now at: %s", checkout.ID().Short())
	},
}

func init() {
	addMessageFlag(newCmd)
	addMessageFlag(closeCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(closeCmd)
}
