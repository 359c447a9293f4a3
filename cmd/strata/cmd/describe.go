package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/strata/pkg/repo"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Set the description of a commit",
	Long: `Set the description of a commit. The commit is rewritten: the new commit keeps the same change id,
and the described commit becomes obsolete.`,
	Example: `% strata describe -m "fix the flaky test"
% strata describe -r 0f3a6e -m "add the parser"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		var described *store.Commit
		err = w.transact(fmt.Sprintf("describe commit %s", params.commit.revision), func(tx *repo.Transaction) error {
			c, err := repo.ResolveCommit(tx.AsRepo(), params.commit.revision)
			if err != nil {
				return err
			}
			b := repo.ForRewriteFrom(userSettings, tx.Store(), c).SetDescription(params.commit.message)
			if c.ID() == tx.AsRepo().View().Checkout() {
				described, err = rewriteCheckout(tx, b)
				return err
			}
			described, err = b.WriteToTransaction(tx)
			return err
		})
		if err != nil {
			wrapFatalln("describe commit", err)
			return
		}
		infoLogger.Printf("Described commit: %s", described.ID().Short())
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Abandon a commit",
	Long: `Abandon a commit. The commit is rewritten as a pruned commit, which is hidden from the log.
Its descendants become orphans.

Pruning the working copy commit checks out a new commit on top of its parent.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		var pruned *store.Commit
		err = w.transact(fmt.Sprintf("prune commit %s", params.commit.revision), func(tx *repo.Transaction) error {
			c, err := repo.ResolveCommit(tx.AsRepo(), params.commit.revision)
			if err != nil {
				return err
			}
			if pruned, err = repo.ForRewriteFrom(userSettings, tx.Store(), c).SetPruned(true).WriteToTransaction(tx); err != nil {
				return err
			}
			if c.ID() != tx.AsRepo().View().Checkout() {
				return nil
			}
			parents, err := c.Parents()
			if err != nil {
				return err
			}
			if len(parents) == 0 {
				return fmt.Errorf("cannot prune the root commit %s", c.ID().Short())
			}
			_, err = tx.CheckOut(userSettings, parents[0])
			return err
		})
		if err != nil {
			wrapFatalln("prune commit", err)
			return
		}
		infoLogger.Printf("Pruned commit: %s", pruned.ID().Short())
	},
}

func init() {
	addMessageFlag(describeCmd)
	addRevisionFlag(describeCmd)
	addRevisionFlag(pruneCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(pruneCmd)
}
