package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oneconcern/strata/pkg/conflicts"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/repo"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Commands to manage the files of a commit",
}

var filePutCmd = &cobra.Command{
	Use:   "put <path> <local file>",
	Short: "Write a file into the working copy commit",
	Long: `Write the content of a local file at some path of the working copy commit.
The working copy commit is rewritten with the new tree. Use "-" to read the content from stdin.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		pth := model.CleanRepoPath(args[0])
		var content io.Reader = cmd.InOrStdin()
		if args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				wrapFatalln("open local file", err)
				return
			}
			defer func() { _ = f.Close() }()
			content = f
		}

		var checkout *store.Commit
		err = w.transact(fmt.Sprintf("put file %s", pth), func(tx *repo.Transaction) error {
			current, err := w.checkout()
			if err != nil {
				return err
			}
			id, err := tx.Store().WriteFile(pth, content)
			if err != nil {
				return err
			}
			builder := tx.Store().TreeBuilder(current.TreeID())
			builder.Set(pth, model.NormalFileValue(id, false))
			tree, err := builder.WriteTree()
			if err != nil {
				return err
			}
			checkout, err = rewriteCheckout(tx, repo.ForRewriteFrom(userSettings, tx.Store(), current).SetTree(tree))
			return err
		})
		if err != nil {
			wrapFatalln("put file", err)
			return
		}
		infoLogger.Printf("Working copy now at: %s", checkout.ID().Short())
	},
}

var fileRemoveCmd = &cobra.Command{
	Use:     "remove <path>",
	Short:   "Remove a file from the working copy commit",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		pth := model.CleanRepoPath(args[0])
		err = w.transact(fmt.Sprintf("remove file %s", pth), func(tx *repo.Transaction) error {
			current, err := w.checkout()
			if err != nil {
				return err
			}
			tree, err := current.Tree()
			if err != nil {
				return err
			}
			if _, ok := tree.Value(pth); !ok {
				return fmt.Errorf("no such file in the working copy: %s", pth)
			}
			builder := tx.Store().TreeBuilder(current.TreeID())
			builder.Remove(pth)
			treeID, err := builder.WriteTree()
			if err != nil {
				return err
			}
			_, err = rewriteCheckout(tx, repo.ForRewriteFrom(userSettings, tx.Store(), current).SetTree(treeID))
			return err
		})
		if err != nil {
			wrapFatalln("remove file", err)
		}
	},
}

var fileCatCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print the content of a file",
	Long: `Print the content of a file in a commit. A conflicted file is printed with conflict markers.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWorkspace(context.Background())
		if err != nil {
			wrapFatalln("open repository", err)
			return
		}
		defer w.Close()

		if err = catFile(w, params.commit.revision, model.CleanRepoPath(args[0]), infoLogger.Writer()); err != nil {
			wrapFatalln("print file", err)
		}
	},
}

func catFile(w *workspace, revision, pth string, out io.Writer) error {
	s := w.repo.Store()
	c, err := repo.ResolveCommit(w.repo, revision)
	if err != nil {
		return err
	}
	tree, err := c.Tree()
	if err != nil {
		return err
	}
	value, ok := tree.Value(pth)
	if !ok {
		return fmt.Errorf("no such file in commit %s: %s", c.ID().Short(), pth)
	}

	switch value.Kind {
	case model.Conflict:
		conflict, err := s.ReadConflict(model.ConflictID(value.ID))
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err = conflicts.Materialize(s, pth, conflict, &buf); err != nil {
			return err
		}
		_, err = buf.WriteTo(out)
		return err
	case model.NormalFile:
		rdr, err := s.ReadFile(pth, model.FileID(value.ID))
		if err != nil {
			return err
		}
		defer func() { _ = rdr.Close() }()
		_, err = io.Copy(out, rdr)
		return err
	default:
		return fmt.Errorf("%s is not a file: %s", pth, value.Kind)
	}
}

func init() {
	addRevisionFlag(fileCatCmd)
	fileCmd.AddCommand(filePutCmd)
	fileCmd.AddCommand(fileRemoveCmd)
	fileCmd.AddCommand(fileCatCmd)
	rootCmd.AddCommand(fileCmd)
}
