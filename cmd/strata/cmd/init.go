package cmd

import (
	"context"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new repository",
	Long: `Create a new repository in the current directory, or in the directory given with --repository.

The repository starts with a root commit and an empty working copy commit on top of it.`,
	Example: `% strata init --backend badger
Initialized repository in /home/user/project/.strata
Working copy now at: 0f3a6e4c9b12`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w, err := initWorkspace(context.Background(), model.Backend(params.init.backend))
		if err != nil {
			wrapFatalln("initialize repository", err)
			return
		}
		defer w.Close()

		infoLogger.Printf("Initialized repository in %s", w.dir)
		infoLogger.Printf("Working copy now at: %s", w.repo.View().Checkout().Short())
	},
}

func init() {
	addBackendFlag(initCmd)
	rootCmd.AddCommand(initCmd)
}
