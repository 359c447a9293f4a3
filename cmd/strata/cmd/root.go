// Copyright © 2019 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/settings"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata is a version control system with first class working copy commits",
	Long: `Strata is a version control system where the working copy is itself a commit.

Every command runs as a transaction against the repository: either all its changes are recorded
as a new operation in the operation log, or none are.

The repository lives in a .strata directory at the root of the working directory.
`,
	SilenceUsage: true,
}

var userSettings *settings.UserSettings

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
	addRepositoryFlag(rootCmd)
	addLogLevelFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	if params.root.logLevel, err = dlogger.ParseLevel(params.root.logLevel); err != nil {
		wrapFatalln("invalid --"+logLevelFlag, err)
		return
	}
	userSettings, err = settings.Load(params.root.config)
	if err != nil {
		wrapFatalln("load settings", err)
		return
	}
	if used := userSettings.ConfigFileUsed(); used != "" && params.root.logLevel == dlogger.LogLevelDebug {
		log.Println("Using config file:", used)
	}
}
