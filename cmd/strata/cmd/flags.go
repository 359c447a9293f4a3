package cmd

import (
	"strings"

	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type paramsT struct {
	root struct {
		repository string
		config     string
		logLevel   string
		format     string
	}
	init struct {
		backend string
	}
	log struct {
		all bool
	}
	op struct {
		from  string
		limit int
	}
	commit struct {
		message  string
		revision string
	}
}

var params = paramsT{}

const (
	repositoryFlag = "repository"
	configFlag     = "config"
	logLevelFlag   = "loglevel"
	formatFlag     = "format"
	backendFlag    = "backend"
	allFlag        = "all"
	fromFlag       = "from"
	limitFlag      = "limit"
	messageFlag    = "message"
	revisionFlag   = "revision"

	defaultLogLevel = dlogger.LogLevelError
	defaultOpLimit  = 100
)

func addRepositoryFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&params.root.repository, repositoryFlag, "R", ".", "The root directory of the repository")
	cmd.PersistentFlags().StringVar(&params.root.config, configFlag, "", "The user settings file (defaults to $STRATA_CONFIG, then strata.yaml)")
}

func addLogLevelFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&params.root.logLevel, logLevelFlag, defaultLogLevel, "The logging level: "+strings.Join(dlogger.Levels(), ", "))
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&params.root.format, formatFlag, formatList, "The output format: list, json or yaml")
}

func addBackendFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&params.init.backend, backendFlag, string(model.LocalFS), "The storage backend: localfs or badger")
}

func addAllFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&params.log.all, allFlag, false, "Show obsolete and pruned commits too")
}

func addOpPagingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&params.op.from, fromFlag, "", "List operations after this operation id")
	cmd.Flags().IntVar(&params.op.limit, limitFlag, defaultOpLimit, "The maximum number of operations to list")
}

func addMessageFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&params.commit.message, messageFlag, "m", "", "The commit description")
}

func addRevisionFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&params.commit.revision, revisionFlag, "r", "@", "The commit, given as an id prefix, or @ for the checkout")
}

func getLogger() (*zap.Logger, error) {
	return dlogger.GetLogger(params.root.logLevel, dlogger.Console())
}
