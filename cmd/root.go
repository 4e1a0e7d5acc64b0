package cmd

import (
	"fmt"
	"os"

	"folio/pkg/config"
	"folio/pkg/handlers"
	"folio/pkg/logging"
	"folio/pkg/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	appConfig config.App
	logSync   func()
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - configuration-driven academic portfolio",
	Long: `folio renders publications, projects, talks and other content from JSON and
BibTeX sources into a portfolio site described by a single site configuration.

Use "folio serve" to run the site and "folio build" to pre-render it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		app, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		appConfig = app
		logSync, err = logging.Init(app.Verbose, app.Development())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logSync != nil {
			logSync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.String("site", "site.yaml", "site configuration file")
	flags.String("data", ".", "directory data sources are resolved against")
	flags.BoolP("verbose", "v", false, "debug logging")
}

// setup loads the site configuration and wires the content store and handler.
func setup() (*handlers.Handler, error) {
	site, err := config.LoadSite(appConfig.SiteConfig)
	if err != nil {
		return nil, err
	}
	zap.L().Info("site configuration loaded",
		zap.String("path", appConfig.SiteConfig),
		zap.Int("sections", len(site.Sections)),
		zap.Int("content_types", len(site.ContentTypes)))

	fetcher := services.NewSourceFetcher(appConfig.DataDir, appConfig.FetchTimeout)
	store := services.NewContentStore(site, &services.Loader{Fetcher: fetcher}, appConfig.CacheContent)
	h := handlers.New(store, services.NewMarkdown(), services.SafeJoin(appConfig.DataDir, "", "media"))
	return h, nil
}
