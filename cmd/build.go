package cmd

import (
	"folio/pkg/build"
	"folio/pkg/handlers"
	"folio/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Pre-render the portfolio into a static directory",
	Long: `Renders every page, writes sitemap.xml, citation metadata on publication
pages, redirect pages for short URLs and the shortened-texts.json description
cache into the output directory.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("out", "o", "public", "output directory")
	buildCmd.Flags().String("base-url", "", "absolute site URL, overriding the site configuration")
	buildCmd.Flags().Int("build-concurrency", 8, "pages rendered in parallel")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	gin.SetMode(gin.ReleaseMode)
	h, err := setup()
	if err != nil {
		return err
	}
	if appConfig.BaseURL != "" {
		site := *h.Store().Site()
		site.Site.BaseURL = appConfig.BaseURL
		h.Store().SetSite(&site)
		h.Reload()
	}
	engine, err := handlers.NewEngine(h, appConfig.SessionSecret)
	if err != nil {
		return err
	}

	b := build.New(h, engine, build.Options{
		OutputDir:      appConfig.OutputDir,
		SiteConfigPath: appConfig.SiteConfig,
		DataRoot:       appConfig.DataDir,
		MediaDir:       services.SafeJoin(appConfig.DataDir, "", "media"),
		Concurrency:    appConfig.BuildConcurrency,
	})
	res, err := b.Run(cmd.Context())
	if err != nil {
		return err
	}
	zap.L().Info("build complete",
		zap.String("out", appConfig.OutputDir),
		zap.Int("pages", res.Pages),
		zap.Int("redirects", res.Redirects),
		zap.Int("short_texts", res.ShortTexts),
		zap.Int("short_texts_reused", res.Reused))
	return nil
}
