package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ruangkarya/ruangkarya/internal/config"
	"github.com/ruangkarya/ruangkarya/internal/content"
	"github.com/ruangkarya/ruangkarya/internal/feed"
	"github.com/ruangkarya/ruangkarya/internal/mdx"
)

var skipFeeds bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validates content and writes the collections, RSS feed and sitemap",
	Long: `The build command reads every post under '<content.root>/posts/' and every
project under '<content.root>/projects/', validates their front-matter, compiles
their bodies, and writes posts.json and projects.json to the data directory
(default './.content/'). Any invalid file aborts the build and leaves the
previous collections untouched. The RSS feed and sitemap are then written to
the output directory (default './build/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := runBuild(appConfig); err != nil {
			return err
		}
		if skipFeeds {
			return nil
		}
		return runFeeds(appConfig)
	},
}

func newBuilder(cfg config.Config) *content.Builder {
	compiler := mdx.NewCompiler(mdx.WithSanitize(cfg.Content.Sanitize))
	return content.NewBuilder(cfg.Content.Root, cfg.BaseURL, compiler, log)
}

func runBuild(cfg config.Config) (*content.Collections, error) {
	log.Info("building content", "root", cfg.Content.Root, "dataDir", cfg.Content.DataDir)
	return content.BuildAndWrite(newBuilder(cfg), cfg.Content.DataDir)
}

func runFeeds(cfg config.Config) error {
	return feed.NewEmitter(cfg.Content.DataDir, cfg.OutputDir, feed.OptionsFromConfig(cfg), log).Emit()
}

func init() {
	buildCmd.Flags().BoolVar(&skipFeeds, "skip-feeds", false, "only write the content collections")
	rootCmd.AddCommand(buildCmd)
}
