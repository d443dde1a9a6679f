package cmd

import (
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Writes the RSS feed and sitemap from the built collections",
	Long: `The feed command reads the collections written by 'build' and generates
rss.xml and sitemap.xml in the output directory. When the collections have not
been built yet the RSS feed is skipped and the sitemap only lists the static
pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeeds(appConfig)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
}
