package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ruangkarya/ruangkarya/internal/config"
	"github.com/ruangkarya/ruangkarya/internal/logger"
)

const envPrefix = "RUANGKARYA"

var cfgFile string
var appConfig config.Config
var log = logger.Default()

var rootCmd = &cobra.Command{
	Use:   "ruangkarya",
	Short: "RuangKarya - portfolio and blog content pipeline",
	Long: `RuangKarya validates your Markdown/MDX posts and projects, compiles
their bodies into render artifacts, writes the JSON collections, and
generates the RSS feed and sitemap. The serve command previews the site
locally and rebuilds on change.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: initializeConfig refers to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func initializeConfig(_ *cobra.Command) error {
	// A local .env file may supply RUANGKARYA_* variables; it is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, config.Defaults())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("bind log-level flag: %w", err)
	}

	configUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	} else {
		configUsed = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	log = logger.Setup(os.Stderr, appConfig.Log.Level, appConfig.Log.Format)
	if configUsed != "" {
		log.Debug("using config file", "file", configUsed)
	} else {
		log.Debug("no config file found, using defaults and environment")
	}
	return nil
}

// setDefaults registers every key so that environment variables can
// override values that are absent from the config file.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("siteTitle", d.SiteTitle)
	v.SetDefault("baseURL", d.BaseURL)
	v.SetDefault("author", d.Author)
	v.SetDefault("email", d.Email)
	v.SetDefault("outputDir", d.OutputDir)

	v.SetDefault("content.root", d.Content.Root)
	v.SetDefault("content.dataDir", d.Content.DataDir)
	v.SetDefault("content.sanitize", d.Content.Sanitize)

	v.SetDefault("feed.title", d.Feed.Title)
	v.SetDefault("feed.description", d.Feed.Description)
	v.SetDefault("feed.language", d.Feed.Language)
	v.SetDefault("feed.limit", d.Feed.Limit)

	v.SetDefault("highlight.light", d.Highlight.Light)
	v.SetDefault("highlight.dark", d.Highlight.Dark)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.defaultTheme", d.Server.DefaultTheme)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
