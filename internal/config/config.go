package config

// Config is decoded by viper from config.yaml and RUANGKARYA_* environment variables.
type Config struct {
	SiteTitle string `mapstructure:"siteTitle"`
	BaseURL   string `mapstructure:"baseURL"`
	Author    string `mapstructure:"author"`
	Email     string `mapstructure:"email"`
	OutputDir string `mapstructure:"outputDir"`

	Content   ContentConfig   `mapstructure:"content"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

type ContentConfig struct {
	Root     string `mapstructure:"root"`
	DataDir  string `mapstructure:"dataDir"`
	Sanitize bool   `mapstructure:"sanitize"`
}

type FeedConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Language    string `mapstructure:"language"`
	Limit       int    `mapstructure:"limit"`
}

// HighlightConfig names the chroma styles used for the light and dark token sets.
type HighlightConfig struct {
	Light string `mapstructure:"light"`
	Dark  string `mapstructure:"dark"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	DefaultTheme string `mapstructure:"defaultTheme"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the configuration used when no file or environment overrides are present.
func Defaults() Config {
	return Config{
		SiteTitle: "RuangKarya",
		BaseURL:   "https://ruangkarya.space",
		Author:    "Your Name",
		Email:     "noreply@ruangkarya.space",
		OutputDir: "build",
		Content: ContentConfig{
			Root:     "content",
			DataDir:  ".content",
			Sanitize: true,
		},
		Feed: FeedConfig{
			Title:       "RuangKarya - Blog",
			Description: "Thoughts on web development and modern technologies",
			Language:    "en-US",
			Limit:       20,
		},
		Highlight: HighlightConfig{
			Light: "github",
			Dark:  "material",
		},
		Server: ServerConfig{
			Port:         1313,
			DefaultTheme: "light",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
