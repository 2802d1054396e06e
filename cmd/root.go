package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-matcher"
)

type Config struct {
	APIURL       string         `mapstructure:"api-url"`
	UserAgent    string         `mapstructure:"user-agent"`
	Timeout      time.Duration  `mapstructure:"timeout"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	Output       string         `mapstructure:"output"`
	Display      *DisplayConfig `mapstructure:"display"`
	Google       *GoogleConfig  `mapstructure:"google"`
}

type DisplayConfig struct {
	MaxLines int `mapstructure:"max-lines"`
}

type GoogleConfig struct {
	ClientID         string `mapstructure:"client-id"`
	ClientSecret     string `mapstructure:"client-secret"`
	ClientSecretFile string `mapstructure:"client-secret-file"`
	RedirectPort     int    `mapstructure:"redirect-port"`
	PageSize         int64  `mapstructure:"page-size"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher sends a resume and a job description to the resume analysis service",
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	bindEnv("api-url", "RESUME_MATCHER_API_URL")
	bindEnv("google.client-id", "GOOGLE_CLIENT_ID")
	bindEnv("google.client-secret-file", "GOOGLE_CLIENT_SECRET_FILE")

	viper.SetDefault("api-url", "http://localhost:8000")
	viper.SetDefault("user-agent", app)
	viper.SetDefault("timeout", "2m")
	viper.SetDefault("max-log-length", 200)
	viper.SetDefault("output", "text")
	viper.SetDefault("google.page-size", 50)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the analysis service")
	rootCmd.PersistentFlags().StringP("output", "o", "", "result format: text or yaml")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func initConfig() {
	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly requested config must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Display == nil {
		config.Display = &DisplayConfig{}
	}
	if config.Google == nil {
		config.Google = &GoogleConfig{}
	}

	return config, nil
}
