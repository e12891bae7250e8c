package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings of the client.
type Config struct {
	Debug   bool
	AppName string
	Env     string
	Build   string

	// API is the remote LMS backend this client talks to.
	API struct {
		BaseURL string
		Timeout time.Duration
	}

	// TokenPath is where the token store persists the access token.
	TokenPath string

	RollbarToken string
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Academy")
	conf.SetDefault("build", "dev")
	conf.SetDefault("apiBaseUrl", "http://localhost:8000")
	conf.SetDefault("apiTimeout", 15*time.Second)
	conf.SetDefault("tokenPath", defaultTokenPath())
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	cfg := &Config{
		Debug:        conf.GetBool("debug"),
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		TokenPath:    conf.GetString("tokenPath"),
		RollbarToken: conf.GetString("rollbarToken"),
	}
	cfg.API.BaseURL = strings.TrimRight(conf.GetString("apiBaseUrl"), "/")
	cfg.API.Timeout = conf.GetDuration("apiTimeout")
	return cfg
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".academy_token"
	}
	return filepath.Join(home, ".academy_token")
}
