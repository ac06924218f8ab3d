// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/grantdata/internal/secrets"
	"github.com/pdiddy/grantdata/internal/store"
	"github.com/pdiddy/grantdata/internal/textfmt"
	"github.com/pdiddy/grantdata/internal/vinnova"
	"github.com/pdiddy/grantdata/pkg/types"
)

const defaultUserAgent = "grantdata/0.1"

func init() {
	viper.SetDefault("extract.backend", string(types.BackendNative))
	viper.SetDefault("extract.workers", 1)
	viper.SetDefault("extract.language", "sv")
	viper.SetDefault("extract.output_dir", "output")

	viper.SetDefault("vinnova.base_url", vinnova.DefaultBaseURL)
	viper.SetDefault("vinnova.timeout", vinnova.DefaultTimeout)
	viper.SetDefault("vinnova.user_agent", defaultUserAgent)
	viper.SetDefault("vinnova.max_retries", 5)
	viper.SetDefault("vinnova.wrap_width", textfmt.DefaultWidth)
	viper.SetDefault("vinnova.output_dir", ".")

	viper.SetDefault("store.path", store.DefaultPath)
}

// loadConfig assembles the configuration from flags, environment and the
// config file, in viper's precedence order. The Vinnova key falls back to
// .secrets/vinnova-api-key.
func loadConfig() types.Config {
	return types.Config{
		LogLevel: viper.GetString("log_level"),
		Extract: types.ExtractConfig{
			Backend:   types.PDFBackend(viper.GetString("extract.backend")),
			Workers:   viper.GetInt("extract.workers"),
			Language:  viper.GetString("extract.language"),
			Format:    types.OutputFormat(viper.GetString("extract.format")),
			OutputDir: viper.GetString("extract.output_dir"),
		},
		Vinnova: types.VinnovaConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    durationOr(viper.GetDuration("vinnova.timeout"), vinnova.DefaultTimeout),
				UserAgent:  viper.GetString("vinnova.user_agent"),
				MaxRetries: viper.GetInt("vinnova.max_retries"),
			},
			BaseURL:   viper.GetString("vinnova.base_url"),
			APIKey:    loadedSecrets.Resolve(secrets.VinnovaAPIKey, viper.GetString("vinnova.api_key")),
			WrapWidth: viper.GetInt("vinnova.wrap_width"),
			OutputDir: viper.GetString("vinnova.output_dir"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
