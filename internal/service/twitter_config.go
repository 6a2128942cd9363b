package service

import (
	"github.com/iconidentify/xclip/internal/config"
	"github.com/iconidentify/xclip/internal/retry"
	"github.com/iconidentify/xclip/pkg/twitter"
)

// TwitterClientConfig maps the application configuration onto the
// upstream client configuration.
func TwitterClientConfig(cfg config.TwitterConfig) twitter.Config {
	return twitter.Config{
		BearerToken:        cfg.BearerToken,
		GraphQLURL:         cfg.GraphQLURL,
		GuestTokenURL:      cfg.GuestTokenURL,
		SyndicationURL:     cfg.SyndicationURL,
		UserAgent:          cfg.UserAgent,
		ProxyURL:           cfg.ProxyURL,
		RequestTimeout:     cfg.RequestTimeout,
		TokenTimeout:       cfg.TokenTimeout,
		SyndicationTimeout: cfg.SyndicationTimeout,
		ProbeTimeout:       cfg.ProbeTimeout,
		GuestTokenTTL:      cfg.GuestTokenTTL,
		TokenRetry: retry.Policy{
			MaxAttempts:  cfg.TokenRetries,
			InitialDelay: cfg.TokenRetryDelay,
			Multiplier:   cfg.TokenRetryMultiplier,
		},
		APIRetry: retry.Policy{
			MaxAttempts:  cfg.APIRetries,
			InitialDelay: cfg.APIRetryDelay,
			MaxDelay:     retry.DefaultPolicy().MaxDelay,
			Multiplier:   2,
		},
		SyndicationRetry: retry.Policy{
			MaxAttempts:  cfg.SyndicationRetries,
			InitialDelay: cfg.SyndicationRetryDelay,
			Multiplier:   cfg.SyndicationBackoff,
		},
	}
}
