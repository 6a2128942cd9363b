package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iconidentify/xclip/internal/config"
	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/service"
	"github.com/iconidentify/xclip/pkg/twitter"
)

// commandContext lazily builds the configuration and resolver shared by
// every subcommand.
type commandContext struct {
	configFlag *string
	cookieFlag *string
	debugFlag  *bool

	cfg      *config.Config
	log      *slog.Logger
	resolver *service.ResolveService
}

func newCommandContext(configFlag, cookieFlag *string, debugFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		cookieFlag: cookieFlag,
		debugFlag:  debugFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	if *c.cookieFlag != "" {
		cfg.Twitter.Cookie = *c.cookieFlag
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	if c.log != nil {
		return c.log
	}
	level := slog.LevelWarn
	if *c.debugFlag {
		level = slog.LevelDebug
	}
	c.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return c.log
}

func (c *commandContext) ensureResolver(cmd *cobra.Command) (*service.ResolveService, error) {
	if c.resolver != nil {
		return c.resolver, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.logger(cmd)

	client := twitter.NewClient(service.TwitterClientConfig(cfg.Twitter), nil, logger)
	creds := twitter.NewCredentialStore(cfg.Twitter.Cookie)
	c.resolver = service.NewResolveService(client, creds, cfg.Resolve, logger)
	return c.resolver, nil
}

// describeError turns a resolution failure into a one-line message with
// its stable code. The full chain is logged at debug level.
func (c *commandContext) describeError(cmd *cobra.Command, err error) error {
	c.logger(cmd).Debug("resolve failed", "error", err)
	return fmt.Errorf("%s [%s]", domain.ErrorMessage(err), domain.ErrorCode(err))
}
