package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"romnorm/internal/config"
	"romnorm/internal/logging"
	"romnorm/internal/registry"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// registries is the loaded pair of definition lists.
type registries struct {
	converters []registry.ConverterDefinition
	formats    []registry.FormatDefinition
}

func (c *commandContext) converterRegistry(opts ...registry.ConverterOption) (*registry.ConverterRegistry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	validator, err := registry.NewValidator(cfg.Conversion.Validation)
	if err != nil {
		return nil, err
	}
	opts = append([]registry.ConverterOption{
		registry.WithEmptyPolicy(registry.EmptyPolicy(cfg.Conversion.EmptyDocumentPolicy)),
		registry.WithLogger(logger),
	}, opts...)
	return registry.NewConverterRegistry(
		cfg.Conversion.ConvertersPath,
		validator,
		cfg.Features.Sorting.Conversion,
		opts...,
	), nil
}

func (c *commandContext) formatRegistry() (*registry.FormatRegistry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	validator, err := registry.NewValidator(cfg.Conversion.Validation)
	if err != nil {
		return nil, err
	}
	return registry.NewFormatRegistry(cfg.Conversion.FormatsPath, validator), nil
}

// loadRegistries loads both registries. An invalid document is reported
// as an error so commands never act on a silently empty registry.
func (c *commandContext) loadRegistries(ctx context.Context, opts ...registry.ConverterOption) (registries, error) {
	convReg, err := c.converterRegistry(opts...)
	if err != nil {
		return registries{}, err
	}
	fmtReg, err := c.formatRegistry()
	if err != nil {
		return registries{}, err
	}
	converters, err := convReg.Load(ctx)
	if err != nil {
		return registries{}, fmt.Errorf("load converters: %w", err)
	}
	formats, err := fmtReg.Load(ctx)
	if err != nil {
		return registries{}, fmt.Errorf("load formats: %w", err)
	}
	return registries{converters: converters, formats: formats}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
