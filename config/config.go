// Package config holds process-level settings for the blockfish tools.
// Values come from, in increasing priority: defaults, an optional YAML
// config file, BLOCKFISH_* environment variables and command-line flags.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/blockfish/ai"
	"github.com/domino14/blockfish/eval"
)

const (
	ConfigDebug               = "debug"
	ConfigLogLevel            = "log-level"
	ConfigConfigFile          = "config-file"
	ConfigRulesetPath         = "ruleset-path"
	ConfigShapetablePath      = "shapetable-path"
	ConfigNatsURL             = "nats-url"
	ConfigBotChannel          = "bot-channel"
	ConfigSearchLimit         = "search-limit"
	ConfigRowFactor           = "row-factor"
	ConfigPieceEstimateFactor = "piece-estimate-factor"
	ConfigIDependencyFactor   = "i-dependency-factor"
	ConfigPiecePenalty        = "piece-penalty"
	ConfigCPUProfile          = "cpu-profile"
	ConfigMetricsAddr         = "metrics-addr"
	ConfigDefaultBotChannel   = "blockfish.analyze"
	ConfigDefaultMetricsAddr  = ":9090"
	ConfigDefaultNatsURL      = "nats://localhost:4222"
)

type Config struct {
	*viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	def := ai.DefaultConfig()
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigLogLevel, "info")
	v.SetDefault(ConfigRulesetPath, "")
	v.SetDefault(ConfigShapetablePath, "")
	v.SetDefault(ConfigNatsURL, ConfigDefaultNatsURL)
	v.SetDefault(ConfigBotChannel, ConfigDefaultBotChannel)
	v.SetDefault(ConfigSearchLimit, def.SearchLimit)
	v.SetDefault(ConfigRowFactor, def.Parameters.RowFactor)
	v.SetDefault(ConfigPieceEstimateFactor, def.Parameters.PieceEstimateFactor)
	v.SetDefault(ConfigIDependencyFactor, def.Parameters.IDependencyFactor)
	v.SetDefault(ConfigPiecePenalty, def.Parameters.PiecePenalty)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMetricsAddr, ConfigDefaultMetricsAddr)
}

// DefaultConfig returns a config holding only the defaults. Tests use it.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	setDefaults(c.Viper)
	return c
}

// Load reads flags from args, then the environment, then the config file
// named by --config-file (or BLOCKFISH_CONFIG_FILE) if any.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("blockfish", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigLogLevel, "info", "log level: debug, info, warn, error")
	fs.String(ConfigConfigFile, "", "optional YAML config file")
	fs.String(ConfigRulesetPath, "", "ruleset file (json or yaml); the built-in guideline ruleset if empty")
	fs.String(ConfigShapetablePath, "", "precompiled shape table; takes priority over ruleset-path")
	fs.String(ConfigNatsURL, ConfigDefaultNatsURL, "the NATS server URL")
	fs.String(ConfigBotChannel, ConfigDefaultBotChannel, "the NATS subject the bot answers on")
	fs.Uint(ConfigSearchLimit, ai.DefaultSearchLimit, "nodes to generate per analysis")
	fs.Int64(ConfigRowFactor, eval.DefaultParameters().RowFactor, "weight of stack height")
	fs.Int64(ConfigPieceEstimateFactor, eval.DefaultParameters().PieceEstimateFactor, "weight of the pieces-to-clear estimate")
	fs.Int64(ConfigIDependencyFactor, eval.DefaultParameters().IDependencyFactor, "weight of deep wells")
	fs.Int64(ConfigPiecePenalty, eval.DefaultParameters().PiecePenalty, "cost per placed piece")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMetricsAddr, ConfigDefaultMetricsAddr, "address for the prometheus /metrics endpoint")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("blockfish")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path := c.GetString(ConfigConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Args returns the positional arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// AdjustRelativePaths makes relative file settings relative to basepath,
// normally the executable's directory.
func (c *Config) AdjustRelativePaths(basepath string) {
	for _, key := range []string{ConfigRulesetPath, ConfigShapetablePath} {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		c.Set(key, filepath.Join(basepath, p))
	}
}

// AIConfig is the analysis configuration described by these settings.
func (c *Config) AIConfig() ai.Config {
	return ai.Config{
		SearchLimit: c.GetUint(ConfigSearchLimit),
		Parameters: eval.Parameters{
			RowFactor:           c.GetInt64(ConfigRowFactor),
			PieceEstimateFactor: c.GetInt64(ConfigPieceEstimateFactor),
			IDependencyFactor:   c.GetInt64(ConfigIDependencyFactor),
			PiecePenalty:        c.GetInt64(ConfigPiecePenalty),
		},
	}
}

// SanitizedSettings is AllSettings without credentials, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	if u, ok := settings[ConfigNatsURL].(string); ok {
		if at := strings.LastIndex(u, "@"); at >= 0 {
			if scheme := strings.Index(u, "://"); scheme >= 0 && scheme < at {
				settings[ConfigNatsURL] = u[:scheme+3] + "****" + u[at:]
			}
		}
	}
	return settings
}
