// Package config provides the configuration system for adocpipe.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/asciidoc"
	"github.com/gaurav-prasanna/adocpipe/core/assemble"
	"github.com/gaurav-prasanna/adocpipe/core/chunk"
	"github.com/gaurav-prasanna/adocpipe/core/normalize"
	"github.com/gaurav-prasanna/adocpipe/core/render"
)

// EnvPrefix prefixes every environment override, e.g. ADOCPIPE_LOG_LEVEL.
const EnvPrefix = "ADOCPIPE"

// Config holds the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Header     HeaderConfig     `mapstructure:"header" yaml:"header"`
	Noise      NoiseConfig      `mapstructure:"noise" yaml:"noise"`
	Parser     ParserConfig     `mapstructure:"parser" yaml:"parser"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings" yaml:"embeddings"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console, json
}

// HeaderConfig overrides the header normalizer's line patterns
type HeaderConfig struct {
	AuthorPatterns   []string `mapstructure:"author_patterns" yaml:"author_patterns"`
	RevisionPatterns []string `mapstructure:"revision_patterns" yaml:"revision_patterns"`
}

// NoiseConfig controls which paragraphs are dropped as layout noise
type NoiseConfig struct {
	MaxLength int    `mapstructure:"max_length" yaml:"max_length"`
	Pattern   string `mapstructure:"pattern" yaml:"pattern"`
}

// ParserConfig holds parsing engine options
type ParserConfig struct {
	SourceMap  bool           `mapstructure:"sourcemap" yaml:"sourcemap"`
	DocName    string         `mapstructure:"docname" yaml:"docname"`
	Attributes map[string]any `mapstructure:"attributes" yaml:"attributes,omitempty"`
}

// DocumentAttributes converts the configured attributes into engine
// values. YAML booleans stay booleans.
func (p ParserConfig) DocumentAttributes() (core.Attributes, error) {
	out := make(core.Attributes, len(p.Attributes))
	for name, raw := range p.Attributes {
		v, err := core.ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("parser.attributes.%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// OutputConfig holds output settings
type OutputConfig struct {
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
	Dir    string `mapstructure:"dir" yaml:"dir"`
}

// EmbeddingsConfig holds embeddings API settings
type EmbeddingsConfig struct {
	URL       string `mapstructure:"url" yaml:"url"`
	Model     string `mapstructure:"model" yaml:"model"`
	ChunkSize int    `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// DefaultConfig returns a new configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Header: HeaderConfig{
			AuthorPatterns:   []string{normalize.DefaultAuthorPattern},
			RevisionPatterns: []string{normalize.DefaultRevisionPattern},
		},
		Noise: NoiseConfig{
			MaxLength: assemble.DefaultNoiseMaxLength,
			Pattern:   assemble.DefaultNoisePattern,
		},
		Parser: ParserConfig{
			SourceMap: true,
			DocName:   asciidoc.DefaultDocName,
		},
		Embeddings: EmbeddingsConfig{
			URL:       render.DefaultEmbeddingsURL,
			ChunkSize: chunk.DefaultChunkSize,
		},
	}
}

// Load reads configuration from defaults, an optional file, ADOCPIPE_*
// environment variables and any bound flags, in increasing precedence.
// flagBindings maps config keys to flags; unchanged flags do not override.
func Load(configPath string, flagBindings map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flagBindings {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("adocpipe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/adocpipe")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.Log.Format)
	}
	if c.Noise.MaxLength < 0 {
		return fmt.Errorf("noise.max_length must not be negative")
	}
	if c.Embeddings.ChunkSize < 0 {
		return fmt.Errorf("embeddings.chunk_size must not be negative")
	}
	if _, err := c.Parser.DocumentAttributes(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("header.author_patterns", defaults.Header.AuthorPatterns)
	v.SetDefault("header.revision_patterns", defaults.Header.RevisionPatterns)
	v.SetDefault("noise.max_length", defaults.Noise.MaxLength)
	v.SetDefault("noise.pattern", defaults.Noise.Pattern)
	v.SetDefault("parser.sourcemap", defaults.Parser.SourceMap)
	v.SetDefault("parser.docname", defaults.Parser.DocName)
	v.SetDefault("output.pretty", defaults.Output.Pretty)
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("embeddings.url", defaults.Embeddings.URL)
	v.SetDefault("embeddings.model", defaults.Embeddings.Model)
	v.SetDefault("embeddings.chunk_size", defaults.Embeddings.ChunkSize)
}
