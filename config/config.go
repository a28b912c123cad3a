package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"pdf_imagetools/pdf"
)

// EnvPrefix prefixes every environment override, e.g. PDFTOOLS_PORT or PDFTOOLS_FETCH_TIMEOUT.
const EnvPrefix = "PDFTOOLS"

// Config holds application configuration
type Config struct {
	Port          string        `mapstructure:"port"`
	MaxFileSize   int64         `mapstructure:"max_file_size"`
	OutputDir     string        `mapstructure:"output_dir"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
	Retention     time.Duration `mapstructure:"output_retention"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`
	LogLevel      string        `mapstructure:"log_level"`
	Fetch         Fetch         `mapstructure:"fetch"`
	Pipeline      Pipeline      `mapstructure:"pipeline"`
}

// Fetch configures downloads of source documents by URL.
type Fetch struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Attempts uint          `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
}

// Pipeline holds the defaults for logo detection and generated document layout.
type Pipeline struct {
	RepeatThreshold int     `mapstructure:"repeat_threshold"`
	MaxImageWidth   float64 `mapstructure:"max_image_width"`
	MaxImageHeight  float64 `mapstructure:"max_image_height"`
	ImageSpacing    float64 `mapstructure:"image_spacing"`
	OptimizeOutput  bool    `mapstructure:"optimize_output"`
}

// Layout converts the pipeline settings to a pdf.Layout.
func (p Pipeline) Layout() pdf.Layout {
	return pdf.Layout{
		MaxImageWidth:  p.MaxImageWidth,
		MaxImageHeight: p.MaxImageHeight,
		ImageSpacing:   p.ImageSpacing,
		Optimize:       p.OptimizeOutput,
	}
}

// StripOptions converts the pipeline settings to pdf.StripOptions.
func (p Pipeline) StripOptions() pdf.StripOptions {
	return pdf.StripOptions{Threshold: p.RepeatThreshold}
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() Config {
	return Config{
		Port:        "10000",
		MaxFileSize: 10 * 1024 * 1024,
		OutputDir:   "./static",
		Retention:   time.Hour,
		CORSOrigins: []string{"*"},
		LogLevel:    "info",
		Fetch: Fetch{
			Timeout:  30 * time.Second,
			Attempts: 3,
			Delay:    500 * time.Millisecond,
		},
		Pipeline: Pipeline{
			RepeatThreshold: pdf.DefaultRepeatThreshold,
			MaxImageWidth:   pdf.DefaultMaxImageWidth,
			ImageSpacing:    pdf.DefaultImageSpacing,
		},
	}
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("port", d.Port)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("public_base_url", d.PublicBaseURL)
	v.SetDefault("output_retention", d.Retention)
	v.SetDefault("cors_origins", d.CORSOrigins)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.attempts", d.Fetch.Attempts)
	v.SetDefault("fetch.delay", d.Fetch.Delay)
	v.SetDefault("pipeline.repeat_threshold", d.Pipeline.RepeatThreshold)
	v.SetDefault("pipeline.max_image_width", d.Pipeline.MaxImageWidth)
	v.SetDefault("pipeline.max_image_height", d.Pipeline.MaxImageHeight)
	v.SetDefault("pipeline.image_spacing", d.Pipeline.ImageSpacing)
	v.SetDefault("pipeline.optimize_output", d.Pipeline.OptimizeOutput)
}

// Load reads configuration from defaults, an optional YAML file and PDFTOOLS_ environment variables.
// When cfgFile is empty, ./config.yaml is used if present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
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

// Validate rejects settings no pipeline can run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if c.Pipeline.RepeatThreshold < 2 {
		return fmt.Errorf("pipeline.repeat_threshold must be at least 2, got %d", c.Pipeline.RepeatThreshold)
	}
	if c.Pipeline.MaxImageWidth <= 0 {
		return fmt.Errorf("pipeline.max_image_width must be positive, got %v", c.Pipeline.MaxImageWidth)
	}
	if c.Fetch.Attempts == 0 {
		return errors.New("fetch.attempts must be at least 1")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// ApplyLogging sets the global logrus level and formatter.
func (c *Config) ApplyLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
