package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. SALES_INPUT_FILE_PATH.
const EnvPrefix = "SALES"

// Config is read from SALES_<SECTION>_<FIELD>. Leaf fields are named
// through split_words rather than envconfig tags: a tag also registers the
// bare name as a fallback key, so Output.Path would read the process PATH.
type Config struct {
	Input   InputConfig   `envconfig:"INPUT"`
	Output  OutputConfig  `envconfig:"OUTPUT"`
	Logger  LoggerConfig  `envconfig:"LOG"`
	Tracing TracingConfig `envconfig:"TRACE"`
}

type InputConfig struct {
	FilePath       string `split_words:"true" validate:"required"`
	RejectNegative bool   `split_words:"true" default:"false"`
}

type OutputConfig struct {
	Path string `default:"sales_report.png" validate:"required"`
	// Format overrides the format implied by Path's extension.
	Format string  `validate:"omitempty,oneof=png svg pdf xlsx"`
	Width  float64 `default:"14" validate:"gt=0"`
	Height float64 `default:"5" validate:"gt=0"`
	Quiet  bool    `default:"false"`
}

type LoggerConfig struct {
	Level  string `default:"info" validate:"oneof=debug info warn warning error"`
	Format string `default:"text" validate:"oneof=json text"`
	Output string `default:"stderr" validate:"oneof=stderr stdout"`
}

type TracingConfig struct {
	Enabled bool `default:"false"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads an optional .env file and the SALES_* environment. The input
// file path is not checked here because the command line may still
// supply it; call Validate once all overrides are applied.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.normalize()

	if err := validate.StructExcept(&cfg, "Input.FilePath"); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", describe(err))
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	c.normalize()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", describe(err))
	}
	return nil
}

// normalize lower-cases the enumerated settings so PNG and png are the
// same format.
func (c *Config) normalize() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Logger.Level = strings.ToLower(strings.TrimSpace(c.Logger.Level))
	c.Logger.Format = strings.ToLower(strings.TrimSpace(c.Logger.Format))
	c.Logger.Output = strings.ToLower(strings.TrimSpace(c.Logger.Output))
}

// ChartFormat is the explicit format if set, otherwise the one implied by
// the output file extension, falling back to png.
func (o OutputConfig) ChartFormat() string {
	if o.Format != "" {
		return o.Format
	}
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(o.Path), ".")); ext {
	case "png", "svg", "pdf", "xlsx":
		return ext
	default:
		return "png"
	}
}

func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s check", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
