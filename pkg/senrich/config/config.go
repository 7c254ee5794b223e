package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
)

// Environment variables consulted by ApplyEnv
const (
	EnvJavaBin  = "SENRICH_JAVA_BIN"
	EnvJavaHeap = "SENRICH_JAVA_HEAP"
)

// Config is the full set of run options. Zero values are filled by Default.
type Config struct {
	Log              bool   `yaml:"log"`
	IgnoreCase       bool   `yaml:"ignore_case"`
	Language         string `yaml:"language"`
	ExternalToolPath string `yaml:"external_tool_path" validate:"required"`
	InputDir         string `yaml:"input_dir" validate:"required"`
	OutputDir        string `yaml:"output_dir" validate:"required"`

	// LogDir is where the run log file is created; empty means the working directory.
	LogDir string `yaml:"log_dir"`
	// LedgerPath enables the SQLite run ledger when set.
	LedgerPath    string `yaml:"ledger_path"`
	JavaBin       string `yaml:"java_bin" validate:"required"`
	JavaHeap      string `yaml:"java_heap" validate:"required,alphanum"`
	ProgressWidth int    `yaml:"progress_width" validate:"min=1,max=200"`
	UnicodeNFC    bool   `yaml:"unicode_nfc"`
	StripMarkup   bool   `yaml:"strip_markup"`
}

// Default returns a config with every optional field populated.
func Default() Config {
	return Config{
		Language:      string(lang.English),
		JavaBin:       "java",
		JavaHeap:      "5g",
		ProgressWidth: 32,
	}
}

// Load reads a YAML config file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, internalerr.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides the java launcher settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvJavaBin); ok && strings.TrimSpace(v) != "" {
		c.JavaBin = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvJavaHeap); ok && strings.TrimSpace(v) != "" {
		c.JavaHeap = strings.TrimSpace(v)
	}
}

// Lang returns the configured language, falling back to English.
func (c *Config) Lang() lang.Language {
	return lang.Parse(c.Language)
}

var validate = validator.New()

// Validate checks required fields and ranges, and canonicalises Language.
func (c *Config) Validate() error {
	c.Language = c.Lang().String()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", yamlName(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

func yamlName(field string) string {
	switch field {
	case "ExternalToolPath":
		return "external_tool_path"
	case "InputDir":
		return "input_dir"
	case "OutputDir":
		return "output_dir"
	case "JavaBin":
		return "java_bin"
	case "JavaHeap":
		return "java_heap"
	case "ProgressWidth":
		return "progress_width"
	default:
		return field
	}
}
