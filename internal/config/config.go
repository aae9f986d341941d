// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-quote.
type Configuration struct {
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging,omitempty"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output,omitempty"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation,omitempty"`
	Rates      RatesConfig      `mapstructure:"rates" yaml:"rates,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `mapstructure:"format" yaml:"format,omitempty" validate:"omitempty,oneof=json console"`
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format    string `mapstructure:"format" yaml:"format,omitempty" validate:"omitempty,oneof=pretty csv json"`
	Schedule  bool   `mapstructure:"schedule" yaml:"schedule,omitempty"`
	StartDate string `mapstructure:"startDate" yaml:"startDate,omitempty"` // YYYY-MM label for month 1
}

// ValidationConfig selects the bounds policy applied to calculator input.
type ValidationConfig struct {
	Policy string `mapstructure:"policy" yaml:"policy,omitempty" validate:"omitempty,oneof=strict permissive"`
}

// RatesConfig overrides the built-in rate tables. Empty sections fall back
// to quote.DefaultRateTables.
type RatesConfig struct {
	Purposes map[string]float64 `mapstructure:"purposes" yaml:"purposes,omitempty" validate:"dive,keys,oneof=business investment property working-capital,endkeys,gt=0"`
	Lenders  []LenderConfig     `mapstructure:"lenders" yaml:"lenders,omitempty" validate:"dive"`
}

// LenderConfig is one row of the bank comparison table.
type LenderConfig struct {
	Lender           string  `mapstructure:"lender" yaml:"lender" validate:"required"`
	Rate             float64 `mapstructure:"rate" yaml:"rate" validate:"gt=0"`
	ComparisonRate   float64 `mapstructure:"comparisonRate" yaml:"comparisonRate" validate:"gt=0"`
	EstablishmentFee float64 `mapstructure:"establishmentFee" yaml:"establishmentFee" validate:"gte=0"`
	MaxLVR           float64 `mapstructure:"maxLvr" yaml:"maxLvr" validate:"gte=0,lte=100"`
	IsAAGT           bool    `mapstructure:"isAAGT" yaml:"isAAGT"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with LOANQUOTE_
// override file values, e.g. LOANQUOTE_VALIDATION_POLICY.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}

	return decode(v)
}

// Default returns the configuration used when no file is supplied.
func Default() *Configuration {
	return &Configuration{
		Logging:    LoggingConfig{Level: "info", Format: "json"},
		Output:     OutputConfig{Format: constants.OutputFormatPretty},
		Validation: ValidationConfig{Policy: constants.DefaultPolicy},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers every scalar default. Registering the keys is also
// what lets AutomaticEnv override them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.outputFile", d.Logging.OutputFile)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.schedule", d.Output.Schedule)
	v.SetDefault("output.startDate", d.Output.StartDate)
	v.SetDefault("validation.policy", d.Validation.Policy)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Validation.Policy = strings.ToLower(strings.TrimSpace(configuration.Validation.Policy))

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the structural rules expressed in the struct tags.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Policy resolves the configured bounds policy.
func (c *Configuration) Policy() (validation.BoundsPolicy, error) {
	return validation.PolicyByName(c.Validation.Policy)
}

// RateTables converts the configured rates into engine tables, filling
// empty sections from the built-in defaults.
func (c *Configuration) RateTables() quote.RateTables {
	tables := quote.DefaultRateTables()

	if len(c.Rates.Purposes) > 0 {
		tables.PurposeRates = make(map[quote.LoanPurpose]float64, len(c.Rates.Purposes))
		for purpose, rate := range c.Rates.Purposes {
			tables.PurposeRates[quote.LoanPurpose(purpose)] = rate
		}
	}

	if len(c.Rates.Lenders) > 0 {
		tables.Lenders = make([]quote.ComparisonRate, 0, len(c.Rates.Lenders))
		for _, lender := range c.Rates.Lenders {
			tables.Lenders = append(tables.Lenders, quote.ComparisonRate{
				Lender:           lender.Lender,
				Rate:             lender.Rate,
				ComparisonRate:   lender.ComparisonRate,
				EstablishmentFee: lender.EstablishmentFee,
				MaxLVR:           lender.MaxLVR,
				IsAAGT:           lender.IsAAGT,
			})
		}
	}

	return tables
}

// ValidateConfiguration performs semantic checks on the rate tables and
// returns warnings. None of them prevent quoting.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	policy, err := c.Policy()
	if err != nil {
		return append(warnings, err.Error())
	}

	tables := c.RateTables()
	for _, purpose := range constants.LoanPurposes {
		rate, ok := tables.PurposeRates[quote.LoanPurpose(purpose)]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("no indicative rate configured for loan purpose %q", purpose))
			continue
		}
		if rate < policy.MinRate || rate > policy.MaxRate {
			warnings = append(warnings, fmt.Sprintf("indicative rate %g%% for %q is outside the %s policy range", rate, purpose, policy.Name))
		}
	}

	aagt, banks := 0, 0
	for _, lender := range tables.Lenders {
		if lender.IsAAGT {
			aagt++
		} else {
			banks++
		}
		if lender.ComparisonRate < lender.Rate {
			warnings = append(warnings, fmt.Sprintf("lender %q has a comparison rate below its headline rate", lender.Lender))
		}
	}
	if aagt != 1 {
		warnings = append(warnings, fmt.Sprintf("expected exactly one AAGT lender, found %d", aagt))
	}
	if banks == 0 {
		warnings = append(warnings, "no bank lenders configured, savings comparisons will be zero")
	}

	return warnings
}
