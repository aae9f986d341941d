package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/loan-quote/internal/config"
	"github.com/iwvelando/loan-quote/internal/logging"
	"github.com/iwvelando/loan-quote/internal/output"
	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/datetime"
	"github.com/iwvelando/loan-quote/pkg/validation"
	"go.uber.org/zap"
)

// loadConfiguration reads configPath. A missing file at the default location
// falls back to built-in defaults; an explicitly named file must exist.
func loadConfiguration(configPath string, explicit bool) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(configPath)
	if err == nil {
		return conf, nil
	}
	if !explicit {
		if _, statErr := os.Stat(configPath); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return nil, err
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	amount := flag.Float64("amount", 0, "loan amount in dollars")
	rate := flag.Float64("rate", 0, "nominal annual interest rate in percent (defaults to the purpose's indicative rate)")
	term := flag.Int("term", 0, "loan term in months")
	purpose := flag.String("purpose", constants.PurposeBusiness, "loan purpose: business, investment, property, working-capital")
	security := flag.String("security", constants.SecurityProperty, "security type: property, business-assets, personal-guarantee, other")
	policyName := flag.String("policy", "", "validation policy override: strict, permissive")
	schedule := flag.Bool("schedule", false, "include the amortization schedule")
	startMonth := flag.String("start", "", "label schedule rows from this month (YYYY-MM)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Load the config file to get logging configuration
	conf, err := loadConfiguration(*configLocation, set["config"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *policyName != "" {
		conf.Validation.Policy = *policyName
	}
	policy, err := conf.Policy()
	if err != nil {
		logger.Fatal("failed to resolve validation policy",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	start := conf.Output.StartDate
	if *startMonth != "" {
		start = *startMonth
	}
	if start != "" {
		if err := datetime.ValidateStartMonth(start); err != nil {
			logger.Fatal(err.Error(),
				zap.String("op", "main"),
			)
		}
	}

	engine := quote.NewEngine(logger, policy, conf.RateTables())

	fields := validation.LoanFields{
		LoanPurpose:  *purpose,
		SecurityType: *security,
	}
	if set["amount"] {
		fields.LoanAmount = amount
	}
	if set["term"] {
		fields.LoanTermMonths = term
	}
	if set["rate"] {
		fields.InterestRate = rate
	} else if indicative, ok := engine.RateForPurpose(quote.LoanPurpose(*purpose)); ok {
		fields.InterestRate = &indicative
		logger.Info("using indicative rate for purpose",
			zap.String("op", "main"),
			zap.String("purpose", *purpose),
			zap.Float64("rate", indicative),
		)
	}

	result, errs := engine.Quote(fields)
	if len(errs) > 0 {
		for _, msg := range errs {
			logger.Error(msg,
				zap.String("op", "main"),
				zap.String("policy", policy.Name),
			)
		}
		_ = logger.Sync()
		os.Exit(1)
	}

	input := quote.InputFromFields(fields)
	savings := engine.SavingsVsBanks(result, input)
	if !*schedule && !conf.Output.Schedule {
		result = result.WithoutSchedule()
	}

	report := output.Report{
		Input:      input,
		Result:     result,
		Savings:    &savings,
		StartMonth: start,
	}
	if err := output.Render(os.Stdout, outputFormat, report); err != nil {
		logger.Fatal("failed to render quote",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
