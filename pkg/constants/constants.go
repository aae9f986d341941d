// Package constants provides shared constants for the loan-quote application.
package constants

// DateTimeLayout is the month format accepted for schedule start dates and
// used when labelling schedule rows.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Fee schedule used by the effective rate model.
const (
	// EstablishmentFeeRate is the share of the loan amount charged as an
	// establishment (origination) fee.
	EstablishmentFeeRate = 0.01

	// EstablishmentFeeCap caps the establishment fee.
	EstablishmentFeeCap = 5000.0

	// LegalFeeRate is the share of the loan amount charged for legal work.
	LegalFeeRate = 0.005

	// LegalFeeCap caps the legal fee.
	LegalFeeCap = 2500.0

	// PropertyValuationFee applies when the loan is secured by property.
	PropertyValuationFee = 800.0

	// StandardValuationFee applies to every other security type.
	StandardValuationFee = 500.0
)

// Marketing constants reported alongside bank comparisons. These are not
// derived from any input.
const (
	TimeToApprovalDays = 1
	SettlementDays     = 4
)

// Bounds policy names
const (
	// PolicyStrict is the calculator's own bound set.
	PolicyStrict = "strict"

	// PolicyPermissive is the looser bound set historically applied by the
	// public calculate endpoint.
	PolicyPermissive = "permissive"

	// DefaultPolicy is used when no policy is configured.
	DefaultPolicy = PolicyStrict
)

// Bounds shared by both policies.
const (
	MinLoanAmount = 150000.0
	MaxLoanAmount = 5000000.0
	MinTermMonths = 1
	MaxTermMonths = 300
)

// Interest rate bounds per policy, in annual percent.
const (
	StrictMinInterestRate     = 5.0
	StrictMaxInterestRate     = 25.0
	PermissiveMinInterestRate = 0.1
	PermissiveMaxInterestRate = 50.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix namespaces environment overrides, e.g. LOANQUOTE_VALIDATION_POLICY.
	EnvPrefix = "LOANQUOTE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultCacheTTLSeconds is how long a cached quote response is kept.
	DefaultCacheTTLSeconds = 300

	// DefaultCachePrefix namespaces cache keys.
	DefaultCachePrefix = "loan_quote:"
)

// Cache backends
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Loan purposes accepted by the calculator.
const (
	PurposeBusiness       = "business"
	PurposeInvestment     = "investment"
	PurposeProperty       = "property"
	PurposeWorkingCapital = "working-capital"
)

// Security types accepted by the calculator.
const (
	SecurityProperty          = "property"
	SecurityBusinessAssets    = "business-assets"
	SecurityPersonalGuarantee = "personal-guarantee"
	SecurityOther             = "other"
)

// LoanPurposes lists every accepted loan purpose in display order.
var LoanPurposes = []string{PurposeBusiness, PurposeInvestment, PurposeProperty, PurposeWorkingCapital}

// SecurityTypes lists every accepted security type in display order.
var SecurityTypes = []string{SecurityProperty, SecurityBusinessAssets, SecurityPersonalGuarantee, SecurityOther}
