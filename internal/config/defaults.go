package config

// Default values applied before any TOML file or environment override is
// considered.
const (
	DefaultMaxConcurrentTransfers = 10
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "text"
	DefaultRetryBaseBackoffMS     = 200
	DefaultRetryMaxAttempts       = 5
)

// DefaultConfig returns a Config populated with every implementation-chosen
// default named in the ambient configuration surface.
func DefaultConfig() *Config {
	return &Config{
		Transfers: TransfersConfig{
			MaxConcurrentTransfers: DefaultMaxConcurrentTransfers,
		},
		Logging: LoggingConfig{
			LogLevel:  DefaultLogLevel,
			LogFormat: DefaultLogFormat,
		},
		Listing: ListingConfig{
			RetryBaseBackoffMS: DefaultRetryBaseBackoffMS,
			RetryMaxAttempts:   DefaultRetryMaxAttempts,
		},
	}
}
