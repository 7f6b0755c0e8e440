package config

const (
	defaultDataDir             = "~/.local/share/romnorm"
	defaultLogDir              = "~/.local/share/romnorm/logs"
	defaultConvertersFile      = "conversion/converters.yaml"
	defaultFormatsFile         = "conversion/platform_formats.yaml"
	defaultHistoryFile         = "history.db"
	defaultValidation          = "schema"
	defaultEmptyDocumentPolicy = "synthesize"
	defaultPollIntervalMillis  = 50
	defaultGracePeriodMillis   = 2000
	defaultCopyBufferBytes     = 1 << 20
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	// EnvConvertersPath overrides conversion.converters_path.
	EnvConvertersPath = "ROMNORM_CONVERTERS_PATH"
	// EnvFormatsPath overrides conversion.formats_path.
	EnvFormatsPath = "ROMNORM_FORMATS_PATH"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Conversion: Conversion{
			Validation:          defaultValidation,
			EmptyDocumentPolicy: defaultEmptyDocumentPolicy,
			PollIntervalMillis:  defaultPollIntervalMillis,
			GracePeriodMillis:   defaultGracePeriodMillis,
			CopyBufferBytes:     defaultCopyBufferBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
