package config

const (
	// Check Defaults
	DefaultCheckCooldownMinutes   = 0
	DefaultCheckFailureThreshold  = 3
	DefaultCheckMaxConcurrent     = 5
	DefaultCheckRunTimeoutSeconds = 300
	DefaultCheckUserAgent         = "site-differ/1.0"

	// Fetcher Defaults
	DefaultFetcherTimeoutSeconds        = 10
	DefaultFetcherConnectTimeoutSeconds = 3
	DefaultFetcherFollowRedirects       = true
	DefaultFetcherMaxRedirects          = 10
	DefaultFetcherMaxContentSize        = 1048576 // 1MB

	// Normalizer Defaults
	DefaultNormalizerPlaceholder = "[redacted]"

	// Diff Defaults
	DefaultDiffMaxLines      = 20
	DefaultDiffMaxLineLength = 200

	// Notification Defaults
	DefaultNotificationReportDir = "reports"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)
