package config

// FetcherConfig defines configuration for the HTTP content fetcher.
type FetcherConfig struct {
	TimeoutSeconds        int  `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
	ConnectTimeoutSeconds int  `json:"connect_timeout_seconds,omitempty" yaml:"connect_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	FollowRedirects       bool `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects          int  `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=0"`
	MaxContentSize        int  `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=1"` // Max content size in bytes
	InsecureSkipVerify    bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// NewDefaultFetcherConfig creates default fetcher configuration
func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		TimeoutSeconds:        DefaultFetcherTimeoutSeconds,
		ConnectTimeoutSeconds: DefaultFetcherConnectTimeoutSeconds,
		FollowRedirects:       DefaultFetcherFollowRedirects,
		MaxRedirects:          DefaultFetcherMaxRedirects,
		MaxContentSize:        DefaultFetcherMaxContentSize,
		InsecureSkipVerify:    false,
	}
}
