package config

// NotificationConfig defines where completed digests are delivered.
// An empty WebhookURL disables webhook delivery; an empty ReportDir
// disables the markdown report file.
type NotificationConfig struct {
	WebhookURL      string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty" validate:"omitempty,url"`
	ReportDir       string `json:"report_dir,omitempty" yaml:"report_dir,omitempty"`
	NotifyOnFailure bool   `json:"notify_on_failure" yaml:"notify_on_failure"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		WebhookURL:      "",
		ReportDir:       DefaultNotificationReportDir,
		NotifyOnFailure: true,
	}
}
