package notifier

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/batemapf/site-differ/internal/models"
)

// Digest formatting constants
const (
	reportTitle             = "Website Diff Checker - Change Report"
	reportFooter            = "This is an automated message from Website Diff Checker."
	reportRuleWidth         = 60
	diffFenceWidth          = 56
	fingerprintPrefixLength = 16
	subjectTimeLayout       = "2006-01-02 15:04 UTC"
	bodyTimeLayout          = "2006-01-02 15:04:05 UTC"
)

// DigestFormatter renders a Digest as a subject line plus plain-text and
// HTML bodies. Both bodies carry the same information; the HTML variant
// colors added and removed diff lines.
type DigestFormatter struct{}

// NewDigestFormatter creates a DigestFormatter.
func NewDigestFormatter() *DigestFormatter {
	return &DigestFormatter{}
}

// Subject renders the digest subject line.
func (df *DigestFormatter) Subject(digest models.Digest) string {
	return fmt.Sprintf(
		"Website changes detected (%d of %d) - %s",
		len(digest.Changes),
		digest.Summary.Checked,
		digest.GeneratedAt.UTC().Format(subjectTimeLayout),
	)
}

// TextBody renders the plain-text digest body.
func (df *DigestFormatter) TextBody(digest models.Digest) string {
	lines := []string{
		reportTitle,
		strings.Repeat("=", reportRuleWidth),
		fmt.Sprintf("Run time: %s", digest.GeneratedAt.UTC().Format(bodyTimeLayout)),
		fmt.Sprintf("URLs checked: %d", digest.Summary.Checked),
		fmt.Sprintf("Changes detected: %d", len(digest.Changes)),
	}
	if len(digest.Failures) > 0 {
		lines = append(lines, fmt.Sprintf("Persistently failing: %d", len(digest.Failures)))
	}
	lines = append(lines, "")

	for i, change := range digest.Changes {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, change.URL),
			fmt.Sprintf("   Previous hash: %s", fingerprintPrefix(change.PreviousFingerprint)),
			fmt.Sprintf("   New hash:      %s", fingerprintPrefix(change.NewFingerprint)),
			"",
			"   Changes:",
			"   "+strings.Repeat("-", diffFenceWidth),
		)
		for _, diffLine := range strings.Split(change.Diff.Text, "\n") {
			lines = append(lines, "   "+diffLine)
		}
		lines = append(lines, "   "+strings.Repeat("-", diffFenceWidth), "")
	}

	if len(digest.Failures) > 0 {
		lines = append(lines, "Persistently failing URLs:")
		for i, failure := range digest.Failures {
			lines = append(lines,
				fmt.Sprintf("%d. %s", i+1, failure.URL),
				fmt.Sprintf("   Consecutive failures: %d", failure.ConsecutiveFailures),
				fmt.Sprintf("   Last error: %s", failure.LastError),
				"",
			)
		}
	}

	lines = append(lines, strings.Repeat("=", reportRuleWidth), reportFooter)

	return strings.Join(lines, "\n")
}

// HTMLBody renders the HTML digest body.
func (df *DigestFormatter) HTMLBody(digest models.Digest) string {
	parts := []string{
		"<!DOCTYPE html>",
		"<html>",
		"<head>",
		"<style>",
		"body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }",
		"h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }",
		".summary { background: #ecf0f1; padding: 15px; border-radius: 5px; margin: 20px 0; }",
		".change { border: 1px solid #bdc3c7; border-radius: 5px; padding: 15px; margin: 20px 0; }",
		".change-header { font-weight: bold; color: #2980b9; margin-bottom: 10px; }",
		".failure { border: 1px solid #e74c3c; border-radius: 5px; padding: 15px; margin: 20px 0; }",
		".failure-header { font-weight: bold; color: #c0392b; margin-bottom: 10px; }",
		".url { color: #3498db; word-break: break-all; }",
		".diff { background: #f8f9fa; padding: 10px; border-left: 4px solid #3498db; font-family: monospace; white-space: pre-wrap; overflow-x: auto; }",
		".added { color: #27ae60; }",
		".removed { color: #e74c3c; }",
		".footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #bdc3c7; font-size: 0.9em; color: #7f8c8d; }",
		"</style>",
		"</head>",
		"<body>",
		fmt.Sprintf("<h1>%s</h1>", reportTitle),
		"<div class='summary'>",
		fmt.Sprintf("<p><strong>Run time:</strong> %s</p>", digest.GeneratedAt.UTC().Format(bodyTimeLayout)),
		fmt.Sprintf("<p><strong>URLs checked:</strong> %d</p>", digest.Summary.Checked),
		fmt.Sprintf("<p><strong>Changes detected:</strong> %d</p>", len(digest.Changes)),
		"</div>",
	}

	for i, change := range digest.Changes {
		escapedURL := html.EscapeString(change.URL)
		parts = append(parts,
			"<div class='change'>",
			fmt.Sprintf("<div class='change-header'>%d. Change Detected</div>", i+1),
			fmt.Sprintf("<p><strong>URL:</strong> <a href='%s' class='url'>%s</a></p>", escapedURL, escapedURL),
			fmt.Sprintf("<p><strong>Previous hash:</strong> <code>%s</code></p>", fingerprintPrefix(change.PreviousFingerprint)),
			fmt.Sprintf("<p><strong>New hash:</strong> <code>%s</code></p>", fingerprintPrefix(change.NewFingerprint)),
			"<p><strong>Changes:</strong></p>",
			"<div class='diff'>",
		)
		for _, line := range strings.Split(change.Diff.Text, "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				parts = append(parts, fmt.Sprintf("<span class='added'>%s</span>", html.EscapeString(line)))
			case strings.HasPrefix(line, "-"):
				parts = append(parts, fmt.Sprintf("<span class='removed'>%s</span>", html.EscapeString(line)))
			default:
				parts = append(parts, html.EscapeString(line))
			}
		}
		parts = append(parts, "</div>", "</div>")
	}

	for i, failure := range digest.Failures {
		parts = append(parts,
			"<div class='failure'>",
			fmt.Sprintf("<div class='failure-header'>%d. Persistently Failing</div>", i+1),
			fmt.Sprintf("<p><strong>URL:</strong> <span class='url'>%s</span></p>", html.EscapeString(failure.URL)),
			fmt.Sprintf("<p><strong>Consecutive failures:</strong> %d</p>", failure.ConsecutiveFailures),
			fmt.Sprintf("<p><strong>Last error:</strong> %s</p>", html.EscapeString(failure.LastError)),
			"</div>",
		)
	}

	parts = append(parts,
		"<div class='footer'>",
		fmt.Sprintf("<p>%s</p>", reportFooter),
		"</div>",
		"</body>",
		"</html>",
	)

	return strings.Join(parts, "\n")
}

// fingerprintPrefix shortens a fingerprint for display. Full SHA-256 hex is
// noise in a report; the first 16 characters identify the snapshot.
func fingerprintPrefix(fingerprint string) string {
	if len(fingerprint) <= fingerprintPrefixLength {
		return fingerprint
	}
	return fingerprint[:fingerprintPrefixLength] + "..."
}
