package notifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/models"
)

// reportFileTimeLayout names report files by run time, sortable by name.
const reportFileTimeLayout = "20060102-150405"

// MarkdownReportNotifier writes each digest as a markdown report file under
// the configured directory, one file per run.
type MarkdownReportNotifier struct {
	reportDir string
	logger    zerolog.Logger
}

// NewMarkdownReportNotifier creates a MarkdownReportNotifier.
func NewMarkdownReportNotifier(cfg config.NotificationConfig, logger zerolog.Logger) *MarkdownReportNotifier {
	return &MarkdownReportNotifier{
		reportDir: cfg.ReportDir,
		logger:    logger.With().Str("component", "MarkdownReportNotifier").Logger(),
	}
}

// Notify writes the digest report file. An empty report directory disables
// the writer without error.
func (mr *MarkdownReportNotifier) Notify(ctx context.Context, digest models.Digest) error {
	if mr.reportDir == "" {
		mr.logger.Debug().Msg("Report directory is empty, skipping markdown report")
		return nil
	}

	if err := os.MkdirAll(mr.reportDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory '%s': %w", mr.reportDir, err)
	}

	filename := fmt.Sprintf("digest-%s.md", digest.GeneratedAt.UTC().Format(reportFileTimeLayout))
	reportPath := filepath.Join(mr.reportDir, filename)

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", reportPath, err)
	}
	defer file.Close()

	if err := mr.buildReport(markdown.NewMarkdown(file), digest); err != nil {
		return fmt.Errorf("failed to write report file '%s': %w", reportPath, err)
	}

	mr.logger.Info().
		Str("report_path", reportPath).
		Int("changes", len(digest.Changes)).
		Int("failures", len(digest.Failures)).
		Msg("Markdown report written")

	return nil
}

// buildReport assembles the markdown document for one digest.
func (mr *MarkdownReportNotifier) buildReport(md *markdown.Markdown, digest models.Digest) error {
	md.H1(reportTitle)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run time", digest.GeneratedAt.UTC().Format(bodyTimeLayout)},
			{"URLs checked", strconv.Itoa(digest.Summary.Checked)},
			{"Changed", strconv.Itoa(digest.Summary.Changed)},
			{"Unchanged", strconv.Itoa(digest.Summary.Unchanged)},
			{"Baselined", strconv.Itoa(digest.Summary.Baselined)},
			{"Failed", strconv.Itoa(digest.Summary.Failed)},
		},
	})
	md.PlainText("")

	if len(digest.Changes) > 0 {
		md.H2("Changes")
		md.PlainText("")

		for _, change := range digest.Changes {
			md.H3(change.URL)
			md.PlainText("")
			md.Table(markdown.TableSet{
				Header: []string{"Property", "Value"},
				Rows: [][]string{
					{"Previous hash", "`" + fingerprintPrefix(change.PreviousFingerprint) + "`"},
					{"New hash", "`" + fingerprintPrefix(change.NewFingerprint) + "`"},
					{"Checked at", change.CheckedAt.UTC().Format(bodyTimeLayout)},
				},
			})
			md.PlainText("")
			md.CodeBlocks(markdown.SyntaxHighlightDiff, change.Diff.Text)
			md.PlainText("")
			if change.Diff.Truncated {
				md.Note("The diff exceeds the configured bounds and was truncated.")
				md.PlainText("")
			}
		}
	}

	if len(digest.Failures) > 0 {
		md.H2("Persistently Failing URLs")
		md.PlainText("")

		rows := make([][]string, len(digest.Failures))
		for i, failure := range digest.Failures {
			rows[i] = []string{
				failure.URL,
				strconv.Itoa(failure.ConsecutiveFailures),
				failure.LastError,
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Consecutive Failures", "Last Error"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%s*", reportFooter)

	return md.Build()
}
