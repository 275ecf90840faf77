package differ

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/models"
)

// ContentDiffer renders bounded line-level diffs between canonical text
// versions of a page.
type ContentDiffer struct {
	dmp           *diffmatchpatch.DiffMatchPatch
	maxDiffLines  int
	maxLineLength int
	logger        zerolog.Logger
}

// NewContentDiffer creates a ContentDiffer from diff configuration.
func NewContentDiffer(cfg config.DiffConfig, logger zerolog.Logger) *ContentDiffer {
	maxDiffLines := cfg.MaxDiffLines
	if maxDiffLines <= 0 {
		maxDiffLines = config.DefaultDiffMaxLines
	}
	maxLineLength := cfg.MaxLineLength
	if maxLineLength <= 0 {
		maxLineLength = config.DefaultDiffMaxLineLength
	}

	return &ContentDiffer{
		dmp:           diffmatchpatch.New(),
		maxDiffLines:  maxDiffLines,
		maxLineLength: maxLineLength,
		logger:        logger.With().Str("component", "ContentDiffer").Logger(),
	}
}

// Compare computes the line-level changes from previous to current text and
// renders them with -/+ markers, unchanged regions omitted. The rendering is
// bounded: at most maxDiffLines changed lines followed by a summary trailer,
// and every line capped at maxLineLength with an ellipsis. Line counts always
// reflect the full change set, not the truncated rendering.
func (cd *ContentDiffer) Compare(previousText, currentText string) *models.DiffResult {
	result := &models.DiffResult{}
	if previousText == currentText {
		return result
	}

	var changed []string
	for _, diff := range cd.computeLineDiffs(previousText, currentText) {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range splitDiffLines(diff.Text) {
				changed = append(changed, "-"+line)
				result.LinesRemoved++
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range splitDiffLines(diff.Text) {
				changed = append(changed, "+"+line)
				result.LinesAdded++
			}
		}
	}

	rendered := changed
	if len(changed) > cd.maxDiffLines {
		rendered = changed[:cd.maxDiffLines:cd.maxDiffLines]
		rendered = append(rendered, fmt.Sprintf("... (%d more changes)", len(changed)-cd.maxDiffLines))
		result.Truncated = true
	}

	for i, line := range rendered {
		rendered[i] = cd.truncateLine(line)
	}

	result.Text = strings.Join(rendered, "\n")

	cd.logger.Debug().
		Int("lines_added", result.LinesAdded).
		Int("lines_removed", result.LinesRemoved).
		Bool("truncated", result.Truncated).
		Msg("Generated diff snippet")

	return result
}

// computeLineDiffs runs the diff at line granularity so whole lines are the
// unit of change.
func (cd *ContentDiffer) computeLineDiffs(text1, text2 string) []diffmatchpatch.Diff {
	chars1, chars2, lines := cd.dmp.DiffLinesToChars(ensureTrailingNewline(text1), ensureTrailingNewline(text2))
	diffs := cd.dmp.DiffMain(chars1, chars2, false)
	return cd.dmp.DiffCharsToLines(diffs, lines)
}

// ensureTrailingNewline terminates the final line so line tokenization does
// not treat "last" and "last\n" as different lines. Without it, appending
// below the old last line would also report that line as changed.
func ensureTrailingNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}

// truncateLine caps a rendered line at maxLineLength bytes without splitting
// a rune, marking the cut with an ellipsis.
func (cd *ContentDiffer) truncateLine(line string) string {
	if len(line) <= cd.maxLineLength {
		return line
	}
	cut := cd.maxLineLength
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}

// splitDiffLines splits a diff segment into its lines, dropping the empty
// remainder a trailing newline leaves behind.
func splitDiffLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
