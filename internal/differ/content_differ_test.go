package differ

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/batemapf/site-differ/internal/config"
)

func newTestDiffer(cfg config.DiffConfig) *ContentDiffer {
	return NewContentDiffer(cfg, zerolog.Nop())
}

func TestContentDiffer_Compare_Identical(t *testing.T) {
	cd := newTestDiffer(config.NewDefaultDiffConfig())

	result := cd.Compare("line one\nline two", "line one\nline two")

	assert.True(t, result.IsEmpty())
	assert.Equal(t, "", result.Text)
	assert.False(t, result.Truncated)
}

func TestContentDiffer_Compare_ChangedLine(t *testing.T) {
	cd := newTestDiffer(config.NewDefaultDiffConfig())

	result := cd.Compare("alpha\nbeta\ngamma", "alpha\ndelta\ngamma")

	assert.Equal(t, "-beta\n+delta", result.Text)
	assert.Equal(t, 1, result.LinesAdded)
	assert.Equal(t, 1, result.LinesRemoved)
	assert.False(t, result.Truncated)
}

func TestContentDiffer_Compare_AddedLines(t *testing.T) {
	cd := newTestDiffer(config.NewDefaultDiffConfig())

	result := cd.Compare("alpha\nbeta", "alpha\nbeta\ngamma\ndelta")

	assert.Equal(t, "+gamma\n+delta", result.Text)
	assert.Equal(t, 2, result.LinesAdded)
	assert.Equal(t, 0, result.LinesRemoved)
}

func TestContentDiffer_Compare_RemovedLines(t *testing.T) {
	cd := newTestDiffer(config.NewDefaultDiffConfig())

	result := cd.Compare("alpha\nbeta\ngamma", "alpha\ngamma")

	assert.Equal(t, "-beta", result.Text)
	assert.Equal(t, 0, result.LinesAdded)
	assert.Equal(t, 1, result.LinesRemoved)
}

func TestContentDiffer_Compare_MultipleChangedRegions(t *testing.T) {
	cd := newTestDiffer(config.NewDefaultDiffConfig())

	result := cd.Compare("a\nb\nc\nd", "a\nB\nc\nD")

	assert.Equal(t, "-b\n+B\n-d\n+D", result.Text)
	assert.Equal(t, 2, result.LinesAdded)
	assert.Equal(t, 2, result.LinesRemoved)
}

func TestContentDiffer_Compare_TruncatesLineCount(t *testing.T) {
	cfg := config.NewDefaultDiffConfig()
	cfg.MaxDiffLines = 3
	cd := newTestDiffer(cfg)

	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}

	result := cd.Compare("", strings.Join(lines, "\n"))

	assert.True(t, result.Truncated)
	assert.Equal(t, 10, result.LinesAdded)
	assert.Equal(t, "+line 1\n+line 2\n+line 3\n... (7 more changes)", result.Text)
}

func TestContentDiffer_Compare_TruncatesLongLines(t *testing.T) {
	cfg := config.NewDefaultDiffConfig()
	cfg.MaxLineLength = 10
	cd := newTestDiffer(cfg)

	result := cd.Compare("short", "abcdefghijklmnop")

	assert.Equal(t, "-short\n+abcdefghi...", result.Text)
	assert.False(t, result.Truncated)
}

func TestContentDiffer_Compare_LineCountUnaffectedByLongLines(t *testing.T) {
	cfg := config.NewDefaultDiffConfig()
	cfg.MaxLineLength = 10
	cd := newTestDiffer(cfg)

	long := strings.Repeat("x", 500)
	result := cd.Compare("before", long)

	assert.Equal(t, 1, result.LinesAdded)
	assert.Equal(t, 1, result.LinesRemoved)
	assert.False(t, result.Truncated)
}

func TestContentDiffer_Compare_DefaultBounds(t *testing.T) {
	cd := newTestDiffer(config.DiffConfig{})

	var lines []string
	for i := 1; i <= 30; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}

	result := cd.Compare("", strings.Join(lines, "\n"))

	assert.True(t, result.Truncated)
	assert.Contains(t, result.Text, "... (10 more changes)")
	assert.Len(t, strings.Split(result.Text, "\n"), config.DefaultDiffMaxLines+1)
}
