package urlhandler

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Custom errors for file operations
var (
	ErrFileNotFound = errors.New("input file not found")
	ErrFileEmpty    = errors.New("input file is empty or contains no valid URLs")
	ErrReadingFile  = errors.New("error reading input file")
)

// ReadURLsFromFile reads a file line by line, normalizes each line as a
// URL, and returns the valid, normalized URLs. Blank lines and lines
// starting with '#' are skipped.
func ReadURLsFromFile(filePath string, logger zerolog.Logger) ([]string, error) {
	fileLogger := logger.With().Str("filePath", filePath).Logger()

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("error checking file %s: %w", filePath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input path is a directory, not a file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (cause: %v)", ErrReadingFile, filePath, err)
	}
	defer file.Close()

	var normalizedURLs []string
	scanner := bufio.NewScanner(file)

	totalLinesRead := 0
	skippedCount := 0

	for scanner.Scan() {
		totalLinesRead++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		normalizedURL, normErr := NormalizeURL(line)
		if normErr != nil {
			fileLogger.Warn().Err(normErr).Int("lineNumber", totalLinesRead).Str("originalURL", line).Msg("Error normalizing URL, skipping")
			skippedCount++
			continue
		}
		normalizedURLs = append(normalizedURLs, normalizedURL)
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return nil, fmt.Errorf("%w: %s (scan error: %v)", ErrReadingFile, filePath, scanErr)
	}

	fileLogger.Info().
		Int("totalLinesRead", totalLinesRead).
		Int("normalizedCount", len(normalizedURLs)).
		Int("skippedCount", skippedCount).
		Msg("Finished processing URL file")

	if len(normalizedURLs) == 0 {
		return nil, fmt.Errorf("%w: %s (no valid URLs found after processing %d lines)", ErrFileEmpty, filePath, totalLinesRead)
	}

	return normalizedURLs, nil
}
