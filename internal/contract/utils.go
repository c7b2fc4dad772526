package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Codegass/repodigger/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	AcceptedColor = color.New(color.FgGreen, color.Bold)   // AcceptedColor marks repositories kept for mining.
	RejectedColor = color.New(color.FgYellow)              // RejectedColor marks build-system rejections.
	FailedColor   = color.New(color.FgRed, color.Bold)     // FailedColor marks clone failures.
	SkippedColor  = color.New(color.FgMagenta, color.Bold) // SkippedColor marks quota skips.
)

// GetPlainLabel returns a short human label for an acquisition outcome.
func GetPlainLabel(outcome schema.AcquisitionOutcome) string {
	switch outcome {
	case schema.Accepted:
		return "Accepted"
	case schema.RejectedBuildSystem:
		return "Rejected"
	case schema.FailedClone:
		return "Failed"
	case schema.SkippedQuotaExceeded:
		return "Skipped"
	default:
		return string(outcome)
	}
}

// GetColorLabel returns a colored outcome label for console output (table).
func GetColorLabel(outcome schema.AcquisitionOutcome) string {
	text := GetPlainLabel(outcome)

	switch outcome {
	case schema.Accepted:
		return AcceptedColor.Sprint(text)
	case schema.RejectedBuildSystem:
		return RejectedColor.Sprint(text)
	case schema.FailedClone:
		return FailedColor.Sprint(text)
	default:
		return SkippedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repodigger_runs.db"
	}
	return filepath.Join(homeDir, ".repodigger_runs.db")
}

// ParseBoolString parses yes/no style strings into a bool.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SafeRemoveAll removes path only when it is strictly inside root.
// It refuses root itself, relative escapes and empty inputs.
func SafeRemoveAll(root, path string) error {
	if root == "" || path == "" {
		return fmt.Errorf("refusing to remove with empty root or path")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return fmt.Errorf("failed to relate %q to %q: %w", absPath, absRoot, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("refusing to remove %q: not inside %q", absPath, absRoot)
	}
	return os.RemoveAll(absPath)
}
