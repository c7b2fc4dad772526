package outwriter

import (
	"os"

	"golang.org/x/term"
)

// terminalWidth returns the override when positive, otherwise the detected
// width of stdout, falling back to 80 columns for pipes and CI.
func terminalWidth(override int) int {
	if override > 0 {
		return override
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80
	}
	return detectedWidth
}

// notesWidth calculates the space left for the free-text column of the
// outcome table once the fixed columns are laid out.
func notesWidth(termWidth int) int {
	// Rank + Repository + Stars + Outcome + Build with borders/padding
	baseWidth := 70
	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}

// truncate shortens s to at most maxWidth runes, marking the cut with "...".
func truncate(s string, maxWidth int) string {
	runes := []rune(s)
	if maxWidth <= 3 || len(runes) <= maxWidth {
		return s
	}
	return string(runes[:maxWidth-3]) + "..."
}
