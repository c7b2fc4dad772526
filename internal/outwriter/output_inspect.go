package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/Codegass/repodigger/core/buildsys"
	"github.com/Codegass/repodigger/schema"
)

// WriteVerdict prints a build-system verdict for one directory.
func WriteVerdict(w io.Writer, root string, verdict schema.BuildVerdict, output schema.OutputMode) error {
	if output == schema.JSONOut {
		return writeJSON(w, struct {
			Path string `json:"path"`
			schema.BuildVerdict
		}{root, verdict})
	}
	status := "✅ qualifies"
	if !verdict.Qualifies {
		status = "❌ does not qualify"
	}
	if _, err := fmt.Fprintf(w, "%s: %s (%s)\n", root, status, buildsys.Describe(verdict)); err != nil {
		return err
	}
	for _, reason := range verdict.Reasons {
		if _, err := fmt.Fprintf(w, "  - %s\n", reason); err != nil {
			return err
		}
	}
	return nil
}

// PrintRunStoreStatus prints run store status information.
func PrintRunStoreStatus(w io.Writer, status schema.RunStoreStatus) {
	_, _ = fmt.Fprintf(w, "Run Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Total Accepted: %d\n", status.TotalAccepted)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for table, size := range status.TableSizes {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, size)
	}
}

// FormatList renders names for a single log line, eliding long lists.
func FormatList(names []string, limit int) string {
	if len(names) <= limit || limit <= 0 {
		return "[" + strings.Join(names, ", ") + "]"
	}
	return fmt.Sprintf("[%s, ... +%d more]", strings.Join(names[:limit], ", "), len(names)-limit)
}
