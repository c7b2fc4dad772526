package outwriter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteLedger writes one name per line to path, replacing any previous content.
// An empty list still produces an (empty) file so stale entries never survive a run.
func WriteLedger(path string, names []string) error {
	return createFileAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, name := range names {
			if _, err := bw.WriteString(name + "\n"); err != nil {
				return fmt.Errorf("failed to write ledger entry: %w", err)
			}
		}
		return bw.Flush()
	})
}

// ReadLedger reads a ledger file written by WriteLedger. Blank lines are ignored.
func ReadLedger(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}
	return names, nil
}
