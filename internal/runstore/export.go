package runstore

import (
	"errors"
	"fmt"

	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/parquet"
)

// ExportRuns writes every stored run and outcome to Parquet files next to outputFile.
func ExportRuns(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total outcome records: %d\n", status.TableSizes[outcomesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	outcomes, err := store.GetAllOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve outcomes: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	outcomesFile := outputFile + ".outcomes.parquet"
	if err := parquet.WriteOutcomesParquet(parquet.ConvertOutcomeRecords(outcomes), outcomesFile); err != nil {
		return fmt.Errorf("failed to write outcomes: %w", err)
	}
	fmt.Printf("Exported %d outcome records to: %s\n", len(outcomes), outcomesFile)

	return nil
}
