// Package quota samples disk usage for the acquisition quota breaker.
package quota

import (
	"context"
	"fmt"

	"github.com/Codegass/repodigger/internal/contract"
	"github.com/shirou/gopsutil/v4/disk"
)

// UsageFunc reports the used and total bytes of the filesystem holding path.
type UsageFunc func(ctx context.Context, path string) (used, total uint64, err error)

// DiskUsage reads filesystem usage with gopsutil.
func DiskUsage(ctx context.Context, path string) (uint64, uint64, error) {
	stat, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	return stat.Used, stat.Total, nil
}

// Monitor trips when the filesystem holding Root is more than Threshold percent full.
type Monitor struct {
	Root      string
	Threshold float64
	Usage     UsageFunc
}

var _ contract.QuotaChecker = &Monitor{} // Compile-time check

// NewMonitor creates a monitor over root backed by gopsutil.
func NewMonitor(root string, threshold float64) *Monitor {
	return &Monitor{Root: root, Threshold: threshold, Usage: DiskUsage}
}

// Check samples usage once. The ceiling is exclusive: exactly Threshold does not trip.
func (m *Monitor) Check(ctx context.Context) (bool, float64, error) {
	used, total, err := m.Usage(ctx, m.Root)
	if err != nil {
		return false, 0, fmt.Errorf("failed to read disk usage of %s: %w", m.Root, err)
	}
	if total == 0 {
		return false, 0, fmt.Errorf("filesystem of %s reports zero capacity", m.Root)
	}
	percent := float64(used) / float64(total) * 100
	return percent > m.Threshold, percent, nil
}
