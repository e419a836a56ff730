package preflight

import (
	"fmt"
	"syscall"
)

// Free-space thresholds for the data directory. ROOT files of a run are
// written there, so low space is reported before it fails a run.
const (
	MinDiskSpaceBytes  = 100 * 1024 * 1024
	WarnDiskSpaceBytes = 1024 * 1024 * 1024
)

// CheckDiskSpace checks the free space of the file system holding path.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	result := CheckResult{
		Name:     "disk_space",
		Required: true,
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	available := stat.Bavail * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free in %s", formatBytes(available), path)

	switch {
	case available < MinDiskSpaceBytes:
		result.Status = StatusFail
		result.Details = "at least 100 MB is needed"
	case available < WarnDiskSpaceBytes:
		result.Status = StatusWarn
		result.Details = "ROOT files of a long run may not fit"
	default:
		result.Status = StatusPass
	}
	return result
}

func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
