package services

import (
	"os"
	"strings"
)

// LogService exposes the application log file to the admin screen: tail the
// last N lines, filter by level, clear.
type LogService struct {
	path string
}

// NewLogService creates a new log service
func NewLogService(path string) *LogService {
	return &LogService{path: path}
}

// Tail returns up to limit lines from the end of the log, newest last.
// When level is non-empty only lines containing that level marker are kept.
func (s *LogService) Tail(limit int, level string) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	if level != "" {
		marker := `"level":"` + strings.ToUpper(level) + `"`
		var filtered []string
		for _, line := range lines {
			if strings.Contains(line, marker) {
				filtered = append(filtered, line)
			}
		}
		lines = filtered
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

// Size returns the log file size in bytes, 0 when the file does not exist.
func (s *LogService) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return info.Size(), nil
}

// Clear truncates the log file.
func (s *LogService) Clear() error {
	err := os.Truncate(s.path, 0)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
