/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file retention for gatedseq.
*/

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LogManager applies the retention policy to a log directory
type LogManager struct {
	logDir   string
	maxFiles int
}

// NewLogManager creates a new log manager
func NewLogManager(logDir string, maxFiles int) *LogManager {
	return &LogManager{
		logDir:   logDir,
		maxFiles: maxFiles,
	}
}

// LogFiles lists the log files in the directory, oldest first
func (lm *LogManager) LogFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(lm.logDir, logFilePrefix+"*.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}

	modTimes := make(map[string]int64, len(files))
	for _, file := range files {
		if stat, err := os.Stat(file); err == nil {
			modTimes[file] = stat.ModTime().UnixNano()
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		if modTimes[files[i]] != modTimes[files[j]] {
			return modTimes[files[i]] < modTimes[files[j]]
		}
		return files[i] < files[j]
	})
	return files, nil
}

// CleanupOldLogs removes the oldest log files beyond maxFiles
func (lm *LogManager) CleanupOldLogs() error {
	files, err := lm.LogFiles()
	if err != nil {
		return err
	}
	if lm.maxFiles <= 0 || len(files) <= lm.maxFiles {
		return nil
	}

	for _, file := range files[:len(files)-lm.maxFiles] {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", file, err)
		}
	}
	return nil
}
