/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Writes run summaries as JSON files. Files are grouped in a
subdirectory per kind and named <timestamp>_<kind>_v<version>.json.
*/

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/kleascm/gatedseq/pkg/record"
)

// FieldSummary describes one field of a record
type FieldSummary struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Summary describes one processed record
type Summary struct {
	RecordID     string          `json:"record_id"`
	Schema       string          `json:"schema"`
	Frozen       bool            `json:"frozen"`
	Bytes        int             `json:"bytes"`
	UnknownBytes int             `json:"unknown_bytes"`
	Fields       []FieldSummary  `json:"fields"`
	Checks       map[string]bool `json:"checks,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Summarize builds a summary for r. size is the encoded size in bytes.
func Summarize(r *record.Record, size int) *Summary {
	counts := r.Counts()
	s := &Summary{
		RecordID:     r.ID.String(),
		Schema:       r.Schema().Name,
		Frozen:       r.Frozen(),
		Bytes:        size,
		UnknownBytes: len(r.Unknown()),
		CreatedAt:    time.Now().UTC(),
	}
	for _, fs := range r.Schema().Fields() {
		s.Fields = append(s.Fields, FieldSummary{
			Name:  fs.Name,
			Kind:  fs.Kind.String(),
			Count: counts[fs.Name],
		})
	}
	sort.SliceStable(s.Fields, func(i, j int) bool { return s.Fields[i].Name < s.Fields[j].Name })
	return s
}

// Write stores result as JSON under dir/kind and returns the file path
func Write(dir, kind, version string, result interface{}) (string, error) {
	reportDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// 2024-06-11_01-30-00.000_decode_v1.0.0.json
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s_v%s.json", timestamp, kind, version)
	filePath := filepath.Join(reportDir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return filePath, nil
}
