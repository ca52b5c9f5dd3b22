package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/nullmapper/distcrawler/pkg/fileutil"
)

// WriteRunSummary renders summary as indented JSON at path.
func WriteRunSummary(path string, summary RunSummary) failure.ClassifiedError {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return &MetricsError{Message: err.Error(), Cause: ErrCauseWriteFailure}
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return &MetricsError{Message: err.Error(), Cause: ErrCauseWriteFailure}
	}
	return nil
}
