package beheader

import (
	"fmt"
	"path"
	"strings"
)

func validateJob(job Job) error {
	if strings.TrimSpace(job.Output) == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidJob)
	}
	if strings.TrimSpace(job.Image) == "" {
		return fmt.Errorf("%w: image path is empty", ErrInvalidJob)
	}
	if strings.TrimSpace(job.Media) == "" {
		return fmt.Errorf("%w: media path is empty", ErrInvalidJob)
	}
	for i, p := range job.Archives {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: archive path %d is empty", ErrInvalidJob, i)
		}
	}
	return nil
}

// validateEntryName rejects archive entry names that would escape the
// extraction directory. Names are slash separated as stored; a trailing
// slash marks a directory and is fine.
func validateEntryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("entry name is empty")
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("entry name must not be absolute")
	}
	if strings.Contains(name, "\\") {
		return fmt.Errorf("entry name must use forward slashes")
	}
	clean := path.Clean(name)
	if clean == "." {
		return fmt.Errorf("entry name must not be current directory")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("entry name must not escape")
	}
	return nil
}
