// Package outbox keeps sent contact form submissions on the local filesystem.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/smileynet/contactform/internal/form"
)

// ErrInvalidID indicates a submission ID is not a UUID.
var ErrInvalidID = errors.New("outbox: invalid submission ID")

// FileStore persists submissions as one JSON file each under a base directory.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a FileStore that saves submissions under baseDir.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Dir returns the directory submissions are written to.
func (s *FileStore) Dir() string {
	return s.baseDir
}

// Save writes the submission to a JSON file named by its ID.
func (s *FileStore) Save(sub form.Submission) error {
	p, err := s.path(sub.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("outbox: creating directory: %w", err)
	}

	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return fmt.Errorf("outbox: marshaling: %w", err)
	}

	// Write then rename so a reader never sees a partial file.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("outbox: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("outbox: writing %s: %w", p, err)
	}
	return nil
}

// Load reads the submission with the given ID.
// Returns (sub, true, nil) if found, (zero, false, nil) if not found.
func (s *FileStore) Load(id string) (form.Submission, bool, error) {
	p, err := s.path(id)
	if err != nil {
		return form.Submission{}, false, err
	}
	sub, err := readSubmission(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return form.Submission{}, false, nil
		}
		return form.Submission{}, false, err
	}
	return sub, true, nil
}

// List returns every stored submission, oldest first. A missing directory
// is an empty outbox.
func (s *FileStore) List() ([]form.Submission, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("outbox: reading %s: %w", s.baseDir, err)
	}

	var subs []form.Submission
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		sub, err := readSubmission(filepath.Join(s.baseDir, e.Name()))
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
	})
	return subs, nil
}

// Remove deletes the submission file for the given ID.
func (s *FileStore) Remove(id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("outbox: removing %s: %w", p, err)
	}
	return nil
}

// Hook returns a SubmitHook that saves each submission and reports
// failures to onErr. A nil onErr drops failures.
func (s *FileStore) Hook(onErr func(form.Submission, error)) form.SubmitHook {
	return func(sub form.Submission) {
		if err := s.Save(sub); err != nil && onErr != nil {
			onErr(sub, err)
		}
	}
}

func readSubmission(p string) (form.Submission, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return form.Submission{}, err
		}
		return form.Submission{}, fmt.Errorf("outbox: reading %s: %w", p, err)
	}
	var sub form.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return form.Submission{}, fmt.Errorf("outbox: parsing %s: %w", p, err)
	}
	return sub, nil
}

// path returns the filesystem path for a submission file. Only canonical
// lowercase UUIDs are accepted, which rules out separators and dot-segments.
func (s *FileStore) path(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}
