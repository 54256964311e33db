package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "tgosint/backend/pkg/errors"
)

// ErrInvalidSubject is returned for subject names that are not a single plain path element
var ErrInvalidSubject = errors.New("invalid subject name")

// ListSubjects returns the subject folder names under dataDir, sorted
func ListSubjects(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, apperrors.NewArchiveUnreadable(dataDir, err)
	}

	subjects := []string{}
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			subjects = append(subjects, entry.Name())
		}
	}
	return subjects, nil
}

// SubjectFolder joins a subject name onto dataDir, rejecting names that would escape it
func SubjectFolder(dataDir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w %q", ErrInvalidSubject, name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w %q", ErrInvalidSubject, name)
	}
	return filepath.Join(dataDir, name), nil
}
