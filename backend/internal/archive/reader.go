package archive

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tgosint/backend/internal/constants"
	apperrors "tgosint/backend/pkg/errors"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// Reader loads subject folders written by the message fetcher
type Reader struct {
	logger *zap.Logger
	repair bool
}

// NewReader creates a new archive reader
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// SetRepair enables salvaging malformed archive files with jsonrepair before skipping them
func (r *Reader) SetRepair(enabled bool) {
	r.repair = enabled
}

// ListArchiveFiles returns the names of all per-chat archive files in folder, sorted
func ListArchiveFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, apperrors.NewArchiveUnreadable(folder, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(name, constants.ArchiveFilePrefix) && strings.HasSuffix(name, constants.ArchiveFileSuffix) {
			files = append(files, name)
		}
	}
	return files, nil
}

// ChatName extracts the chat name from an archive file name ("messages_golang.json" -> "golang")
func ChatName(fileName string) string {
	name := strings.TrimPrefix(fileName, constants.ArchiveFilePrefix)
	return strings.TrimSuffix(name, constants.ArchiveFileSuffix)
}

// Read loads every archive file in folder into one message set.
// Malformed files and records are skipped with a log entry; only an unreadable folder is an error.
func (r *Reader) Read(folder string) (*Archive, error) {
	files, err := ListArchiveFiles(folder)
	if err != nil {
		return nil, err
	}

	arc := &Archive{
		Folder:   folder,
		Files:    files,
		Messages: []Message{},
	}

	for _, name := range files {
		path := filepath.Join(folder, name)
		raws, err := r.readRecords(path)
		if err != nil {
			arc.SkippedFiles++
			r.logger.Warn("Skipping unreadable archive file",
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}

		chat := ChatName(name)
		skipped := 0
		for i, raw := range raws {
			msg, err := decodeRecord(raw, chat)
			if err != nil {
				skipped++
				r.logger.Debug("Skipping malformed archive record",
					zap.String("file", path),
					zap.Int("index", i),
					zap.Error(err),
				)
				continue
			}
			arc.Messages = append(arc.Messages, msg)
		}
		arc.SkippedRecords += skipped

		if skipped > 0 {
			r.logger.Warn("Archive file contained malformed records",
				zap.String("file", path),
				zap.Int("skipped", skipped),
				zap.Int("total", len(raws)),
			)
		}
	}

	r.logger.Info("Archive loaded",
		zap.String("folder", folder),
		zap.Int("files", len(files)),
		zap.Int("messages", len(arc.Messages)),
		zap.Int("skipped_files", arc.SkippedFiles),
		zap.Int("skipped_records", arc.SkippedRecords),
	)

	return arc, nil
}

func (r *Reader) readRecords(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	parseErr := json.Unmarshal(data, &raws)
	if parseErr == nil {
		return raws, nil
	}

	if !r.repair {
		return nil, apperrors.NewArchiveFileMalformed(path, parseErr)
	}

	repaired, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return nil, apperrors.NewArchiveFileMalformed(path, parseErr)
	}
	raws = nil
	if err := json.Unmarshal([]byte(repaired), &raws); err != nil {
		return nil, apperrors.NewArchiveFileMalformed(path, parseErr)
	}

	r.logger.Warn("Repaired malformed archive file",
		zap.String("file", path),
		zap.Int("records", len(raws)),
		zap.NamedError("parse_error", parseErr),
	)
	return raws, nil
}

// ReadProfile loads profile.json from folder. A missing profile returns nil, nil.
func (r *Reader) ReadProfile(folder string) (*Profile, error) {
	path := filepath.Join(folder, constants.ProfileFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperrors.NewProfileMalformed(path, err)
	}

	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		if err == nil {
			err = errors.New("profile is null")
		}
		return nil, apperrors.NewProfileMalformed(path, err)
	}

	userID, ok := decodeInt(raw["user_id"])
	if !ok {
		return nil, apperrors.NewProfileMalformed(path, errors.New("profile has no integer user_id"))
	}

	profile := &Profile{UserID: userID}
	if s := decodeString(raw["first_name"]); s != nil {
		profile.FirstName = *s
	}
	if s := decodeString(raw["last_name"]); s != nil {
		profile.LastName = *s
	}
	if s := decodeString(raw["username"]); s != nil {
		profile.Username = *s
	}
	return profile, nil
}
