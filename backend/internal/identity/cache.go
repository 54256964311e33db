package identity

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"tgosint/backend/internal/constants"
	apperrors "tgosint/backend/pkg/errors"
	"tgosint/backend/pkg/jsonfile"
)

// Cache maps numeric user ids to "@"-prefixed handles. It only ever grows.
type Cache map[int64]string

// CachePath returns the identity cache location inside a subject folder
func CachePath(folder string) string {
	return filepath.Join(folder, constants.IdentityCacheFileName)
}

// LoadCache reads the identity cache of a subject folder.
// A missing file yields an empty cache and no error. An unreadable or malformed file
// yields an empty cache together with the error, which callers may log and ignore.
func LoadCache(folder string) (Cache, error) {
	path := CachePath(folder)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Cache{}, nil
		}
		return Cache{}, apperrors.NewIdentityCacheUnreadable(path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Cache{}, apperrors.NewIdentityCacheUnreadable(path, err)
	}

	// Bad entries are dropped one by one so the rest of the cache survives
	cache := make(Cache, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		var handle string
		if err := json.Unmarshal(value, &handle); err != nil || handle == "" {
			continue
		}
		cache[id] = handle
	}
	return cache, nil
}

// SaveCache overwrites the identity cache file with the full map
func SaveCache(folder string, cache Cache) error {
	path := CachePath(folder)
	raw := make(map[string]string, len(cache))
	for id, handle := range cache {
		raw[strconv.FormatInt(id, 10)] = handle
	}
	if err := jsonfile.WriteAtomic(path, raw); err != nil {
		return apperrors.NewIdentityCacheWriteFailed(path, err)
	}
	return nil
}

// Lookup returns the cached handle for id
func (c Cache) Lookup(id int64) (string, bool) {
	handle, ok := c[id]
	if !ok || handle == "" {
		return "", false
	}
	return handle, true
}

// Merge adds entries from fresh that are not cached yet and returns how many were added.
// Existing non-empty handles are never replaced and empty handles are never stored.
func (c Cache) Merge(fresh map[int64]string) int {
	added := 0
	for id, handle := range fresh {
		if handle == "" {
			continue
		}
		if _, ok := c.Lookup(id); ok {
			continue
		}
		c[id] = handle
		added++
	}
	return added
}
