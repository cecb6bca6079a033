package files

import (
	"path"
	"strings"
	"time"

	"dropwatch/internal/remote"
)

// RegularFiles keeps only regular-file entries
func RegularFiles(entries []remote.Entry) []remote.Entry {
	var files []remote.Entry
	for _, e := range entries {
		if e.IsFile {
			files = append(files, e)
		}
	}
	return files
}

// Directories keeps only directory entries, skipping "." and ".."
func Directories(entries []remote.Entry) []remote.Entry {
	var dirs []remote.Entry
	for _, e := range entries {
		if e.IsDir && e.Name != "." && e.Name != ".." {
			dirs = append(dirs, e)
		}
	}
	return dirs
}

// MatchPrefix keeps entries whose name starts with prefix, ignoring case
func MatchPrefix(entries []remote.Entry, prefix string) []remote.Entry {
	if prefix == "" {
		return entries
	}
	lowered := strings.ToLower(prefix)

	var matched []remote.Entry
	for _, e := range entries {
		if strings.HasPrefix(strings.ToLower(e.Name), lowered) {
			matched = append(matched, e)
		}
	}
	return matched
}

// GetLatestFile returns the most recently modified entry.
// Equal timestamps resolve to the lexicographically greatest name, so the
// result does not depend on listing order.
func GetLatestFile(files []remote.Entry) (remote.Entry, bool) {
	if len(files) == 0 {
		return remote.Entry{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if newer(file, latest) {
			latest = file
		}
	}

	return latest, true
}

func newer(a, b remote.Entry) bool {
	if a.ModifiedAt.Equal(b.ModifiedAt) {
		return a.Name > b.Name
	}
	return a.ModifiedAt.After(b.ModifiedAt)
}

// FilterFiles keeps entries accepted by keep
func FilterFiles(files []remote.Entry, keep func(time.Time) bool) []remote.Entry {
	var filtered []remote.Entry
	for _, file := range files {
		if keep(file.ModifiedAt) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

// JoinRemote joins remote path elements with forward slashes
func JoinRemote(base, name string) string {
	return path.Join(base, name)
}
