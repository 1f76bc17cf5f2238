package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RootFolderSegment is the path segment used for media outside any folder.
const RootFolderSegment = "root"

// RE2's \s is ASCII only, so Unicode separators, \v and U+FEFF are listed too
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// SanitizeFileName replaces every run of whitespace with a single underscore.
func SanitizeFileName(name string) string {
	return whitespaceRun.ReplaceAllString(name, "_")
}

// FolderSegment returns the folder id, or RootFolderSegment for nil or empty ids.
func FolderSegment(folderID *string) string {
	if folderID == nil || *folderID == "" {
		return RootFolderSegment
	}
	return *folderID
}

// BuildMediaPath returns media/{folderSegment}/{unix millis}_{sanitized name}.
func BuildMediaPath(folderSegment, fileName string, now time.Time) string {
	return fmt.Sprintf("media/%s/%d_%s", folderSegment, now.UnixMilli(), SanitizeFileName(fileName))
}

func lastPathSegment(storagePath string) string {
	if i := strings.LastIndex(storagePath, "/"); i >= 0 {
		return storagePath[i+1:]
	}
	return storagePath
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
