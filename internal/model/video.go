// internal/model/video.go
// Package model defines the data structures used throughout the gallery service.
// These structures represent the catalog records exchanged with the browser
// client and the metadata document persisted in the object store.
package model

import (
	"strings"
	"time"
)

// VideoRecord represents one playable asset in the catalog.
// JSON field names follow what the gallery frontend already consumes.
type VideoRecord struct {
	Key          string    `json:"key"`                    // Full object key in the store (unique)
	Name         string    `json:"name"`                   // Base name derived from the key
	DisplayName  string    `json:"displayName,omitempty"`  // Optional human-chosen override
	Size         int64     `json:"size"`                   // Object size in bytes
	LastModified time.Time `json:"lastModified"`           // Copied from the store listing
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"` // Signed URL, present only if the sibling exists
	PreviewURL   string    `json:"previewUrl,omitempty"`   // Signed URL, present only if the sibling exists
}

// MetadataEntry holds the per-video overrides stored in the metadata document.
// DateRange is reserved for the frontend and must round-trip unchanged.
type MetadataEntry struct {
	DisplayName string `json:"displayName,omitempty"`
	DateRange   string `json:"dateRange,omitempty"`
}

// MetadataDocument is the single JSON object persisted in the bucket,
// keyed by full video object key.
type MetadataDocument map[string]MetadataEntry

// AuthRequest is the login request body.
type AuthRequest struct {
	Password string `json:"password"`
}

// AuthResponse is the login/logout response body.
type AuthResponse struct {
	Success bool `json:"success"`
}

// VideosResponse wraps the catalog returned to the client.
type VideosResponse struct {
	Videos []VideoRecord `json:"videos"`
}

// PlaybackResponse carries one signed playback URL.
type PlaybackResponse struct {
	URL string `json:"url"`
}

// RenameRequest is the rename request body.
type RenameRequest struct {
	VideoKey    string `json:"videoKey"`
	DisplayName string `json:"displayName"`
}

// VideoPrefix is the fixed listing prefix for raw video objects.
const VideoPrefix = "videos/"

// videoExtensions is the fixed set of recognized video file extensions.
var videoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}

// IsVideoKey reports whether a key names a playable video object:
// a recognized extension (case-insensitive) and not a filesystem-sync
// resource-fork artifact ("._" entries).
func IsVideoKey(key string) bool {
	lower := strings.ToLower(key)
	isVideo := false
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			isVideo = true
			break
		}
	}
	if !isVideo {
		return false
	}
	if strings.Contains(key, "/._") || strings.HasPrefix(key, "._") {
		return false
	}
	return true
}

// BaseName derives the canonical name from a video key by stripping the
// videos/ prefix and the trailing extension (last dot segment only).
// It doubles as the default display label and the lookup root for
// sibling thumbnail/preview objects.
func BaseName(key string) string {
	name := strings.TrimPrefix(key, VideoPrefix)
	if i := strings.LastIndex(name, "."); i > strings.LastIndex(name, "/") {
		name = name[:i]
	}
	return name
}
