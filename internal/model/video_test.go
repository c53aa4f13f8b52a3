package model

import "testing"

func TestIsVideoKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"videos/clip.mp4", true},
		{"videos/clip.MP4", true},
		{"videos/clip.mov", true},
		{"videos/clip.avi", true},
		{"videos/clip.mkv", true},
		{"videos/clip.webm", true},
		{"videos/clip.wmv", false},
		{"videos/notes.txt", false},
		{"videos/clip", false},
		{"videos/._clip.mp4", false},
		{"._clip.mp4", false},
		{"videos/sub/._clip.mp4", false},
		{"videos/sub/clip.mp4", true},
	}
	for _, tt := range tests {
		if got := IsVideoKey(tt.key); got != tt.want {
			t.Errorf("IsVideoKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"videos/Birthday.mp4", "Birthday"},
		{"videos/Summer Trip.mov", "Summer Trip"},
		{"videos/sub/clip.mp4", "sub/clip"},
		{"videos/archive.tar.mp4", "archive.tar"},
		{"videos/noext", "noext"},
		{"other/clip.mp4", "other/clip"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.key); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
