package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildMediaPath(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)

	tests := []struct {
		name     string
		segment  string
		fileName string
		want     string
	}{
		{"plain", "root", "a.png", "media/root/1700000000123_a.png"},
		{"spaces collapse", "F1", "my  holiday   photo.jpg", "media/F1/1700000000123_my_holiday_photo.jpg"},
		{"tabs and newlines", "root", "a\t\tb\nc.mp4", "media/root/1700000000123_a_b_c.mp4"},
		{"non breaking space", "root", "a\u00a0b.png", "media/root/1700000000123_a_b.png"},
		{"vertical tab", "root", "a\vb.png", "media/root/1700000000123_a_b.png"},
		{"byte order mark", "root", "a\ufeffb.png", "media/root/1700000000123_a_b.png"},
		{"line separator", "root", "a\u2028\u3000b.png", "media/root/1700000000123_a_b.png"},
		{"leading whitespace", "root", "  x.png", "media/root/1700000000123__x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildMediaPath(tt.segment, tt.fileName, now))
		})
	}
}

func TestFolderSegment(t *testing.T) {
	assert.Equal(t, RootFolderSegment, FolderSegment(nil))
	assert.Equal(t, RootFolderSegment, FolderSegment(strPtr("")))
	assert.Equal(t, "F1", FolderSegment(strPtr("F1")))
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "1_a.png", lastPathSegment("media/root/1_a.png"))
	assert.Equal(t, "a.png", lastPathSegment("a.png"))
}

func TestNormalizeID(t *testing.T) {
	assert.Nil(t, normalizeID(nil))
	assert.Nil(t, normalizeID(strPtr("  ")))
	assert.Equal(t, "F1", *normalizeID(strPtr(" F1 ")))
}
