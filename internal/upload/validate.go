package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"media-market/internal/models"
)

var ErrInvalidFile = errors.New("invalid file")

type fileRule struct {
	bucket  string
	maxSize int64
	// ext -> content type stored with the blob
	exts map[string]string
	// sniffed types accepted besides application/octet-stream
	sniffed map[string]bool
}

const mb = 1 << 20

var (
	videoRule = fileRule{
		bucket:  "videos",
		maxSize: 500 * mb,
		exts:    map[string]string{".mp4": "video/mp4", ".webm": "video/webm", ".mov": "video/quicktime"},
		sniffed: map[string]bool{"video/mp4": true, "video/webm": true},
	}
	trackRule = fileRule{
		bucket:  "tracks",
		maxSize: 50 * mb,
		exts: map[string]string{
			".mp3": "audio/mpeg", ".wav": "audio/wav", ".ogg": "audio/ogg",
			".flac": "audio/flac", ".m4a": "audio/mp4",
		},
		sniffed: map[string]bool{
			"audio/mpeg": true, "audio/wave": true, "application/ogg": true,
			"audio/ogg": true, "video/mp4": true, "audio/mp4": true,
		},
	}
	coverRule = fileRule{
		bucket:  "covers",
		maxSize: 5 * mb,
		exts:    map[string]string{".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png", ".webp": "image/webp"},
		sniffed: map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true},
	}
)

func ruleFor(kind models.ContentKind) (fileRule, bool) {
	switch kind {
	case models.KindVideo:
		return videoRule, true
	case models.KindTrack:
		return trackRule, true
	}
	return fileRule{}, false
}

// MediaBucket is the bucket media of kind is stored in.
func MediaBucket(kind models.ContentKind) string {
	r, _ := ruleFor(kind)
	return r.bucket
}

// CoverBucket holds cover images of both kinds.
func CoverBucket() string { return coverRule.bucket }

// MaxRequestSize bounds a whole multipart upload request.
func MaxRequestSize() int64 { return videoRule.maxSize + coverRule.maxSize + mb }

// check validates f against r by extension, size and sniffed content and
// returns the extension and content type to store it with. The body is
// rewound after sniffing.
func (r fileRule) check(f *File) (ext, contentType string, err error) {
	ext = strings.ToLower(filepath.Ext(f.Name))
	contentType, ok := r.exts[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %s files are not supported for %s", ErrInvalidFile, ext, r.bucket)
	}
	if f.Size <= 0 {
		return "", "", fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if f.Size > r.maxSize {
		return "", "", fmt.Errorf("%w: file exceeds %d MB", ErrInvalidFile, r.maxSize/mb)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("read file: %w", err)
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind file: %w", err)
	}

	detected := http.DetectContentType(head[:n])
	if strings.HasPrefix(detected, "text/") || strings.Contains(detected, "xml") || strings.Contains(detected, "html") {
		return "", "", fmt.Errorf("%w: content looks like %s", ErrInvalidFile, detected)
	}
	// Several audio and container formats are not recognised by the
	// sniffer; the extension decides for those.
	if detected != "application/octet-stream" && !r.sniffed[detected] {
		return "", "", fmt.Errorf("%w: content type %s does not match %s", ErrInvalidFile, detected, ext)
	}
	return ext, contentType, nil
}
