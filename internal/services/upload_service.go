package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadURLPrefix is the public path under which stored files are served.
const UploadURLPrefix = "/uploads/"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadedFile describes a stored upload.
type UploadedFile struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

// UploadService stores product images on the local filesystem.
type UploadService struct {
	dir      string
	maxBytes int64
	log      *zap.Logger
	now      func() time.Time
}

// NewUploadService creates the upload directory if needed.
func NewUploadService(dir string, maxBytes int64, log *zap.Logger) (*UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadService{dir: dir, maxBytes: maxBytes, log: log, now: time.Now}, nil
}

// WithClock replaces the clock used to stamp stored file names.
func (s *UploadService) WithClock(now func() time.Time) *UploadService {
	s.now = now
	return s
}

// Dir returns the directory uploads are written to.
func (s *UploadService) Dir() string {
	return s.dir
}

// Save validates and stores an uploaded image. Content type is sniffed from
// the file bytes rather than trusted from the client.
func (s *UploadService) Save(fh *multipart.FileHeader) (*UploadedFile, error) {
	if fh == nil {
		return nil, fmt.Errorf("%w: no file uploaded", ErrValidation)
	}
	if fh.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrTooLarge, s.maxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: only image files are allowed", ErrValidation)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}

	name := fmt.Sprintf("products-%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], sanitizeFileName(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.maxBytes {
		err = fmt.Errorf("%w: file exceeds %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return nil, err
	}

	s.log.Info("File uploaded", zap.String("file", name), zap.Int64("size", written), zap.String("mime", mtype.String()))
	return &UploadedFile{
		FileName:     name,
		OriginalName: fh.Filename,
		URL:          UploadURLPrefix + name,
		Size:         written,
		MimeType:     mtype.String(),
	}, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, ".-")
	if name == "" {
		return "image"
	}
	return name
}

// Delete removes a stored file by name. Only the base name is used, so a
// name cannot escape the upload directory. A missing file is not an error.
func (s *UploadService) Delete(fileName string) error {
	base := filepath.Base(fileName)
	if base != fileName || base == "." || base == ".." || base == "/" {
		return fmt.Errorf("%w: invalid file name", ErrValidation)
	}
	err := os.Remove(filepath.Join(s.dir, base))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// RemoveByURL deletes a file referenced by its public URL. URLs outside the
// upload prefix are ignored.
func (s *UploadService) RemoveByURL(url string) error {
	if !strings.HasPrefix(url, UploadURLPrefix) {
		return nil
	}
	return s.Delete(strings.TrimPrefix(url, UploadURLPrefix))
}
