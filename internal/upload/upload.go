// Package upload validates recipe images and names them before they reach
// storage.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/recetapp/recetapp/internal/storage"
)

// FieldName is the multipart field carrying the image.
const FieldName = "imagen"

// PublicPrefix is prepended to stored names to form the recipe's imagen value.
const PublicPrefix = "/uploads/"

// sniffLen matches the number of bytes mimetype inspects by default.
const sniffLen = 3072

// Upload errors.
var (
	ErrTooManyFiles    = errors.New("only one image may be uploaded")
	ErrFileTooLarge    = errors.New("image exceeds maximum upload size")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrEmptyFile       = errors.New("image is empty")
)

// allowedTypes maps accepted MIME types to the extension stored on disk.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Image is an uploaded file before it is stored.
type Image struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FromFileHeader adapts a multipart file header.
func FromFileHeader(fh *multipart.FileHeader) *Image {
	return &Image{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ParseImage picks the image out of a parsed multipart form.
// It returns nil when no image was sent.
func ParseImage(form *multipart.Form) (*Image, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[FieldName]
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
		return FromFileHeader(files[0]), nil
	default:
		return nil, ErrTooManyFiles
	}
}

// Uploader stores validated images.
type Uploader struct {
	store   storage.Storage
	maxSize int64
	now     func() time.Time
	newID   func() string
}

// NewUploader creates an Uploader writing to store.
func NewUploader(store storage.Storage, maxSize int64) *Uploader {
	return &Uploader{
		store:   store,
		maxSize: maxSize,
		now:     time.Now,
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

// Put validates img, stores it under a fresh name and returns the public
// path ("/uploads/<name>").
func (u *Uploader) Put(ctx context.Context, img *Image) (string, error) {
	if img.Size > u.maxSize {
		return "", ErrFileTooLarge
	}

	f, err := img.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", ErrEmptyFile
	}

	ext, err := Extension(head)
	if err != nil {
		return "", err
	}

	name := u.fileName(ext)
	body := &limitedReader{r: io.MultiReader(bytes.NewReader(head), f), remaining: u.maxSize}
	if err := u.store.Save(ctx, name, body); err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return "", ErrFileTooLarge
		}
		return "", fmt.Errorf("store upload: %w", err)
	}

	return PublicPrefix + name, nil
}

// Discard removes a previously stored image by its public path.
// Paths that were not produced by Put are ignored.
func (u *Uploader) Discard(ctx context.Context, publicPath string) error {
	name, ok := NameFromPath(publicPath)
	if !ok {
		return nil
	}
	return u.store.Remove(ctx, name)
}

// Open returns the stored bytes and their detected content type.
func (u *Uploader) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	rc, err := u.store.Open(ctx, name)
	if err != nil {
		return nil, "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		rc.Close()
		return nil, "", fmt.Errorf("read stored image: %w", err)
	}
	head = head[:n]

	contentType := mimetype.Detect(head).String()
	return readCloser{Reader: io.MultiReader(bytes.NewReader(head), rc), Closer: rc}, contentType, nil
}

// Extension returns the stored extension for sniffed content.
func Extension(head []byte) (string, error) {
	mt := mimetype.Detect(head)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedTypes[m.String()]; ok {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

// NameFromPath strips PublicPrefix from an imagen value.
func NameFromPath(publicPath string) (string, bool) {
	name, ok := strings.CutPrefix(publicPath, PublicPrefix)
	if !ok || name == "" {
		return "", false
	}
	if _, err := storage.CleanName(name); err != nil {
		return "", false
	}
	return name, true
}

func (u *Uploader) fileName(ext string) string {
	return fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), u.newID(), ext)
}

// limitedReader fails with ErrFileTooLarge once more than remaining bytes
// have been read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}

type readCloser struct {
	io.Reader
	io.Closer
}
