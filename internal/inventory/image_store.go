package inventory

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// ImageStore copies product images into one content directory. Saving is
// best-effort at every call site: a failed copy means the product is stored
// without an image, it never fails the enclosing operation.
type ImageStore struct {
	Dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir}
}

// destName prefixes the original base name with a unix timestamp so repeated
// uploads of the same file never collide.
func (s *ImageStore) destName(original string) string {
	return fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(original))
}

// SaveUpload stores a multipart upload and returns the stored path.
func (s *ImageStore) SaveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	return s.save(src, fh.Filename)
}

// CopyFile stores a copy of a local file, used by the desktop front-end.
func (s *ImageStore) CopyFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer src.Close()
	return s.save(src, path)
}

func (s *ImageStore) save(src io.Reader, original string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	dst := filepath.Join(s.Dir, s.destName(original))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write image: %w", err)
	}
	return dst, nil
}
