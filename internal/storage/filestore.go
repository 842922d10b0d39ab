package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DiskFileStore persists uploaded files under a root directory on the local
// filesystem. It keeps no state between calls beyond the root path.
type DiskFileStore struct {
	root string
	log  *logrus.Logger
}

func NewDiskFileStore(root string, logger *logrus.Logger) *DiskFileStore {
	return &DiskFileStore{
		root: root,
		log:  logger,
	}
}

// Save writes content to a uniquely named file under root/subfolder and
// returns its forward-slash path. The random name keeps concurrent saves from
// colliding and strips any directory components smuggled in the original
// filename; only its extension is kept.
func (s *DiskFileStore) Save(content io.Reader, originalFilename, subfolder string) (string, error) {
	ext := filepath.Ext(originalFilename)
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext

	dir := s.root
	if subfolder != "" {
		dir = filepath.Join(s.root, subfolder)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create upload directory %s: %w", dir, err)
	}

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("could not create file %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		return "", fmt.Errorf("could not write file %s: %w", dst, err)
	}

	path := filepath.ToSlash(dst)
	s.log.Infof("Stored uploaded file at %s", path)
	return path, nil
}

// Delete removes the file at path. A missing file is treated as success so
// repeated deletes stay harmless.
func (s *DiskFileStore) Delete(path string) error {
	err := os.Remove(filepath.FromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not delete file %s: %w", path, err)
	}
	s.log.Infof("Deleted file %s", path)
	return nil
}
