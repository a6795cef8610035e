package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/n8ngeorgia/orderdesk/internal/models"
)

// FileStore хранит загруженные файлы заявок на диске.
// Имя хранения - случайный UUID с исходным расширением, поэтому
// файлы разных заявок не конфликтуют между собой.
type FileStore struct {
	dir string
}

// NewFileStore создаёт FileStore и директорию хранения, если её нет.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save записывает содержимое reader на диск и возвращает метаданные
// вложения. Запись идёт во временный файл с атомарным rename, при
// ошибке временный файл удаляется.
func (fs *FileStore) Save(reader io.Reader, originalName string) (*models.AttachedFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	storedName := uuid.New().String() + ext
	fullPath := filepath.Join(fs.dir, storedName)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return &models.AttachedFile{
		OriginalName: originalName,
		Filename:     storedName,
		Path:         fullPath,
		Size:         size,
	}, nil
}

// Remove удаляет сохранённый файл по имени хранения.
func (fs *FileStore) Remove(filename string) error {
	if err := os.Remove(filepath.Join(fs.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file %s: %w", filename, err)
	}
	return nil
}
