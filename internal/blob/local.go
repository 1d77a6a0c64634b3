package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore кладёт фото на диск под ./uploads/selfies; файлы раздаются
// сервером по /uploads/*. Бэкенд для запуска без Google Drive.
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	for _, cat := range []Category{CategoryEntry, CategoryExit} {
		dir := filepath.Join(baseDir, string(cat))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("не удалось создать папку %s: %w", dir, err)
		}
	}
	return &LocalStore{baseDir: baseDir, baseURL: baseURL}, nil
}

func (s *LocalStore) Upload(_ context.Context, category Category, filename string, content []byte) (string, error) {
	path := filepath.Join(s.baseDir, string(category), filename)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("не удалось сохранить фото: %w", err)
	}
	return s.baseURL + "/" + string(category) + "/" + filename, nil
}
