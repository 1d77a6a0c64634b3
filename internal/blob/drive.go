package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	fallbackRoot   = "DishFlow-Auto"
)

// DriveStore складывает фото входа/выхода в Google Drive и отдаёт
// публичную ссылку на просмотр.
type DriveStore struct {
	srv     *drive.Service
	folders map[Category]string
}

// NewDriveStore проверяет доступность корневой папки; если её нет или
// доступа нет — создаёт собственный корень и пишет в него.
func NewDriveStore(ctx context.Context, credentialsFile, rootFolderID string) (*DriveStore, error) {
	srv, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Google Drive: %w", err)
	}
	s := &DriveStore{srv: srv, folders: make(map[Category]string)}

	ok, err := s.fileExists(ctx, rootFolderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		rootFolderID, err = s.createFallbackRoot(ctx)
		if err != nil {
			return nil, err
		}
	}

	for _, cat := range []Category{CategoryEntry, CategoryExit} {
		id, err := s.ensureSubfolder(ctx, rootFolderID, string(cat))
		if err != nil {
			return nil, err
		}
		s.folders[cat] = id
	}
	return s, nil
}

// fileExists — проверка по id, не валимся на 403/404.
func (s *DriveStore) fileExists(ctx context.Context, fileID string) (bool, error) {
	_, err := s.srv.Files.Get(fileID).Fields("id").Context(ctx).Do()
	if err == nil {
		return true, nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 403 || gerr.Code == 404) {
		return false, nil
	}
	return false, fmt.Errorf("ошибка проверки папки %s: %w", fileID, err)
}

func (s *DriveStore) createFallbackRoot(ctx context.Context) (string, error) {
	created, err := s.srv.Files.Create(&drive.File{
		Name:     fallbackRoot,
		MimeType: folderMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("не удалось создать корневую папку: %w", err)
	}
	// просмотр по ссылке, чтобы владелец мог открыть папку
	_, err = s.srv.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("не удалось выдать доступ к папке: %w", err)
	}
	log.Printf("⚠️ [Drive] Корень недоступен. Создан новый: %s", created.Id)
	return created.Id, nil
}

func (s *DriveStore) ensureSubfolder(ctx context.Context, parentID, name string) (string, error) {
	q := fmt.Sprintf("'%s' in parents and name = '%s' and mimeType='%s' and trashed=false",
		parentID, name, folderMimeType)
	res, err := s.srv.Files.List().Q(q).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("ошибка поиска папки %s: %w", name, err)
	}
	if len(res.Files) > 0 {
		return res.Files[0].Id, nil
	}
	created, err := s.srv.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("не удалось создать папку %s: %w", name, err)
	}
	return created.Id, nil
}

func (s *DriveStore) Upload(ctx context.Context, category Category, filename string, content []byte) (string, error) {
	parentID, ok := s.folders[category]
	if !ok {
		return "", fmt.Errorf("неизвестная категория фото: %s", category)
	}
	created, err := s.srv.Files.Create(&drive.File{
		Name:    filename,
		Parents: []string{parentID},
	}).Media(bytes.NewReader(content), googleapi.ContentType("image/jpeg")).
		Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("не удалось загрузить фото: %w", err)
	}
	_, err = s.srv.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("не удалось выдать доступ к фото: %w", err)
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id), nil
}
