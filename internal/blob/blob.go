package blob

import "context"

// Category — папка назначения фото: вход или выход.
type Category string

const (
	CategoryEntry Category = "smeny_vhod"
	CategoryExit  Category = "smeny_vyhod"
)

// Store принимает байты фото и возвращает стабильную ссылку на него.
type Store interface {
	Upload(ctx context.Context, category Category, filename string, content []byte) (string, error)
}
