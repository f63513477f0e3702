package storage

import (
	"context"
)

// FileStorage — хранилище фотографий страниц мастеров.
type FileStorage interface {
	UploadFile(ctx context.Context, data []byte, filename string) (string, error)

	DeleteFile(ctx context.Context, fileURL string) error
}
