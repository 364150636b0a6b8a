package service

import (
	"context"

	"medchain/internal/domain/entity"
)

// ImageStore keeps uploaded images so a multipart metadata write can be replayed.
type ImageStore interface {
	Put(ctx context.Context, key string, image *entity.UploadedImage) error
	Get(ctx context.Context, key string) (*entity.UploadedImage, error)
	Delete(ctx context.Context, key string) error
}
