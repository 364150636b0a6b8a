package blob

import (
	"context"
	"log/slog"

	"medchain/config"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const (
	defaultBucketURL = "mem://"
	filenameKey      = "filename"
)

// ImageStore keeps uploaded images in a gocloud blob bucket.
type ImageStore struct {
	bucket *blob.Bucket
}

// Open opens the bucket at url. Supported schemes are mem, file and gs.
func Open(ctx context.Context, url string) (*ImageStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open image bucket %s", url)
	}

	return &ImageStore{bucket: bucket}, nil
}

func (s *ImageStore) Put(ctx context.Context, key string, image *entity.UploadedImage) error {
	opts := &blob.WriterOptions{
		ContentType: image.ContentType,
		Metadata:    map[string]string{filenameKey: image.Filename},
	}
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}

	return errors.Wrapf(s.bucket.WriteAll(ctx, key, image.Data, opts), "failed to store image %s", key)
}

func (s *ImageStore) Get(ctx context.Context, key string) (*entity.UploadedImage, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		return nil, s.notFound(key, err)
	}

	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, s.notFound(key, err)
	}

	return &entity.UploadedImage{
		Filename:    attrs.Metadata[filenameKey],
		ContentType: attrs.ContentType,
		Data:        data,
	}, nil
}

// Delete removes the image. A missing key is not an error.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "failed to delete image %s", key)
	}

	return nil
}

func (s *ImageStore) Close() error {
	return errors.WithStack(s.bucket.Close())
}

func (s *ImageStore) notFound(key string, err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return domainerrors.ErrNotFound.WithDetails("image " + key)
	}

	return errors.Wrapf(err, "failed to read image %s", key)
}

// Params holds dependencies for the image store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured bucket, falling back to an in-memory one.
func New(params Params) (service.ImageStore, error) {
	url := defaultBucketURL
	if cfg := params.Config.ImageStore; cfg != nil && cfg.BucketURL != "" {
		url = cfg.BucketURL
	}

	store, err := Open(params.Ctx, url)
	if err != nil {
		return nil, err
	}

	params.Logger.Info("Image store opened", slog.String("bucket", url))

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

// Module provides the image store FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
