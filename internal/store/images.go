package store

import (
	"context"

	"github.com/mmcdole/showtrack/internal/domain"
)

// ImageStore is the source of truth for cached show images.
type ImageStore struct {
	keyed keyedStore[domain.ShowImages]
}

func NewImageStore(db Backend) *ImageStore {
	return &ImageStore{keyed: keyedStore[domain.ShowImages]{db: db, bucket: bucketImages}}
}

// Read returns the stored images for a show; ok is false if never written.
func (s *ImageStore) Read(ctx context.Context, showID int64) (domain.ShowImages, bool, error) {
	return s.keyed.read(ctx, showID)
}

// Write replaces the stored images for a show. Ownership is re-stamped so
// every stored image belongs to showID.
func (s *ImageStore) Write(ctx context.Context, showID int64, images domain.ShowImages) error {
	stamped := domain.ShowImages{ShowID: showID, Images: make([]domain.ShowImage, len(images.Images))}
	for i, img := range images.Images {
		img.ShowID = showID
		stamped.Images[i] = img
	}
	return s.keyed.write(ctx, showID, stamped)
}

func (s *ImageStore) Delete(ctx context.Context, showID int64) error {
	return s.keyed.delete(ctx, showID)
}

func (s *ImageStore) DeleteAll(ctx context.Context) error {
	return s.keyed.deleteAll(ctx)
}
