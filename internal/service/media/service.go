// Package media hands out upload slots in the photo bucket and removes
// objects a user no longer needs. Objects are keyed under the uploader's
// prefix, which is also the ownership check.
package media

import (
	"context"

	"github.com/oggyb/devmatch/internal/app"
	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/storage"
	"github.com/oggyb/devmatch/internal/utils/validate"
)

type Service struct {
	appCtx *app.AppContext
}

func NewMediaService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

func (s *Service) blobs() (storage.BlobStore, error) {
	if s.appCtx.Blobs == nil {
		return nil, svcErr.Internal("Image storage is not configured", nil)
	}
	return s.appCtx.Blobs, nil
}

// CreateUploadURL reserves a fresh key under the caller's prefix and
// presigns a PUT for it. The returned url/publicId pair is what the client
// later stores on its profile.
func (s *Service) CreateUploadURL(ctx context.Context, userID string) (*UploadURLResult, error) {
	s.appCtx.Logger.Debug("CreateUploadURL called", "user", userID)

	blobs, err := s.blobs()
	if err != nil {
		return nil, err
	}

	key := storage.NewUserKey(userID)
	up, err := blobs.PresignUpload(ctx, key)
	if err != nil {
		s.appCtx.Logger.Error("PresignUpload failed", "key", key, "err", err)
		return nil, svcErr.Internal("Failed to create upload URL", err)
	}

	return &UploadURLResult{
		UploadURL: up.URL,
		URL:       blobs.PublicURL(key),
		PublicID:  key,
		ExpiresAt: up.ExpiresAt,
	}, nil
}

// DeleteImage removes an object the caller uploaded. Keys outside the
// caller's prefix are FORBIDDEN. Deleting a missing key succeeds.
func (s *Service) DeleteImage(ctx context.Context, userID string, req DeleteImageRequest) (*DeleteImageResult, error) {
	s.appCtx.Logger.Debug("DeleteImage called", "user", userID, "key", req.PublicID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if !storage.OwnedBy(userID, req.PublicID) {
		return nil, svcErr.Forbidden("Image does not belong to you")
	}

	blobs, err := s.blobs()
	if err != nil {
		return nil, err
	}
	if err := blobs.Delete(ctx, req.PublicID); err != nil {
		s.appCtx.Logger.Error("Delete blob failed", "key", req.PublicID, "err", err)
		return nil, svcErr.Internal("Failed to delete image", err)
	}
	return &DeleteImageResult{Message: "Image deleted"}, nil
}
