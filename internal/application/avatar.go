package application

import (
	"context"
	"io"
	"strings"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

const opUploadAvatar = "upload_avatar"

// UploadAvatar stores an image for the requester and records its URL.
func (s *Service) UploadAvatar(ctx context.Context, requesterEmail, filename, contentType string, r io.Reader) (profile UserProfile, err error) {
	defer func() { s.record(opUploadAvatar, err) }()

	if s.Avatars == nil {
		return UserProfile{}, apperr.New(apperr.KindInternal, "avatar storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return UserProfile{}, apperr.Validation("avatar must be an image")
	}
	user, err := s.loadByEmail(ctx, requesterEmail)
	if err != nil {
		return UserProfile{}, err
	}
	url, err := s.Avatars.Upload(ctx, user.ID, filename, contentType, r)
	if err != nil {
		return UserProfile{}, apperr.Wrap(apperr.KindInternal, "upload avatar", err)
	}
	user.SetAvatar(url)
	saved, err := s.Users.Save(ctx, user)
	if err != nil {
		return UserProfile{}, err
	}
	s.index(ctx, saved)
	return ToProfile(saved), nil
}
