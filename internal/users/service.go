package users

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/auth"
)

// Service wraps the user-facing endpoints behind the gateway client.
type Service struct {
	client *api.Client
}

// NewService creates a user service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Login authenticates with a username or email and stores the returned
// token pair.
func (s *Service) Login(ctx context.Context, identifier, password string) (Session, error) {
	env, err := s.client.Post(ctx, "/users/login", map[string]string{
		"username": identifier,
		"email":    identifier,
		"password": password,
	})
	if err != nil {
		return Session{}, err
	}

	var session Session
	if err := env.Decode(&session); err != nil {
		return Session{}, err
	}
	if session.AccessToken == "" {
		return Session{}, fmt.Errorf("login reply carried no access token")
	}

	if err := s.client.Credentials().Save(auth.Credentials{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}); err != nil {
		return Session{}, err
	}
	return session, nil
}

// RegisterInput is the multipart signup form. Avatar is required by the
// backend; the cover image is optional.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	fields := map[string]string{
		"username": input.Username,
		"email":    input.Email,
		"fullName": input.FullName,
		"password": input.Password,
	}
	files := []api.FileUpload{{Field: "avatar", Path: input.AvatarPath}}
	if input.CoverPath != "" {
		files = append(files, api.FileUpload{Field: "coverImage", Path: input.CoverPath})
	}

	env, err := s.client.RequestMultipart(ctx, http.MethodPost, "/users/register", fields, files)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := env.Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout discards the stored credential pair. The backend keeps its own
// session bookkeeping; the client only forgets its tokens.
func (s *Service) Logout() error {
	return s.client.Credentials().Clear()
}

// CurrentUser fetches the authenticated viewer's account.
func (s *Service) CurrentUser(ctx context.Context) (User, error) {
	env, err := s.client.Get(ctx, "/users/current-user")
	if err != nil {
		return User{}, err
	}
	var user User
	if err := env.Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Channel fetches a channel profile by username.
func (s *Service) Channel(ctx context.Context, username string) (Channel, error) {
	env, err := s.client.Get(ctx, "/users/channel/"+url.PathEscape(username))
	if err != nil {
		return Channel{}, err
	}
	var channel Channel
	if err := env.Decode(&channel); err != nil {
		return Channel{}, err
	}
	return channel, nil
}

// UpdateAccount changes the viewer's full name and email.
func (s *Service) UpdateAccount(ctx context.Context, fullName, email string) (User, error) {
	env, err := s.client.Patch(ctx, "/users/update-account", map[string]string{
		"fullName": fullName,
		"email":    email,
	})
	if err != nil {
		return User{}, err
	}
	var user User
	if err := env.Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ChangePassword swaps the viewer's password.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := s.client.Post(ctx, "/users/change-password", map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	})
	return err
}

// UpdateAvatar replaces the viewer's avatar image.
func (s *Service) UpdateAvatar(ctx context.Context, path string) (User, error) {
	return s.updateImage(ctx, "/users/avatar", "avatar", path)
}

// UpdateCoverImage replaces the viewer's channel cover image.
func (s *Service) UpdateCoverImage(ctx context.Context, path string) (User, error) {
	return s.updateImage(ctx, "/users/cover-image", "coverImage", path)
}

func (s *Service) updateImage(ctx context.Context, endpoint, field, path string) (User, error) {
	env, err := s.client.RequestMultipart(ctx, http.MethodPatch, endpoint, nil, []api.FileUpload{
		{Field: field, Path: path},
	})
	if err != nil {
		return User{}, err
	}
	var user User
	if err := env.Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Health probes /healthcheck and reports whether the backend answered.
func (s *Service) Health(ctx context.Context) error {
	if _, err := s.client.Get(ctx, "/healthcheck"); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return nil
}
