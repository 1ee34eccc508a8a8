package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/userhub/apiserver/internal/images"
	"github.com/userhub/apiserver/internal/storage"
	"github.com/userhub/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ImageFetcher downloads a remote image, returning its bytes and
// normalized content type.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// CreateUserParams carries the fields of a create request. All fields are
// required except ProfileImageURL.
type CreateUserParams struct {
	Username        string
	FirstName       string
	LastName        string
	Password        string
	ProfileImageURL string
}

// UpdateUserParams carries a partial update. Only non-nil fields touch
// the stored record.
type UpdateUserParams struct {
	Username        *string
	FirstName       *string
	LastName        *string
	Password        *string
	ProfileImageURL *string
}

// UserService encapsulates user use-cases, including the profile image
// ingestion pipeline: fetch, normalize, store, and cleanup of replaced
// images.
type UserService struct {
	repo    UserRepository
	fetcher ImageFetcher
	images  storage.ImageStorage
}

func NewUserService(repo UserRepository, fetcher ImageFetcher, images storage.ImageStorage) *UserService {
	return &UserService{
		repo:    repo,
		fetcher: fetcher,
		images:  images,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// Create builds and persists a new user. The identifier is generated
// before the image pipeline runs so the stored image file and the row
// share an identity even though the image is written first. If the insert
// fails afterwards, the freshly written image is removed best-effort.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (types.User, error) {
	hash, err := hashPassword(params.Password)
	if err != nil {
		return types.User{}, err
	}

	user := types.User{
		ID:           uuid.New(),
		Username:     params.Username,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: hash,
	}

	if params.ProfileImageURL != "" {
		rel, err := s.ingestImage(ctx, user.ID, params.ProfileImageURL)
		if err != nil {
			return types.User{}, err
		}
		user.ProfileImage = rel
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if user.ProfileImage != "" {
			_ = s.images.Remove(user.ProfileImage)
		}
		return types.User{}, err
	}
	return created, nil
}

// Update applies a partial update to an active user. When a new image URL
// is supplied, the previous stored image is removed before the
// replacement is fetched; if the fetch then fails the user is left
// without a stored file and the record is not modified. Concurrent
// updates to the same user are not coordinated.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Password != nil {
		hash, err := hashPassword(*params.Password)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = hash
	}
	var newImage string
	if params.ProfileImageURL != nil {
		if user.ProfileImage != "" {
			if err := s.images.Remove(user.ProfileImage); err != nil {
				return types.User{}, err
			}
		}
		rel, err := s.ingestImage(ctx, user.ID, *params.ProfileImageURL)
		if err != nil {
			return types.User{}, err
		}
		user.ProfileImage = rel
		newImage = rel
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if newImage != "" {
			_ = s.images.Remove(newImage)
		}
		return types.User{}, err
	}
	return updated, nil
}

// Delete soft-deletes a user and removes its stored profile image. The
// database row is retained with a deletion timestamp.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	if user.ProfileImage != "" {
		return s.images.Remove(user.ProfileImage)
	}
	return nil
}

// ingestImage runs the image pipeline for one user: fetch the remote
// bytes, re-encode them into the canonical format, and write the result
// under a date-partitioned path keyed by the user id. Returns the
// relative storage path.
func (s *UserService) ingestImage(ctx context.Context, userID uuid.UUID, url string) (string, error) {
	data, mimeType, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	encoded, ext, err := images.Normalize(data, mimeType)
	if err != nil {
		return "", err
	}

	rel := s.images.Resolve(userID.String(), ext, time.Now().UTC())
	if err := s.images.Write(rel, encoded); err != nil {
		return "", err
	}
	return rel, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
