package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizzed/internal/auth"
	"quizzed/internal/model"
	"quizzed/internal/repository"
	"quizzed/internal/storage"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// SignupInput is the payload of a registration.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string
	User  model.PublicUser
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	Bio             *string
	FavoriteTopics  *[]string
	DifficultyLevel *string
}

// AuthService covers accounts, sessions and avatars.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Authenticate resolves a bearer token to its user. Token failures are
	// auth.ErrInvalidToken or auth.ErrExpiredToken; a deleted user is ErrUserGone.
	Authenticate(ctx context.Context, token string) (*model.User, error)

	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error

	// UploadAvatar stores an image and points profile.avatar at it, removing the previous upload.
	UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string, size int64) (string, error)
	OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, storage.ObjectInfo, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	hasher *auth.PasswordHasher
	store  storage.Storage
	now    func() time.Time
	// avatar picks one of the bundled default avatars, 1..5.
	avatar func() int
}

// NewAuthService constructs an AuthService. store may be nil when object
// storage is not configured; avatar operations then fail with ErrStorageDisabled.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, hasher *auth.PasswordHasher, store storage.Storage) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		store:  store,
		now:    time.Now,
		avatar: func() int { return rand.Intn(5) + 1 },
	}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		return nil, invalid("Please provide username, email, and password")
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalid("Password must be at least 6 characters long")
	}
	if n := len([]rune(username)); n < 3 || n > 30 {
		return nil, invalid("Username must be between 3 and 30 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, invalid("Please enter a valid email")
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		Profile: model.Profile{
			Avatar: fmt.Sprintf("/assets/avatars/default-%d.png", s.avatar()),
		},
		Preferences: model.Preferences{
			FavoriteTopics:  []string{},
			DifficultyLevel: model.LevelBeginner,
		},
		CreatedAt: s.now().UTC(),
	}
	stored, err := s.users.Create(ctx, u)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrEmailTaken
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, ErrUsernameTaken
	case err != nil:
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.session(stored)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("Please provide email and password")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := s.hasher.Compare(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	res, err := s.session(u)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	return res, nil
}

func (s *authService) session(u *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: u.Public()}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*model.User, error) {
	if upd.DifficultyLevel != nil && !model.ValidLevel(*upd.DifficultyLevel) {
		return nil, invalid("difficultyLevel must be one of beginner, intermediate, advanced")
	}

	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, prefs := u.Profile, u.Preferences
	if upd.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		profile.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Bio != nil {
		profile.Bio = *upd.Bio
	}
	if upd.FavoriteTopics != nil {
		prefs.FavoriteTopics = *upd.FavoriteTopics
		if prefs.FavoriteTopics == nil {
			prefs.FavoriteTopics = []string{}
		}
	}
	if upd.DifficultyLevel != nil {
		prefs.DifficultyLevel = *upd.DifficultyLevel
	}

	updated, err := s.users.UpdateProfile(ctx, userID, profile, prefs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return invalid("Please provide current and new password")
	}
	if len(next) < minPasswordLen {
		return invalid("New password must be at least 6 characters long")
	}

	u, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Compare(u.PasswordHash, current)
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// avatarKey reports whether avatar points at an uploaded object rather than a bundled default.
func avatarKey(avatar string) bool {
	return strings.HasPrefix(avatar, "avatars/")
}

func (s *authService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string, size int64) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	if r == nil {
		return "", invalid("Please provide an image file")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", invalid("Only image uploads are allowed")
	}

	u, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}

	key := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+strings.ToLower(filepath.Ext(filename))))
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"user-id": userID},
	}); err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, userID, key); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return "", fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return "", fmt.Errorf("db save failed: %w", err)
	}

	if avatarKey(u.Profile.Avatar) {
		// Previous upload is unreferenced now; removal is best effort.
		_ = s.store.Delete(ctx, u.Profile.Avatar)
	}
	return key, nil
}

func (s *authService) OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, storage.ObjectInfo, error) {
	if s.store == nil {
		return nil, storage.ObjectInfo{}, ErrStorageDisabled
	}
	if !validID(userID) {
		return nil, storage.ObjectInfo{}, ErrUserNotFound
	}
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if !avatarKey(u.Profile.Avatar) {
		return nil, storage.ObjectInfo{}, ErrAvatarNotFound
	}
	rc, info, err := s.store.Get(ctx, u.Profile.Avatar)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, ErrAvatarNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	return rc, info, nil
}

func (s *authService) findUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
