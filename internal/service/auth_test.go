package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quizzed/internal/auth"
	"quizzed/internal/model"
	"quizzed/internal/repository"
	repoMocks "quizzed/internal/repository/mocks"
	"quizzed/internal/storage"
	storeMocks "quizzed/internal/storage/mocks"
)

func newTestAuth(users *repoMocks.MockUserRepository, store storage.Storage) (*authService, *auth.TokenIssuer, *auth.PasswordHasher) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	hasher := auth.NewPasswordHasher(4)
	svc := NewAuthService(users, tokens, hasher, store).(*authService)
	svc.avatar = func() int { return 3 }
	return svc, tokens, hasher
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         SignupInput
		setupMocks func(m *repoMocks.MockUserRepository)
		wantErr    error
		wantMsg    string
	}{
		{
			name: "happy path",
			in:   SignupInput{Username: "  alice ", Email: "Alice@Example.com", Password: "secret1"},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
				m.On("ExistsByUsername", ctx, "alice").Return(false, nil)
				m.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Username == "alice" &&
						u.Email == "alice@example.com" &&
						u.PasswordHash != "" && u.PasswordHash != "secret1" &&
						u.Role == model.RoleStudent &&
						u.Profile.Avatar == "/assets/avatars/default-3.png" &&
						u.Preferences.DifficultyLevel == model.LevelBeginner
				})).Return(&model.User{ID: "u1", Username: "alice", Email: "alice@example.com"}, nil)
			},
		},
		{
			name:       "missing fields",
			in:         SignupInput{Email: "a@b.com", Password: "secret1"},
			setupMocks: func(m *repoMocks.MockUserRepository) {},
			wantMsg:    "Please provide username, email, and password",
		},
		{
			name:       "short password",
			in:         SignupInput{Username: "alice", Email: "a@b.com", Password: "123"},
			setupMocks: func(m *repoMocks.MockUserRepository) {},
			wantMsg:    "Password must be at least 6 characters long",
		},
		{
			name:       "invalid email",
			in:         SignupInput{Username: "alice", Email: "not-an-email", Password: "secret1"},
			setupMocks: func(m *repoMocks.MockUserRepository) {},
			wantMsg:    "Please enter a valid email",
		},
		{
			name:       "username too short",
			in:         SignupInput{Username: "al", Email: "a@b.com", Password: "secret1"},
			setupMocks: func(m *repoMocks.MockUserRepository) {},
			wantMsg:    "Username must be between 3 and 30 characters",
		},
		{
			name: "email taken",
			in:   SignupInput{Username: "alice", Email: "a@b.com", Password: "secret1"},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("ExistsByEmail", ctx, "a@b.com").Return(true, nil)
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "username taken",
			in:   SignupInput{Username: "alice", Email: "a@b.com", Password: "secret1"},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("ExistsByEmail", ctx, "a@b.com").Return(false, nil)
				m.On("ExistsByUsername", ctx, "alice").Return(true, nil)
			},
			wantErr: ErrUsernameTaken,
		},
		{
			name: "unique violation on insert",
			in:   SignupInput{Username: "alice", Email: "a@b.com", Password: "secret1"},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("ExistsByEmail", ctx, "a@b.com").Return(false, nil)
				m.On("ExistsByUsername", ctx, "alice").Return(false, nil)
				m.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicateUsername)
			},
			wantErr: ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(repoMocks.MockUserRepository)
			svc, tokens, _ := newTestAuth(users, nil)
			tt.setupMocks(users)

			res, err := svc.Signup(ctx, tt.in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantMsg, ve.Msg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "u1", res.User.ID)
				claims, err := tokens.Parse(res.Token)
				require.NoError(t, err)
				assert.Equal(t, "u1", claims.UserID)
				assert.Equal(t, "alice", claims.Username)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	_, _, hasher := newTestAuth(nil, nil)
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(m *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name:     "happy path",
			email:    "A@B.com",
			password: "secret1",
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "a@b.com").Return(&model.User{ID: "u1", Username: "alice", PasswordHash: hash}, nil)
				m.On("UpdateLastLogin", ctx, "u1", mock.AnythingOfType("time.Time")).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "x@b.com",
			password: "secret1",
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "x@b.com").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@b.com",
			password: "nope-nope",
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "a@b.com").Return(&model.User{ID: "u1", PasswordHash: hash}, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(repoMocks.MockUserRepository)
			svc, _, _ := newTestAuth(users, nil)
			tt.setupMocks(users)

			res, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, res.Token)
			}
			users.AssertExpectations(t)
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		svc, _, _ := newTestAuth(new(repoMocks.MockUserRepository), nil)
		_, err := svc.Login(ctx, "", "x")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Please provide email and password", ve.Msg)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	svc, tokens, _ := newTestAuth(users, nil)

	good, err := tokens.Issue("u1", "alice")
	require.NoError(t, err)
	gone, err := tokens.Issue("u2", "bob")
	require.NoError(t, err)

	users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
	users.On("FindByID", ctx, "u2").Return(nil, sql.ErrNoRows)

	u, err := svc.Authenticate(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = svc.Authenticate(ctx, gone)
	assert.ErrorIs(t, err, ErrUserGone)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	svc, _, _ := newTestAuth(users, nil)

	bad := "wizard"
	_, err := svc.UpdateProfile(ctx, "u1", ProfileUpdate{DifficultyLevel: &bad})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	current := &model.User{
		ID:          "u1",
		Profile:     model.Profile{FirstName: "Al", Bio: "hi", Avatar: "/assets/avatars/default-1.png"},
		Preferences: model.Preferences{FavoriteTopics: []string{"math"}, DifficultyLevel: "beginner"},
	}
	users.On("FindByID", ctx, "u1").Return(current, nil)

	first, level := " Alice ", "advanced"
	wantProfile := model.Profile{FirstName: "Alice", Bio: "hi", Avatar: "/assets/avatars/default-1.png"}
	wantPrefs := model.Preferences{FavoriteTopics: []string{"math"}, DifficultyLevel: "advanced"}
	users.On("UpdateProfile", ctx, "u1", wantProfile, wantPrefs).
		Return(&model.User{ID: "u1", Profile: wantProfile, Preferences: wantPrefs}, nil)

	u, err := svc.UpdateProfile(ctx, "u1", ProfileUpdate{FirstName: &first, DifficultyLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Profile.FirstName)
	users.AssertExpectations(t)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	svc, _, hasher := newTestAuth(users, nil)
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)

	users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", PasswordHash: hash}, nil)

	err = svc.ChangePassword(ctx, "u1", "wrong-one", "newsecret")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, "u1", "secret1", "short")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "New password must be at least 6 characters long", ve.Msg)

	users.On("UpdatePassword", ctx, "u1", mock.MatchedBy(func(h string) bool {
		ok, _ := hasher.Compare(h, "newsecret")
		return ok
	})).Return(nil)
	assert.NoError(t, svc.ChangePassword(ctx, "u1", "secret1", "newsecret"))
	users.AssertExpectations(t)
}

func TestAuthService_UploadAvatar(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		contentType string
		setupMocks  func(users *repoMocks.MockUserRepository, store *storeMocks.MockStorage)
		wantErr     error
		wantErrMsg  string
	}{
		{
			name:        "happy path replaces previous upload",
			contentType: "image/png",
			setupMocks: func(users *repoMocks.MockUserRepository, store *storeMocks.MockStorage) {
				users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", Profile: model.Profile{Avatar: "avatars/u1/old.png"}}, nil)
				store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "avatars/u1/") && strings.HasSuffix(key, ".png")
				}), mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				users.On("UpdateAvatar", ctx, "u1", mock.AnythingOfType("string")).Return(nil)
				store.On("Delete", ctx, "avatars/u1/old.png").Return(nil)
			},
		},
		{
			name:        "not an image",
			contentType: "text/plain",
			setupMocks:  func(users *repoMocks.MockUserRepository, store *storeMocks.MockStorage) {},
			wantErrMsg:  "Only image uploads are allowed",
		},
		{
			name:        "db failure rolls back upload",
			contentType: "image/png",
			setupMocks: func(users *repoMocks.MockUserRepository, store *storeMocks.MockStorage) {
				users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", Profile: model.Profile{Avatar: "/assets/avatars/default-2.png"}}, nil)
				store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				users.On("UpdateAvatar", ctx, "u1", mock.Anything).Return(errors.New("db fail"))
				store.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "avatars/u1/")
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(repoMocks.MockUserRepository)
			store := new(storeMocks.MockStorage)
			svc, _, _ := newTestAuth(users, store)
			tt.setupMocks(users, store)

			key, err := svc.UploadAvatar(ctx, "u1", strings.NewReader("png"), "me.PNG", tt.contentType, 3)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(key, "avatars/u1/"))
			}
			users.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}

	t.Run("storage disabled", func(t *testing.T) {
		svc, _, _ := newTestAuth(new(repoMocks.MockUserRepository), nil)
		_, err := svc.UploadAvatar(ctx, "u1", strings.NewReader("x"), "a.png", "image/png", 1)
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})
}

func TestAuthService_OpenAvatar(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	store := new(storeMocks.MockStorage)
	svc, _, _ := newTestAuth(users, store)

	const (
		defaultAvatar = "11111111-1111-4111-8111-111111111111"
		lostObject    = "22222222-2222-4222-8222-222222222222"
		uploaded      = "33333333-3333-4333-8333-333333333333"
	)
	users.On("FindByID", ctx, defaultAvatar).Return(&model.User{Profile: model.Profile{Avatar: "/assets/avatars/default-1.png"}}, nil)
	users.On("FindByID", ctx, lostObject).Return(&model.User{Profile: model.Profile{Avatar: "avatars/missing/x.png"}}, nil)
	users.On("FindByID", ctx, uploaded).Return(&model.User{Profile: model.Profile{Avatar: "avatars/ok/x.png"}}, nil)
	store.On("Get", ctx, "avatars/missing/x.png").Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)
	store.On("Get", ctx, "avatars/ok/x.png").Return(io.NopCloser(strings.NewReader("img")), storage.ObjectInfo{ContentType: "image/png"}, nil)

	_, _, err := svc.OpenAvatar(ctx, defaultAvatar)
	assert.ErrorIs(t, err, ErrAvatarNotFound)

	_, _, err = svc.OpenAvatar(ctx, lostObject)
	assert.ErrorIs(t, err, ErrAvatarNotFound)

	_, _, err = svc.OpenAvatar(ctx, "user-1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	users.AssertNotCalled(t, "FindByID", ctx, "user-1")

	rc, info, err := svc.OpenAvatar(ctx, uploaded)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/png", info.ContentType)
}
