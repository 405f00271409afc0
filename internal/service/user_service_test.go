package service

import (
	"context"
	"errors"
	"testing"

	"iforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getWithProfileFn func(context.Context, uint) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updateFn         func(context.Context, *models.User) error
	saveProfileFn    func(context.Context, *models.AuthorProfile) error
	listSuperusersFn func(context.Context) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetWithProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.getWithProfileFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) SaveProfile(ctx context.Context, profile *models.AuthorProfile) error {
	return s.saveProfileFn(ctx, profile)
}
func (s *userRepoStub) ListSuperusers(ctx context.Context) ([]models.User, error) {
	return s.listSuperusersFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:        func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getWithProfileFn: func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		createFn:         func(_ context.Context, _ *models.User) error { return nil },
		updateFn:         func(_ context.Context, _ *models.User) error { return nil },
		saveProfileFn:    func(_ context.Context, _ *models.AuthorProfile) error { return nil },
		listSuperusersFn: func(_ context.Context) ([]models.User, error) { return nil, nil },
	}
}

const validPassword = "Long-enough-password-9"

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateUserInput
	}{
		{
			name:  "missing email",
			input: CreateUserInput{Password: validPassword},
		},
		{
			name:  "malformed email",
			input: CreateUserInput{Email: "not-an-email", Password: validPassword},
		},
		{
			name:  "short password",
			input: CreateUserInput{Email: "a@example.com", Password: "Short-1"},
		},
		{
			name:  "password without digits",
			input: CreateUserInput{Email: "a@example.com", Password: "No-digits-in-here!"},
		},
		{
			name:  "superuser without staff flag",
			input: CreateUserInput{Email: "a@example.com", Password: validPassword, IsSuperuser: true},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateUser(ctx, tc.input)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_CreateUser_NormalizesEmailAndHashes(t *testing.T) {
	t.Parallel()

	var created *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, user *models.User) error {
		created = user
		user.ID = 1
		return nil
	}

	svc := NewUserService(repo)
	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "Reader@EXAMPLE.Com",
		Password: validPassword,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	// Only the domain part is lowered; the local part is caller's business.
	assert.Equal(t, "Reader@example.com", user.Email)

	assert.NotEqual(t, validPassword, created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(validPassword)))
}

func TestUserService_CreateUser_Duplicate(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
		return &models.User{ID: 1}, nil
	}

	svc := NewUserService(repo)
	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email: "taken@example.com", Password: validPassword,
	})
	assertValidationError(t, err)
}

func TestUserService_CreateSuperuser_SetsBothFlags(t *testing.T) {
	t.Parallel()

	var created *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, user *models.User) error {
		created = user
		return nil
	}

	svc := NewUserService(repo)
	_, err := svc.CreateSuperuser(context.Background(), "root@example.com", validPassword, "")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.IsSuperuser)
	assert.True(t, created.IsStaff)
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "known@example.com" {
			return &models.User{ID: 1, Email: email, Password: string(hash)}, nil
		}
		return nil, nil
	}

	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "known@example.com", validPassword)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	// Unknown email and wrong password produce the same error.
	_, errUnknown := svc.Authenticate(ctx, "unknown@example.com", validPassword)
	_, errWrongPw := svc.Authenticate(ctx, "known@example.com", "Wrong-password-1")
	for _, err := range []error{errUnknown, errWrongPw} {
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("bio creates missing profile row", func(t *testing.T) {
		t.Parallel()

		var savedProfile *models.AuthorProfile
		repo := noopUserRepo()
		repo.getWithProfileFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		}
		repo.saveProfileFn = func(_ context.Context, profile *models.AuthorProfile) error {
			savedProfile = profile
			return nil
		}

		svc := NewUserService(repo)
		bio := "I write about Go"
		user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 7, Bio: &bio})
		require.NoError(t, err)
		require.NotNil(t, savedProfile)
		assert.Equal(t, uint(7), savedProfile.UserID)
		assert.Equal(t, bio, savedProfile.Bio)
		require.NotNil(t, user.Profile)
	})

	t.Run("nil fields leave user untouched", func(t *testing.T) {
		t.Parallel()

		repo := noopUserRepo()
		updateCalled := false
		saveProfileCalled := false
		repo.updateFn = func(_ context.Context, _ *models.User) error {
			updateCalled = true
			return nil
		}
		repo.saveProfileFn = func(_ context.Context, _ *models.AuthorProfile) error {
			saveProfileCalled = true
			return nil
		}

		svc := NewUserService(repo)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 7})
		require.NoError(t, err)
		assert.False(t, updateCalled)
		assert.False(t, saveProfileCalled)
	})
}
