package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"iforum/internal/models"
	"iforum/internal/repository"
	"iforum/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

type CreateUserInput struct {
	Email    string
	Password string
	Username string

	// Superuser accounts are always staff. CreateUser rejects the
	// combination is_superuser && !is_staff.
	IsStaff     bool
	IsSuperuser bool
}

type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Bio      *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser registers an account. The email is normalized before storage and
// the password is stored as a bcrypt hash.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.IsSuperuser && !in.IsStaff {
		return nil, models.NewValidationError("Superuser must have is_staff=true")
	}

	email := validation.NormalizeEmail(in.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:       email,
		Username:    in.Username,
		Password:    string(hashed),
		IsStaff:     in.IsStaff || in.IsSuperuser,
		IsSuperuser: in.IsSuperuser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSuperuser is the admin-CLI entry point. It forces both privilege
// flags on.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password, username string) (*models.User, error) {
	return s.CreateUser(ctx, CreateUserInput{
		Email:       email,
		Password:    password,
		Username:    username,
		IsStaff:     true,
		IsSuperuser: true,
	})
}

// Authenticate verifies credentials and returns the matching user, or an
// unauthorized error that does not reveal which part of the pair was wrong.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetProfile returns the user with the author profile preloaded.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetWithProfile(ctx, userID)
}

// UpdateProfile applies partial updates to the caller's own account. Nil
// fields are left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetWithProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = *in.Username
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	if in.Bio != nil {
		const maxBioLen = 500
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		profile := user.Profile
		if profile == nil {
			profile = &models.AuthorProfile{UserID: user.ID}
		}
		profile.Bio = *in.Bio
		if err := s.userRepo.SaveProfile(ctx, profile); err != nil {
			return nil, err
		}
		user.Profile = profile
	}

	return user, nil
}
