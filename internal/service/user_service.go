package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// passwordCost is the bcrypt work factor for new password hashes.
var passwordCost = bcrypt.DefaultCost

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// Register creates an account. A taken username is a CONFLICT on the username field.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	form := validation.SignupForm{Username: username, Email: email, Password: password}
	form.Normalize()
	if err := validation.ValidateStruct(&form); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return nil, models.NewConflictError("username", "A user with that username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user matching the credentials, or UNAUTHORIZED.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	form := validation.LoginForm{Username: username, Password: password}
	form.Normalize()
	if err := validation.ValidateStruct(&form); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, form.Username)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError(invalidCredentials)
		}
		return nil, err
	}

	// Unusable hashes fail the comparison like a wrong password.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// PostCount returns how many posts the user wrote.
func (s *UserService) PostCount(ctx context.Context, userID uint) (int64, error) {
	return s.postRepo.Count(ctx, repository.PostFilter{AuthorID: userID})
}
