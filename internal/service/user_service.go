package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"user-portal/internal/domain"
	"user-portal/internal/email"
	"user-portal/internal/repository"
)

// UserService coordina reglas de negocio para registro y autenticación.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender) *UserService {
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
	}
}

var (
	ErrUsernameTaken     = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrMissingField      = errors.New("missing required field")
)

type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Username string
	Password string
}

// Register valida los campos, verifica unicidad del username, deriva el
// digest bcrypt y persiste el registro. Un duplicado que se cuele entre la
// consulta y el insert sale como repository.ErrDuplicate desde el store.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	fullName := strings.TrimSpace(input.FullName)
	emailAddr := normalizeEmail(input.Email)
	phone := strings.TrimSpace(input.Phone)
	username := strings.TrimSpace(input.Username)
	password := input.Password

	if fullName == "" || emailAddr == "" || phone == "" || username == "" || password == "" {
		return domain.User{}, ErrMissingField
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return domain.User{}, ErrUsernameTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        emailAddr,
		Phone:        phone,
		Username:     username,
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendWelcome(ctx, emailAddr, fullName); err != nil {
			if s.logger != nil {
				s.logger.Warn("send welcome email failed", zap.Error(err), zap.String("email", emailAddr))
			}
		}
	}

	return user, nil
}

// Authenticate busca el usuario por username y compara el password contra
// el digest almacenado. Los dos fallos quedan distinguidos a propósito.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	username = strings.TrimSpace(username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrIncorrectPassword
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
