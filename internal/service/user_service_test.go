package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"user-portal/internal/domain"
	"user-portal/internal/repository"
)

type mockUserRepo struct {
	usersByUsername map[string]domain.User

	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByUsername: make(map[string]domain.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.usersByUsername[user.Username]; ok {
		return repository.ErrDuplicate
	}
	m.usersByUsername[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	user, ok := m.usersByUsername[username]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

type mockWelcomeSender struct {
	lastTo   string
	lastName string
	err      error
}

func (m *mockWelcomeSender) SendWelcome(_ context.Context, toEmail string, fullName string) error {
	m.lastTo = toEmail
	m.lastName = fullName
	return m.err
}

func validInput() RegisterInput {
	return RegisterInput{
		FullName: "A B",
		Email:    "a@b.com",
		Phone:    "555",
		Username: "alice",
		Password: "hunter2",
	}
}

func TestRegister_Success(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockWelcomeSender{}
	svc := NewUserService(zap.NewNop(), repo, sender)

	user, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated user id")
	}

	stored, ok := repo.usersByUsername["alice"]
	if !ok {
		t.Fatalf("expected record to be persisted")
	}
	if stored.FullName != "A B" || stored.Email != "a@b.com" || stored.Phone != "555" {
		t.Fatalf("unexpected stored fields: %+v", stored)
	}
	if stored.PasswordHash == "hunter2" {
		t.Fatalf("plaintext password must not be persisted")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2")); err != nil {
		t.Fatalf("digest does not verify against original password: %v", err)
	}
	if sender.lastTo != "a@b.com" {
		t.Fatalf("expected welcome email to be sent, got %q", sender.lastTo)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := repo.usersByUsername["alice"]

	_, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if len(repo.usersByUsername) != 1 {
		t.Fatalf("expected store unchanged, got %d records", len(repo.usersByUsername))
	}
	if repo.usersByUsername["alice"].ID != first.ID {
		t.Fatalf("expected original record to survive")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo, nil)

	input := validInput()
	input.Phone = "   "
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if len(repo.usersByUsername) != 0 {
		t.Fatalf("expected no records persisted")
	}
}

func TestRegister_StoreRaceSurfacesDuplicate(t *testing.T) {
	repo := newMockUserRepo()
	repo.createErr = repository.ErrDuplicate
	svc := NewUserService(zap.NewNop(), repo, nil)

	_, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected repository.ErrDuplicate to pass through, got %v", err)
	}
}

func TestRegister_WelcomeEmailFailureDoesNotFailSignup(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockWelcomeSender{err: errors.New("smtp down")}
	svc := NewUserService(zap.NewNop(), repo, sender)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.usersByUsername) != 1 {
		t.Fatalf("expected record to be persisted despite email failure")
	}
}

func TestAuthenticate_CorrectThenIncorrectPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo, nil)

	_, err := svc.Authenticate(context.Background(), "nobody", "whatever")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("unknown user must never yield the incorrect-password path")
	}
}

func TestAuthenticate_MalformedDigestFailsVerification(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo, nil)
	repo.usersByUsername["alice"] = domain.User{Username: "alice", PasswordHash: "not-a-bcrypt-hash"}

	if _, err := svc.Authenticate(context.Background(), "alice", "hunter2"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword for unparseable digest, got %v", err)
	}
}
