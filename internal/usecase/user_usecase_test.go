package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/infrastructure/auth"
	"github.com/vkotov/finbook/internal/usecase"
	"github.com/vkotov/finbook/internal/usecase/mocks"
)

func newJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret", time.Hour)
}

func TestRegisterHashesPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(nil, domain.ErrUserNotFound)

	var created *domain.User
	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, user *domain.User) error {
			created = user
			return nil
		})

	uc := usecase.NewUserUseCase(userRepo, newJWTManager(), mocks.NewMockIDGenerator())

	user, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "Ada@Example.com",
		Name:     "Ada",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Email != "ada@example.com" {
		t.Errorf("expected normalized email, got %s", user.Email)
	}

	if created == nil || created.PasswordHash == "" || created.PasswordHash == "correct-horse-battery" {
		t.Error("expected password to be stored as a hash")
	}
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(&domain.User{ID: "u1"}, nil)

	uc := usecase.NewUserUseCase(userRepo, newJWTManager(), mocks.NewMockIDGenerator())

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)

	var created *domain.User
	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(nil, domain.ErrUserNotFound)
	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, user *domain.User) error {
			created = user
			return nil
		})

	jwtManager := newJWTManager()
	uc := usecase.NewUserUseCase(userRepo, jwtManager, mocks.NewMockIDGenerator())

	if _, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct-horse-battery",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(created, nil)

	out, err := uc.Login(context.Background(), "ada@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := jwtManager.Verify(out.Token)
	if err != nil {
		t.Fatalf("token verification failed: %v", err)
	}

	if claims.UserID != created.ID {
		t.Errorf("expected token subject %s, got %s", created.ID, claims.UserID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)

	var created *domain.User
	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(nil, domain.ErrUserNotFound)
	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, user *domain.User) error {
			created = user
			return nil
		})

	uc := usecase.NewUserUseCase(userRepo, newJWTManager(), mocks.NewMockIDGenerator())

	if _, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(created, nil)

	_, err := uc.Login(context.Background(), "ada@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, domain.ErrUserNotFound)

	uc := usecase.NewUserUseCase(userRepo, newJWTManager(), mocks.NewMockIDGenerator())

	_, err := uc.Login(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
