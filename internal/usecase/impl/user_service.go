package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "foodbridge/internal/delivery/context"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type userService struct {
	userRepo  repository.UserRepository
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(
	userRepo repository.UserRepository,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.UserUsecase {
	return &userService{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// RegisterUser creates a new account and publishes the creation event
func (s *userService) RegisterUser(ctx context.Context, input *usecase.UserInput) (*entity.User, error) {
	role := entity.Role(input.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown role: " + input.Role)
	}

	user := &entity.User{
		ID:        uuid.New(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	event, err := service.NewEvent(uuid.NewString(), service.EventUserCreated,
		deliverycontext.GetRequestIDFromContext(ctx),
		&service.UserCreatedEvent{UserID: user.ID.String(), Role: string(user.Role)})
	if err != nil {
		s.logger.Error("failed to build user created event", slog.Any("error", err))

		return user, nil
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish user created event",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err),
		)
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}
