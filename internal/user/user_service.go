package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"timetrack/internal/shared/contextutil"
	usererrors "timetrack/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetMe(ctx context.Context, userID string) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, actorID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) GetMe(ctx context.Context, userID string) (UserResponse, error) {
	return s.GetByID(ctx, userID)
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(users), nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	l.Debug("create user requested", zap.String("email", email), zap.String("username", username))

	role := req.Role
	if role == "" {
		role = RoleEmployee
	}
	if !ValidRole(role) {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("create user begin tx failed", zap.Error(err))
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.ensureUnique(ctx, qtx, email, username, ""); err != nil {
		l.Warn("create user conflict", zap.String("email", email), zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hashed),
		Role:         role,
		IsActive:     true,
	}

	if err := qtx.Create(ctx, u); err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return UserResponse{}, mapped
		}
		l.Error("create user persist failed", zap.Error(err))
		return UserResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("create user commit failed", zap.Error(err))
		return UserResponse{}, err
	}

	l.Info("create user success", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return mapToResponse(*u), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("update user requested", zap.String("user_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("update user begin tx failed", zap.Error(err))
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	email, username := "", ""
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
	}
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	if err := s.ensureUnique(ctx, qtx, email, username, id); err != nil {
		l.Warn("update user conflict", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	if email != "" {
		u.Email = email
	}
	if username != "" {
		u.Username = username
	}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		if !ValidRole(*req.Role) {
			return UserResponse{}, usererrors.ErrInvalidRole
		}
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return UserResponse{}, err
		}
		u.PasswordHash = string(hashed)
	}

	if err := qtx.Update(ctx, u); err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return UserResponse{}, mapped
		}
		l.Error("update user persist failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("update user commit failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	l.Info("update user success", zap.String("user_id", id))
	return mapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return usererrors.ErrInvalidUserID
	}
	if actorID == id {
		l.Warn("delete user refused: self", zap.String("user_id", id))
		return usererrors.ErrCannotDeleteSelf
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if _, err := qtx.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		l.Error("delete user persist failed", zap.String("user_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	l.Info("delete user success", zap.String("user_id", id), zap.String("actor_id", actorID))
	return nil
}

// ensureUnique checks email and username against other users; empty values
// are skipped.
func (s *service) ensureUnique(ctx context.Context, repo Repository, email, username, excludeID string) error {
	if email != "" {
		taken, err := repo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return usererrors.ErrEmailTaken
		}
	}
	if username != "" {
		taken, err := repo.ExistsByUsername(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return usererrors.ErrUsernameTaken
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		TOTPEnabled: u.TOTPEnabled,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func mapToListResponse(users []User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp
}

// ToResponse exposes the public projection of a user to other packages.
func ToResponse(u User) UserResponse {
	return mapToResponse(u)
}
