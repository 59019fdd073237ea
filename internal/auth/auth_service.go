package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "timetrack/internal/auth/errors"
	"timetrack/internal/shared/contextutil"
	"timetrack/internal/user"
	usererrors "timetrack/internal/user/errors"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenSigner issues access tokens for an authenticated user.
type TokenSigner interface {
	Sign(userID, role string) (string, time.Time, error)
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	SetupTOTP(ctx context.Context, userID string) (TOTPSetupResponse, error)
	EnableTOTP(ctx context.Context, userID, code string) error
}

type service struct {
	repo   Repository
	signer TokenSigner
	issuer string
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, signer TokenSigner, issuer string, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if issuer == "" {
		issuer = "TimeTrack"
	}
	return &service{repo: repo, signer: signer, issuer: issuer, now: time.Now, logger: l}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login failed: unknown email")
			return LoginResponse{}, autherrors.ErrInvalidCredentials
		}
		l.Error("login lookup failed", zap.Error(err))
		return LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		l.Warn("login failed: wrong password", zap.String("user_id", u.ID.String()))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		l.Warn("login failed: inactive user", zap.String("user_id", u.ID.String()))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	if u.TOTPEnabled && u.TOTPSecret != nil {
		if req.OTPCode == "" {
			return LoginResponse{}, autherrors.ErrOTPRequired
		}
		if !s.validateCode(req.OTPCode, *u.TOTPSecret) {
			l.Warn("login failed: invalid otp", zap.String("user_id", u.ID.String()))
			return LoginResponse{}, autherrors.ErrInvalidOTP
		}
	}

	accessToken, expiresAt, err := s.signer.Sign(u.ID.String(), u.Role)
	if err != nil {
		l.Error("sign access token failed", zap.Error(err))
		return LoginResponse{}, err
	}

	l.Info("login success", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(*u),
	}, nil
}

func (s *service) SetupTOTP(ctx context.Context, userID string) (TOTPSetupResponse, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return TOTPSetupResponse{}, err
	}
	if u.TOTPEnabled {
		return TOTPSetupResponse{}, autherrors.ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: u.Email,
	})
	if err != nil {
		return TOTPSetupResponse{}, err
	}

	if err := s.repo.SetPendingTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return TOTPSetupResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("totp setup started", zap.String("user_id", userID))
	return TOTPSetupResponse{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *service) EnableTOTP(ctx context.Context, userID, code string) error {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.TOTPEnabled {
		return autherrors.ErrTOTPAlreadyEnabled
	}
	if u.TOTPPendingSecret == nil || *u.TOTPPendingSecret == "" {
		return autherrors.ErrTOTPNotInitiated
	}
	if !s.validateCode(code, *u.TOTPPendingSecret) {
		return autherrors.ErrInvalidOTP
	}

	if err := s.repo.EnableTOTP(ctx, userID, *u.TOTPPendingSecret); err != nil {
		return err
	}

	contextutil.GetLogger(ctx, s.logger).Info("totp enabled", zap.String("user_id", userID))
	return nil
}

func (s *service) getUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// validateCode accepts the current 30s step and one step either side.
func (s *service) validateCode(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
