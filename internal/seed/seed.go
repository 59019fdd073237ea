package seed

import (
	"context"
	"errors"
	"fmt"

	"timetrack/internal/location"
	"timetrack/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Account struct {
	Email    string
	Username string
	FullName string
	Password string
	Role     string
}

// DefaultAccounts are the demo logins shown on the login screen.
var DefaultAccounts = []Account{
	{Email: "admin@timetrack.com", Username: "admin", FullName: "Admin User", Password: "admin123", Role: user.RoleAdmin},
	{Email: "manager@timetrack.com", Username: "manager", FullName: "Manager User", Password: "manager123", Role: user.RoleManager},
	{Email: "employee@timetrack.com", Username: "employee", FullName: "Employee User", Password: "employee123", Role: user.RoleEmployee},
}

var DefaultLocation = location.Location{
	Name:         "Main Office",
	Address:      "New York, NY",
	Latitude:     40.7128,
	Longitude:    -74.0060,
	RadiusMeters: 100,
	IsActive:     true,
}

type Result struct {
	UsersCreated    int
	LocationCreated bool
}

type Seeder struct {
	users     user.Repository
	locations location.Repository
	cost      int
	logger    *zap.Logger
}

func NewSeeder(users user.Repository, locations location.Repository, logger ...*zap.Logger) *Seeder {
	l := zap.L().Named("seed")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("seed")
	}
	return &Seeder{users: users, locations: locations, cost: bcrypt.DefaultCost, logger: l}
}

// WithCost overrides the bcrypt cost, mostly for tests.
func (s *Seeder) WithCost(cost int) *Seeder {
	s.cost = cost
	return s
}

// Run creates whatever default accounts and locations are missing. Existing
// rows are left untouched so it is safe to run on every boot.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	for _, acc := range DefaultAccounts {
		created, err := s.ensureUser(ctx, acc)
		if err != nil {
			return res, err
		}
		if created {
			res.UsersCreated++
		}
	}

	created, err := s.ensureLocation(ctx, DefaultLocation)
	if err != nil {
		return res, err
	}
	res.LocationCreated = created

	s.logger.Info("seed finished",
		zap.Int("users_created", res.UsersCreated),
		zap.Bool("location_created", res.LocationCreated),
	)
	return res, nil
}

func (s *Seeder) ensureUser(ctx context.Context, acc Account) (bool, error) {
	if _, err := s.users.FindByEmail(ctx, acc.Email); err == nil {
		s.logger.Debug("seed user exists", zap.String("email", acc.Email))
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup %s: %w", acc.Email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), s.cost)
	if err != nil {
		return false, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        acc.Email,
		Username:     acc.Username,
		FullName:     acc.FullName,
		PasswordHash: string(hash),
		Role:         acc.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return false, fmt.Errorf("create %s: %w", acc.Email, err)
	}
	s.logger.Info("seed user created", zap.String("email", acc.Email), zap.String("role", acc.Role))
	return true, nil
}

func (s *Seeder) ensureLocation(ctx context.Context, want location.Location) (bool, error) {
	existing, err := s.locations.FindAll(ctx, false)
	if err != nil {
		return false, err
	}
	for _, loc := range existing {
		if loc.Name == want.Name {
			return false, nil
		}
	}

	loc := want
	loc.ID = uuid.New()
	if err := s.locations.Create(ctx, &loc); err != nil {
		return false, fmt.Errorf("create location %s: %w", want.Name, err)
	}
	s.logger.Info("seed location created", zap.String("name", loc.Name))
	return true, nil
}
