package location

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"timetrack/internal/config"
	locationerrors "timetrack/internal/location/errors"
	"timetrack/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const ActiveLocationsCacheKey = "locations:active"

type Service interface {
	GetActive(ctx context.Context) ([]LocationResponse, error)
	GetAll(ctx context.Context) ([]LocationResponse, error)
	GetByID(ctx context.Context, id string) (LocationResponse, error)
	Create(ctx context.Context, req CreateLocationRequest) (LocationResponse, error)
	Update(ctx context.Context, id string, req UpdateLocationRequest) (LocationResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db            *sql.DB
	repo          Repository
	rdb           *redis.Client
	sf            *singleflight.Group
	defaultRadius int
	cacheTTL      time.Duration
	logger        *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, cfg config.LocationConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("location.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("location.service")
	}
	radius := cfg.DefaultRadiusMeters
	if radius < MinRadiusMeters || radius > MaxRadiusMeters {
		radius = 100
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		db:            db,
		repo:          repo,
		rdb:           rdb,
		sf:            &singleflight.Group{},
		defaultRadius: radius,
		cacheTTL:      ttl,
		logger:        l,
	}
}

// GetActive serves the clock-in picker. Reads go through Redis and concurrent
// misses share one database query.
func (s *service) GetActive(ctx context.Context) ([]LocationResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ActiveLocationsCacheKey).Result(); err == nil {
			var resp []LocationResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(ActiveLocationsCacheKey, func() (interface{}, error) {
		locs, err := s.repo.FindAll(ctx, true)
		if err != nil {
			return nil, err
		}
		resp := mapToListResponse(locs)

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, ActiveLocationsCacheKey, data, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("cache active locations failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get active locations failed", zap.Error(err))
		return nil, err
	}

	return v.([]LocationResponse), nil
}

func (s *service) GetAll(ctx context.Context) ([]LocationResponse, error) {
	locs, err := s.repo.FindAll(ctx, false)
	if err != nil {
		s.logger.Error("get all locations failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(locs), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LocationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LocationResponse{}, locationerrors.ErrInvalidLocationID
	}
	loc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LocationResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*loc), nil
}

func (s *service) Create(ctx context.Context, req CreateLocationRequest) (LocationResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("create location requested", zap.String("name", req.Name))

	if req.Latitude == nil || req.Longitude == nil || !ValidCoordinates(*req.Latitude, *req.Longitude) {
		l.Warn("create location invalid coordinates")
		return LocationResponse{}, locationerrors.ErrInvalidCoordinates
	}

	radius := s.defaultRadius
	if req.RadiusMeters != nil {
		radius = *req.RadiusMeters
	}
	if !validRadius(radius) {
		l.Warn("create location invalid radius", zap.Int("radius_meters", radius))
		return LocationResponse{}, locationerrors.ErrInvalidRadius
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	loc := &Location{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Address:      strings.TrimSpace(req.Address),
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RadiusMeters: radius,
		IsActive:     active,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("create location begin tx failed", zap.Error(err))
		return LocationResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, loc); err != nil {
		l.Error("create location persist failed", zap.Error(err))
		return LocationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("create location commit failed", zap.Error(err))
		return LocationResponse{}, err
	}

	s.invalidateCache(ctx)
	l.Info("create location success", zap.String("location_id", loc.ID.String()))
	return mapToResponse(*loc), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLocationRequest) (LocationResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("update location requested", zap.String("location_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return LocationResponse{}, locationerrors.ErrInvalidLocationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("update location begin tx failed", zap.Error(err))
		return LocationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	loc, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LocationResponse{}, mapRepositoryError(err)
	}

	if req.Name != nil {
		loc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		loc.Address = strings.TrimSpace(*req.Address)
	}
	if req.Latitude != nil {
		loc.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		loc.Longitude = *req.Longitude
	}
	if req.RadiusMeters != nil {
		loc.RadiusMeters = *req.RadiusMeters
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}

	if !ValidCoordinates(loc.Latitude, loc.Longitude) {
		return LocationResponse{}, locationerrors.ErrInvalidCoordinates
	}
	if !validRadius(loc.RadiusMeters) {
		return LocationResponse{}, locationerrors.ErrInvalidRadius
	}

	if err := qtx.Update(ctx, loc); err != nil {
		l.Error("update location persist failed", zap.Error(err))
		return LocationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("update location commit failed", zap.Error(err))
		return LocationResponse{}, err
	}

	s.invalidateCache(ctx)
	l.Info("update location success", zap.String("location_id", id))
	return mapToResponse(*loc), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return locationerrors.ErrInvalidLocationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("delete location begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	open, err := qtx.CountOpenTimeEntries(ctx, id)
	if err != nil {
		l.Error("delete location count entries failed", zap.Error(err))
		return err
	}
	if open > 0 {
		l.Warn("delete location refused: in use", zap.String("location_id", id), zap.Int64("open_entries", open))
		return locationerrors.ErrLocationInUse
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		l.Error("delete location commit failed", zap.Error(err))
		return err
	}

	s.invalidateCache(ctx)
	l.Info("delete location success", zap.String("location_id", id))
	return nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, ActiveLocationsCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate active locations cache",
			zap.Error(err),
			zap.String("key", ActiveLocationsCacheKey),
		)
	}
}

func validRadius(r int) bool {
	return r >= MinRadiusMeters && r <= MaxRadiusMeters
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return locationerrors.ErrLocationNotFound
	}
	return err
}

func mapToResponse(loc Location) LocationResponse {
	return LocationResponse{
		ID:           loc.ID.String(),
		Name:         loc.Name,
		Address:      loc.Address,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		RadiusMeters: loc.RadiusMeters,
		IsActive:     loc.IsActive,
		CreatedAt:    loc.CreatedAt,
		UpdatedAt:    loc.UpdatedAt,
	}
}

func mapToListResponse(locs []Location) []LocationResponse {
	resp := make([]LocationResponse, len(locs))
	for i, loc := range locs {
		resp[i] = mapToResponse(loc)
	}
	return resp
}

// ToResponse exposes the public projection to packages embedding a location.
func ToResponse(loc Location) LocationResponse {
	return mapToResponse(loc)
}
