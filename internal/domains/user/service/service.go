package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"shareit/config"
	"shareit/infras/otel"
	"shareit/internal/domains/user/model/dto"
	"shareit/internal/domains/user/repository"
	"shareit/shared"
	"shareit/shared/cache"
	"shareit/shared/clock"
	"shareit/shared/constant"
	"shareit/shared/failure"
)

const (
	cacheGetUser = "user:get"
)

type User interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	GetAll(ctx context.Context) ([]dto.UserResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateUserRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	clock clock.Clock
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, redisCache cache.RedisCache, clk clock.Clock, otl otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: redisCache,
		clock: clk,
		otel:  otl,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return res, fmt.Errorf("failed to check user email: %w", err)
	}

	if existing.ID != constant.Empty {
		return res, failure.Conflict(fmt.Sprintf("user with email %s already exists", req.Email)) //nolint:wrapcheck
	}

	user := req.ToModel(s.clock.Now())

	if err = s.repo.Insert(ctx, user); err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return res, fmt.Errorf("failed to create user: %w", err)
	}

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetUser, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for user")

		return res, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound(fmt.Sprintf("user with id %s not found", id)) //nolint:wrapcheck
	}

	res.FromModel(user)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context) (res []dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get users")

		return res, fmt.Errorf("failed to get users: %w", err)
	}

	return dto.FromModels(users), nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound(fmt.Sprintf("user with id %s not found", id)) //nolint:wrapcheck
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.repo.FindByEmail(ctx, *req.Email)
		if err != nil {
			return res, fmt.Errorf("failed to check user email: %w", err)
		}

		if existing.ID != constant.Empty {
			return res, failure.Conflict(fmt.Sprintf("user with email %s already exists", *req.Email)) //nolint:wrapcheck
		}
	}

	fields := shared.TransformFields(req, id)
	if err = s.repo.Update(ctx, fields, id); err != nil {
		log.Error().Err(err).Msg("failed to update user")

		return res, fmt.Errorf("failed to update user: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	res.FromModel(updated)

	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound(fmt.Sprintf("user with id %s not found", id)) //nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("failed to delete user")

		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetUser, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete user from cache")
		}
	}()
}
