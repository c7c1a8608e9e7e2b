package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"innkeeper/config"
	"innkeeper/infras/objstore"
	"innkeeper/infras/otel"
	"innkeeper/internal/domains/reservation/model"
	"innkeeper/internal/domains/reservation/model/dto"
	"innkeeper/internal/domains/reservation/repository"
	"innkeeper/shared"
	"innkeeper/shared/cache"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
	"innkeeper/shared/timezone"
)

const (
	// CachePrefix heads every reservation cache key; clearing
	// "<CachePrefix>:<tenant>:*" invalidates a tenant's cached reads.
	CachePrefix = "reservation"

	cacheGetReservation    = "get"
	cacheGetAllReservation = "gets"
)

type Reservation interface {
	Create(ctx context.Context, req dto.CreateReservationRequest) (model.ReservationRecord, error)
	Get(ctx context.Context, id string) (model.ReservationRecord, error)
	GetAll(ctx context.Context) (dto.GetReservationsResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateReservationRequest) (model.ReservationRecord, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Reservation
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Reservation, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Reservation {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) tenant(ctx context.Context) (string, error) {
	tenantID := shared.TenantFromContext(ctx)
	if tenantID == "" {
		return "", failure.Unauthorized("missing tenant identity") //nolint:wrapcheck
	}

	return tenantID, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (rec model.ReservationRecord, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID, err := s.tenant(ctx)
	if err != nil {
		return rec, err
	}

	rec = req.ToModel(timezone.Now())
	key := repository.KeyFor(repository.DefaultPrefix(tenantID), rec.ID)

	if err = s.repo.Put(ctx, key, rec); err != nil {
		log.Error().Err(err).Msg("failed to create reservation")

		return rec, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.invalidateCaches(ctx, tenantID)

	return rec, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (rec model.ReservationRecord, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID, err := s.tenant(ctx)
	if err != nil {
		return rec, err
	}

	cacheKey := shared.BuildCacheKey(CachePrefix, tenantID, cacheGetReservation, id)

	err = s.cache.Get(ctx, cacheKey, &rec)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation")

		return rec, nil
	}

	key := repository.KeyFor(repository.DefaultPrefix(tenantID), id)

	rec, err = s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return rec, failure.NotFound(model.EntityName) //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to get reservation")

		return rec, fmt.Errorf("failed to get reservation: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, rec, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation to cache")
		}
	}()

	return rec, nil
}

func (s *serviceImpl) GetAll(ctx context.Context) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID, err := s.tenant(ctx)
	if err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(CachePrefix, tenantID, cacheGetAllReservation)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	keys, err := s.repo.ListAllKeys(ctx, repository.DefaultPrefix(tenantID))
	if err != nil {
		log.Error().Err(err).Msg("failed to list reservations")

		return res, fmt.Errorf("failed to list reservations: %w", err)
	}

	records := make([]model.ReservationRecord, len(keys))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.App.BulkFanOut)

	for index, key := range keys {
		group.Go(func() error {
			rec, err := s.repo.Get(groupCtx, key)
			if err != nil {
				return fmt.Errorf("failed to fetch reservation at %q: %w", key, err)
			}

			records[index] = rec

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to fetch reservations")

		return res, fmt.Errorf("failed to fetch reservations: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CheckIn != records[j].CheckIn {
			return records[i].CheckIn < records[j].CheckIn
		}

		return records[i].ID < records[j].ID
	})

	res.Reservations = records
	res.Total = len(records)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateReservationRequest) (rec model.ReservationRecord, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID, err := s.tenant(ctx)
	if err != nil {
		return rec, err
	}

	key := repository.KeyFor(repository.DefaultPrefix(tenantID), id)

	rec, err = s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return rec, failure.NotFound(model.EntityName) //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to load reservation for update")

		return rec, fmt.Errorf("failed to load reservation for update: %w", err)
	}

	req.Apply(&rec, timezone.Now())

	if err = s.repo.Put(ctx, key, rec); err != nil {
		log.Error().Err(err).Msg("failed to update reservation")

		return rec, fmt.Errorf("failed to update reservation: %w", err)
	}

	s.invalidateCaches(ctx, tenantID)

	return rec, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	tenantID, err := s.tenant(ctx)
	if err != nil {
		return err
	}

	key := repository.KeyFor(repository.DefaultPrefix(tenantID), id)

	exists, err := s.repo.Exists(ctx, key)
	if err != nil {
		log.Error().Err(err).Msg("failed to check reservation before delete")

		return fmt.Errorf("failed to check reservation before delete: %w", err)
	}

	if !exists {
		return failure.NotFound(model.EntityName) //nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, key); err != nil {
		log.Error().Err(err).Msg("failed to delete reservation")

		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	s.invalidateCaches(ctx, tenantID)

	return nil
}

func (s *serviceImpl) invalidateCaches(ctx context.Context, tenantID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(CachePrefix, tenantID))
	}()
}
