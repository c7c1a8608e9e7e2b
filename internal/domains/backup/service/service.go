package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"innkeeper/config"
	"innkeeper/infras/kafka"
	"innkeeper/infras/otel"
	"innkeeper/internal/domains/backup/model/dto"
	"innkeeper/internal/domains/backup/ndjson"
	"innkeeper/internal/domains/reservation/repository"
	resService "innkeeper/internal/domains/reservation/service"
	"innkeeper/shared"
	"innkeeper/shared/cache"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
	"innkeeper/shared/timezone"
	"innkeeper/shared/validator"
)

const (
	operationExport  = "export"
	operationRestore = "restore"
)

// Backup is the export/restore engine. It is stateless between invocations;
// all state lives in the object-storage backend under the tenant's prefix.
type Backup interface {
	ExportCSV(ctx context.Context, tenantID string) ([]byte, dto.ExportStats, error)
	ExportNDJSON(ctx context.Context, tenantID string, raw bool) ([]byte, dto.ExportStats, error)
	Restore(ctx context.Context, tenantID string, req dto.RestoreRequest) (dto.RestoreSummary, error)
}

type serviceImpl struct {
	repo   repository.Reservation
	cfg    *config.Config
	cache  cache.RedisCache
	events kafka.Client
	otel   otel.Otel
}

func New(repo repository.Reservation, cfg *config.Config, cache cache.RedisCache, events kafka.Client, otel otel.Otel) Backup {
	return &serviceImpl{
		repo:   repo,
		cfg:    cfg,
		cache:  cache,
		events: events,
		otel:   otel,
	}
}

// Restore ingests an uploaded NDJSON batch and reconciles it against the
// target prefix. The plan is always computed, including for write modes, so a
// preview and the real write classify records identically.
func (s *serviceImpl) Restore(ctx context.Context, tenantID string, req dto.RestoreRequest) (summary dto.RestoreSummary, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Restore")
	defer scope.End()
	defer scope.TraceIfError(err)

	if tenantID == "" {
		return summary, failure.Unauthorized("missing tenant identity") //nolint:wrapcheck
	}

	normalize, sandboxID, err := s.validateRequest(&req)
	if err != nil {
		return summary, err
	}

	targetPrefix := repository.DefaultPrefix(tenantID)
	if req.Target == dto.TargetSandbox {
		targetPrefix = repository.SandboxPrefix(tenantID, sandboxID)
	}

	scope.SetAttributes(map[string]any{
		"restore.mode":   string(req.Mode),
		"restore.target": string(req.Target),
	})

	parsed := ndjson.Parse(req.Content)

	plan, err := s.plan(ctx, parsed.Records, targetPrefix)
	if err != nil {
		return summary, err
	}

	if req.Mode == dto.ModeDryRun {
		summary = dto.RestoreSummary{
			Mode:         req.Mode,
			DryRun:       true,
			TargetPrefix: targetPrefix,
			ParseErrors:  parsed.Errors,
			Plan:         &plan,
		}
		if req.Target == dto.TargetSandbox {
			summary.SandboxID = sandboxID
		}

		return summary, nil
	}

	summary, err = s.execute(ctx, parsed.Records, plan, req.Mode, normalize)
	if err != nil {
		return dto.RestoreSummary{}, err
	}

	summary.ParseErrors = parsed.Errors
	if req.Target == dto.TargetSandbox {
		summary.SandboxID = sandboxID
	}

	if req.Target == dto.TargetDefault {
		go func() {
			c := context.WithoutCancel(ctx)

			shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(resService.CachePrefix, tenantID))
		}()
	}

	s.publishEvent(ctx, dto.OperationEvent{
		TenantID:  tenantID,
		Operation: operationRestore,
		Mode:      string(req.Mode),
		At:        timezone.Now().Format(constant.TimestampFormat),
		Detail:    summary,
	})

	return summary, nil
}

// validateRequest rejects bad input before any storage read or write. An
// absent mode defaults to dry-run, the only mode that cannot write.
func (s *serviceImpl) validateRequest(req *dto.RestoreRequest) (normalize bool, sandboxID string, err error) {
	if req.Mode == "" {
		req.Mode = dto.ModeDryRun
	}

	if !req.Mode.Valid() {
		return false, "", failure.InvalidModeParam //nolint:wrapcheck
	}

	if !req.Target.Valid() {
		return false, "", failure.InvalidTargetParam //nolint:wrapcheck
	}

	if err := validator.ValidateStruct(req); err != nil {
		return false, "", err //nolint:wrapcheck
	}

	normalize = true
	if req.Normalize != nil {
		normalize = *req.Normalize
	}

	if !normalize && req.Target != dto.TargetSandbox {
		return false, "", failure.RawWriteOutsideSandbox //nolint:wrapcheck
	}

	if req.Mode == dto.ModeOverwrite {
		if !req.ConfirmOverwrite || req.ConfirmText != constant.OverwriteConfirmPhrase {
			return false, "", failure.OverwriteNotConfirmed //nolint:wrapcheck
		}
	}

	sandboxID = req.SandboxID
	if req.Target == dto.TargetSandbox && sandboxID == "" {
		sandboxID = uuid.NewString()
	}

	return normalize, sandboxID, nil
}

func (s *serviceImpl) publishEvent(ctx context.Context, event dto.OperationEvent) {
	if !s.cfg.Kafka.Enable {
		return
	}

	topic := s.cfg.Kafka.TopicOperations

	go func() {
		c := context.WithoutCancel(ctx)

		err := s.events.SendMessages(c, topic, kafka.Message{
			Key:   fmt.Sprintf("%s:%s", event.TenantID, event.Operation),
			Value: event,
		})
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("failed to publish operation event")
		}
	}()
}
