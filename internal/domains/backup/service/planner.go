package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"innkeeper/internal/domains/backup/model/dto"
	"innkeeper/internal/domains/reservation/repository"
	"innkeeper/internal/domains/reservation/schema"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
)

// plan classifies every raw record against the target prefix without writing
// anything. A storage or permission error on an existence check aborts the
// whole plan: silently treating it as "not found" could let a later
// create-only restore touch keys it cannot actually see.
func (s *serviceImpl) plan(ctx context.Context, records []schema.RawRecord, targetPrefix string) (plan dto.RestorePlan, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".plan")
	defer scope.End()
	defer scope.TraceIfError(err)

	plan = dto.RestorePlan{
		TargetPrefix: targetPrefix,
		Entries:      make([]dto.PlanEntry, len(records)),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.App.BulkFanOut)

	for index, raw := range records {
		group.Go(func() error {
			entry := dto.PlanEntry{
				Index: index,
				ID:    schema.RecordID(raw),
			}

			if structErr := schema.ValidateStructure(raw); structErr != nil {
				entry.Classification = dto.ClassificationInvalid
				entry.Reason = structErr.Error()
				plan.Entries[index] = entry

				return nil
			}

			entry.Key = repository.KeyFor(targetPrefix, entry.ID)

			exists, existsErr := s.repo.Exists(groupCtx, entry.Key)
			if existsErr != nil {
				return failure.StorageAuth(fmt.Errorf("existence check for %q failed: %w", entry.Key, existsErr)) //nolint:wrapcheck
			}

			if exists {
				entry.Classification = dto.ClassificationConflict
			} else {
				entry.Classification = dto.ClassificationCreate
			}

			plan.Entries[index] = entry

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return dto.RestorePlan{}, err
	}

	for _, entry := range plan.Entries {
		switch entry.Classification {
		case dto.ClassificationCreate:
			plan.Creates++
		case dto.ClassificationConflict:
			plan.Conflicts++
		case dto.ClassificationInvalid:
			plan.Invalids++
		}
	}

	return plan, nil
}
