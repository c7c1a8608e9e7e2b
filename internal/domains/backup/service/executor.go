package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"innkeeper/internal/domains/backup/model/dto"
	"innkeeper/internal/domains/reservation/schema"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
	"innkeeper/shared/timezone"
)

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeOverwritten
	outcomeSkipped
	outcomeInvalid
	outcomeFailed
)

// execute applies a computed plan under create-only or overwrite semantics.
// It consumes the plan's classifications verbatim rather than re-deriving
// them, and a per-record write failure never aborts the remaining records.
// A permission failure is the exception: it aborts the whole operation.
func (s *serviceImpl) execute(ctx context.Context, records []schema.RawRecord, plan dto.RestorePlan, mode dto.RestoreMode, normalize bool) (summary dto.RestoreSummary, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".execute")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := timezone.Now()
	nowStamp := now.Format(constant.TimestampFormat)

	outcomes := make([]outcome, len(plan.Entries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.App.BulkFanOut)

	for index, entry := range plan.Entries {
		group.Go(func() error {
			switch entry.Classification {
			case dto.ClassificationInvalid:
				outcomes[index] = outcomeInvalid

			case dto.ClassificationConflict:
				if mode == dto.ModeCreateOnly {
					outcomes[index] = outcomeSkipped

					return nil
				}

				if err := s.writeRecord(groupCtx, entry.Key, records[entry.Index], normalize, nowStamp); err != nil {
					if failure.IsStorageAuth(err) {
						return err
					}

					log.Error().Err(err).Str("key", entry.Key).Msg("failed to overwrite record")

					outcomes[index] = outcomeFailed

					return nil
				}

				outcomes[index] = outcomeOverwritten

			case dto.ClassificationCreate:
				if err := s.writeRecord(groupCtx, entry.Key, records[entry.Index], normalize, nowStamp); err != nil {
					if failure.IsStorageAuth(err) {
						return err
					}

					log.Error().Err(err).Str("key", entry.Key).Msg("failed to create record")

					outcomes[index] = outcomeFailed

					return nil
				}

				outcomes[index] = outcomeCreated
			}

			return nil
		})
	}

	// Per-record failures are recorded as outcomes; only a permission failure
	// travels back through the group and aborts the operation.
	if err = group.Wait(); err != nil {
		return dto.RestoreSummary{}, err
	}

	summary = dto.RestoreSummary{
		Mode:           mode,
		TargetPrefix:   plan.TargetPrefix,
		CreatedIDs:     []string{},
		OverwrittenIDs: []string{},
		SkippedIDs:     []string{},
		InvalidIDs:     []string{},
		FailedIDs:      []string{},
		Plan:           &plan,
	}

	for index, entry := range plan.Entries {
		id := entry.ID
		if id == "" {
			id = fmt.Sprintf("#%d", entry.Index+1)
		}

		switch outcomes[index] {
		case outcomeCreated:
			summary.Created++
			summary.CreatedIDs = append(summary.CreatedIDs, id)
		case outcomeOverwritten:
			summary.Overwritten++
			summary.OverwrittenIDs = append(summary.OverwrittenIDs, id)
		case outcomeSkipped:
			summary.Skipped++
			summary.SkippedIDs = append(summary.SkippedIDs, id)
		case outcomeInvalid:
			summary.Invalid++
			summary.InvalidIDs = append(summary.InvalidIDs, id)
		case outcomeFailed:
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, id)
		}
	}

	return summary, nil
}

// writeRecord stores one record at its target key. Normalized writes upgrade
// the record to the canonical shape and stamp updatedAt; raw writes reproduce
// the uploaded object verbatim and are only reachable in a sandbox.
func (s *serviceImpl) writeRecord(ctx context.Context, key string, raw schema.RawRecord, normalize bool, nowStamp string) error {
	if !normalize {
		if err := s.repo.PutRaw(ctx, key, raw); err != nil {
			return fmt.Errorf("raw write failed: %w", err)
		}

		return nil
	}

	rec, err := schema.Normalize(raw, timezone.Now())
	if err != nil {
		return fmt.Errorf("normalization failed: %w", err)
	}

	rec.UpdatedAt = nowStamp
	if rec.CreatedAt == "" {
		rec.CreatedAt = nowStamp
	}

	if err := s.repo.Put(ctx, key, rec); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	return nil
}
