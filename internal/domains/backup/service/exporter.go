package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"innkeeper/internal/domains/backup/model/dto"
	"innkeeper/internal/domains/reservation/model"
	"innkeeper/internal/domains/reservation/repository"
	"innkeeper/internal/domains/reservation/schema"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
	"innkeeper/shared/timezone"
)

// csvHeader is the fixed, flattened column projection for spreadsheet
// consumption. Deliberately lossy; full fidelity comes from raw NDJSON.
var csvHeader = []string{
	"id",
	"status",
	"guestName",
	"partySize",
	"checkIn",
	"checkOut",
	"roomCount",
	"nightlyRate",
	"breakfastIncluded",
	"breakfastPerPersonRate",
	"totalNights",
	"totalPrice",
	"depositDue",
	"depositPaid",
	"paymentCount",
	"notesInternal",
	"notesGuest",
	"reviewState",
	"createdAt",
	"updatedAt",
}

type exportEntry struct {
	Key string
	Raw schema.RawRecord
}

// exportAll lists every key under the prefix and fetches each object. A fetch
// or decode failure for one key is recorded and that key skipped; the export
// as a whole still succeeds with every other record.
func (s *serviceImpl) exportAll(ctx context.Context, prefix string) (entries []exportEntry, stats dto.ExportStats, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".exportAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	keys, err := s.repo.ListAllKeys(ctx, prefix)
	if err != nil {
		return nil, stats, failure.InternalError(fmt.Errorf("failed to list records for export: %w", err)) //nolint:wrapcheck
	}

	fetched := make([]schema.RawRecord, len(keys))

	var mu sync.Mutex
	failedKeys := []string{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.App.BulkFanOut)

	for index, key := range keys {
		group.Go(func() error {
			raw, err := s.repo.GetRaw(groupCtx, key)
			if err != nil {
				// A permission failure means the whole prefix is suspect;
				// reporting it as one more failed key would claim an export
				// that silently dropped items.
				if failure.IsStorageAuth(err) {
					return err
				}

				log.Error().Err(err).Str("key", key).Msg("failed to export record, skipping")

				mu.Lock()
				failedKeys = append(failedKeys, key)
				mu.Unlock()

				return nil
			}

			fetched[index] = raw

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return nil, stats, err
	}

	sort.Strings(failedKeys)

	entries = make([]exportEntry, 0, len(keys))
	for index, raw := range fetched {
		if raw == nil {
			continue
		}

		entries = append(entries, exportEntry{Key: keys[index], Raw: raw})
	}

	stats = dto.ExportStats{
		ExportedCount: len(entries),
		KeyCount:      len(keys),
		FailedKeys:    failedKeys,
	}

	return entries, stats, nil
}

// ExportNDJSON serializes the tenant's full record set, one JSON object per
// line. The raw variant reproduces unknown field values verbatim so that an
// export and restore round trip is lossless; the normalized variant upgrades
// every record to the canonical shape without touching stored objects.
func (s *serviceImpl) ExportNDJSON(ctx context.Context, tenantID string, raw bool) (out []byte, stats dto.ExportStats, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExportNDJSON")
	defer scope.End()
	defer scope.TraceIfError(err)

	if tenantID == "" {
		return nil, stats, failure.Unauthorized("missing tenant identity") //nolint:wrapcheck
	}

	entries, stats, err := s.exportAll(ctx, repository.DefaultPrefix(tenantID))
	if err != nil {
		return nil, stats, err
	}

	now := timezone.Now()

	var buf bytes.Buffer
	for _, entry := range entries {
		line, err := s.encodeEntry(entry, raw, now)
		if err != nil {
			log.Error().Err(err).Str("key", entry.Key).Msg("failed to serialize record, skipping")

			stats.ExportedCount--
			stats.FailedKeys = append(stats.FailedKeys, entry.Key)

			continue
		}

		buf.Write(line)
		buf.WriteByte('\n')
	}

	s.publishEvent(ctx, dto.OperationEvent{
		TenantID:  tenantID,
		Operation: operationExport,
		At:        now.Format(constant.TimestampFormat),
		Detail:    stats,
	})

	return buf.Bytes(), stats, nil
}

func (s *serviceImpl) encodeEntry(entry exportEntry, raw bool, now time.Time) ([]byte, error) {
	if raw {
		return json.Marshal(entry.Raw)
	}

	rec, err := schema.Normalize(entry.Raw, now)
	if err != nil {
		return nil, err
	}

	return json.Marshal(rec)
}

// ExportCSV serializes the tenant's records as a flat canonical projection.
func (s *serviceImpl) ExportCSV(ctx context.Context, tenantID string) (out []byte, stats dto.ExportStats, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExportCSV")
	defer scope.End()
	defer scope.TraceIfError(err)

	if tenantID == "" {
		return nil, stats, failure.Unauthorized("missing tenant identity") //nolint:wrapcheck
	}

	entries, stats, err := s.exportAll(ctx, repository.DefaultPrefix(tenantID))
	if err != nil {
		return nil, stats, err
	}

	now := timezone.Now()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err = writer.Write(csvHeader); err != nil {
		return nil, stats, failure.InternalError(fmt.Errorf("failed to write CSV header: %w", err)) //nolint:wrapcheck
	}

	for _, entry := range entries {
		rec, err := schema.Normalize(entry.Raw, now)
		if err != nil {
			log.Error().Err(err).Str("key", entry.Key).Msg("failed to normalize record for CSV, skipping")

			stats.ExportedCount--
			stats.FailedKeys = append(stats.FailedKeys, entry.Key)

			continue
		}

		if err = writer.Write(csvRow(rec)); err != nil {
			return nil, stats, failure.InternalError(fmt.Errorf("failed to write CSV row: %w", err)) //nolint:wrapcheck
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return nil, stats, failure.InternalError(fmt.Errorf("failed to flush CSV: %w", err)) //nolint:wrapcheck
	}

	s.publishEvent(ctx, dto.OperationEvent{
		TenantID:  tenantID,
		Operation: operationExport,
		At:        now.Format(constant.TimestampFormat),
		Detail:    stats,
	})

	return buf.Bytes(), stats, nil
}

func csvRow(rec model.ReservationRecord) []string {
	depositDue := ""
	depositPaid := ""
	if rec.Payment.Deposit != nil {
		depositDue = formatFloat(rec.Payment.Deposit.Due)
		depositPaid = strconv.FormatBool(rec.Payment.Deposit.Paid)
	}

	reviewState := ""
	if rec.Review != nil {
		reviewState = string(rec.Review.State)
	}

	return []string{
		rec.ID,
		string(rec.Status),
		rec.GuestName,
		strconv.Itoa(rec.PartySize),
		rec.CheckIn,
		rec.CheckOut,
		strconv.Itoa(rec.RoomCount),
		formatFloat(rec.NightlyRate),
		strconv.FormatBool(rec.Breakfast.Included),
		formatFloat(rec.Breakfast.PerPersonRate),
		strconv.Itoa(rec.TotalNights),
		formatFloat(rec.TotalPrice),
		depositDue,
		depositPaid,
		strconv.Itoa(len(rec.Payment.Events)),
		rec.NotesInternal,
		rec.NotesGuest,
		reviewState,
		rec.CreatedAt,
		rec.UpdatedAt,
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
