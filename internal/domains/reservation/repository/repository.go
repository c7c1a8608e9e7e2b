package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"

	"innkeeper/infras/objstore"
	"innkeeper/infras/otel"
	"innkeeper/internal/domains/reservation/model"
	"innkeeper/internal/domains/reservation/schema"
	"innkeeper/shared/constant"
	"innkeeper/shared/timezone"
)

// Reservation persists one JSON object per record under a tenant-scoped key.
// The backend offers only per-key get/put/delete/list, so there is no
// multi-key atomicity; concurrent writers race last-write-wins per key.
type Reservation interface {
	Get(ctx context.Context, key string) (model.ReservationRecord, error)
	GetRaw(ctx context.Context, key string) (schema.RawRecord, error)
	Put(ctx context.Context, key string, rec model.ReservationRecord) error
	PutRaw(ctx context.Context, key string, raw schema.RawRecord) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	ListAllKeys(ctx context.Context, prefix string) ([]string, error)
}

type repositoryImpl struct {
	store objstore.ObjectStore
	otel  otel.Otel
}

func New(store objstore.ObjectStore, otel otel.Otel) Reservation {
	return &repositoryImpl{
		store: store,
		otel:  otel,
	}
}

// Get fetches and decodes one record, upgrading a legacy object to the
// canonical shape for the caller. The stored object is never rewritten here.
func (r *repositoryImpl) Get(ctx context.Context, key string) (rec model.ReservationRecord, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	raw, err := r.GetRaw(ctx, key)
	if err != nil {
		return rec, err
	}

	rec, err = schema.Normalize(raw, timezone.Now())
	if err != nil {
		return rec, fmt.Errorf("failed to normalize record at %q: %w", key, err)
	}

	return rec, nil
}

func (r *repositoryImpl) GetRaw(ctx context.Context, key string) (raw schema.RawRecord, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetRaw")
	defer scope.End()
	defer scope.TraceIfError(err)

	body, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record at %q: %w", key, err)
	}

	if err = json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode record at %q: %w", key, err)
	}

	if raw == nil {
		return nil, fmt.Errorf("record at %q is not a JSON object", key)
	}

	return raw, nil
}

func (r *repositoryImpl) Put(ctx context.Context, key string, rec model.ReservationRecord) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Put")
	defer scope.End()
	defer scope.TraceIfError(err)

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record for %q: %w", key, err)
	}

	if err = r.store.Put(ctx, key, body); err != nil {
		return fmt.Errorf("failed to store record at %q: %w", key, err)
	}

	return nil
}

// PutRaw writes the open field map verbatim, preserving unknown field values
// byte for byte.
func (r *repositoryImpl) PutRaw(ctx context.Context, key string, raw schema.RawRecord) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".PutRaw")
	defer scope.End()
	defer scope.TraceIfError(err)

	body, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode raw record for %q: %w", key, err)
	}

	if err = r.store.Put(ctx, key, body); err != nil {
		return fmt.Errorf("failed to store raw record at %q: %w", key, err)
	}

	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete record at %q: %w", key, err)
	}

	return nil
}

func (r *repositoryImpl) Exists(ctx context.Context, key string) (exists bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Exists")
	defer scope.End()
	defer scope.TraceIfError(err)

	exists, err = r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check record at %q: %w", key, err)
	}

	return exists, nil
}

// ListAllKeys follows continuation tokens until the listing is exhausted.
// Pagination is inherently sequential: each page depends on the previous
// page's token, so this loop must not be parallelized.
func (r *repositoryImpl) ListAllKeys(ctx context.Context, prefix string) (keys []string, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".ListAllKeys")
	defer scope.End()
	defer scope.TraceIfError(err)

	keys = []string{}
	token := ""

	for {
		page, nextToken, err := r.store.ListPage(ctx, prefix, token)
		if err != nil {
			return nil, fmt.Errorf("failed to list keys under %q: %w", prefix, err)
		}

		keys = append(keys, page...)

		if nextToken == "" {
			return keys, nil
		}

		token = nextToken
	}
}
