package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"innkeeper/infras/objstore"
	objstoreMocks "innkeeper/infras/objstore/mocks"
	otelMocks "innkeeper/infras/otel/mocks"
	"innkeeper/internal/domains/reservation/model"
	"innkeeper/internal/domains/reservation/repository"
	"innkeeper/internal/domains/reservation/schema"
)

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "acme/reservations/", repository.DefaultPrefix("acme"))
	assert.Equal(t, "acme/restore-sandbox/sb-1/reservations/", repository.SandboxPrefix("acme", "sb-1"))
	assert.Equal(t, "acme/reservations/r1.json", repository.KeyFor(repository.DefaultPrefix("acme"), "r1"))
	assert.Equal(t, "acme/restore-sandbox/sb-1/reservations/r1.json", repository.KeyFor(repository.SandboxPrefix("acme", "sb-1"), "r1"))
}

func TestRepository_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := objstoreMocks.NewMockObjectStore(ctrl)
	repo := repository.New(mockStore, otelMocks.NewOtel())

	t.Run("legacy object is upgraded on read", func(t *testing.T) {
		mockStore.EXPECT().
			Get(gomock.Any(), "acme/reservations/r1.json").
			Return([]byte(`{"id":"r1","guestName":"Ana","checkIn":"2025-06-01","checkOut":"2025-06-02","notes":"vip"}`), nil)

		rec, err := repo.Get(context.Background(), "acme/reservations/r1.json")

		require.NoError(t, err)
		assert.Equal(t, "r1", rec.ID)
		assert.Equal(t, model.SchemaVersionCurrent, rec.SchemaVersion)
		assert.Equal(t, "vip", rec.NotesInternal)
		require.NotNil(t, rec.ImportMeta)
	})

	t.Run("missing object surfaces sentinel", func(t *testing.T) {
		mockStore.EXPECT().
			Get(gomock.Any(), "acme/reservations/gone.json").
			Return(nil, objstore.ErrNotFound)

		_, err := repo.Get(context.Background(), "acme/reservations/gone.json")

		require.Error(t, err)
		assert.True(t, errors.Is(err, objstore.ErrNotFound))
	})

	t.Run("non-object body rejected", func(t *testing.T) {
		mockStore.EXPECT().
			Get(gomock.Any(), "acme/reservations/bad.json").
			Return([]byte(`null`), nil)

		_, err := repo.GetRaw(context.Background(), "acme/reservations/bad.json")

		assert.Error(t, err)
	})
}

func TestRepository_PutRaw_PreservesBytes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := objstoreMocks.NewMockObjectStore(ctrl)
	repo := repository.New(mockStore, otelMocks.NewOtel())

	raw := schema.RawRecord{
		"id":     []byte(`"r1"`),
		"custom": []byte(`{"deep":[1,2,3]}`),
	}

	var stored []byte
	mockStore.EXPECT().
		Put(gomock.Any(), "acme/reservations/r1.json", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, body []byte) error {
			stored = body

			return nil
		})

	require.NoError(t, repo.PutRaw(context.Background(), "acme/reservations/r1.json", raw))

	assert.Contains(t, string(stored), `"custom":{"deep":[1,2,3]}`)
}

func TestRepository_ListAllKeys_Pagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := objstoreMocks.NewMockObjectStore(ctrl)
	repo := repository.New(mockStore, otelMocks.NewOtel())

	pageOne := make([]string, 1000)
	for i := range pageOne {
		pageOne[i] = fmt.Sprintf("acme/reservations/a-%04d.json", i)
	}

	pageTwo := make([]string, 500)
	for i := range pageTwo {
		pageTwo[i] = fmt.Sprintf("acme/reservations/b-%04d.json", i)
	}

	pageThree := []string{"acme/reservations/c-0000.json"}

	gomock.InOrder(
		mockStore.EXPECT().
			ListPage(gomock.Any(), "acme/reservations/", "").
			Return(pageOne, "token-1", nil),
		mockStore.EXPECT().
			ListPage(gomock.Any(), "acme/reservations/", "token-1").
			Return(pageTwo, "token-2", nil),
		mockStore.EXPECT().
			ListPage(gomock.Any(), "acme/reservations/", "token-2").
			Return(pageThree, "", nil),
	)

	keys, err := repo.ListAllKeys(context.Background(), "acme/reservations/")

	require.NoError(t, err)
	require.Len(t, keys, 1501)
	assert.Equal(t, pageOne[0], keys[0])
	assert.Equal(t, pageThree[0], keys[1500])
}

func TestRepository_ListAllKeys_PageBoundaries(t *testing.T) {
	fullPage := make([]string, 1000)
	for i := range fullPage {
		fullPage[i] = fmt.Sprintf("acme/reservations/a-%04d.json", i)
	}

	t.Run("exactly one full page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := objstoreMocks.NewMockObjectStore(ctrl)
		repo := repository.New(mockStore, otelMocks.NewOtel())

		mockStore.EXPECT().
			ListPage(gomock.Any(), "acme/reservations/", "").
			Return(fullPage, "", nil)

		keys, err := repo.ListAllKeys(context.Background(), "acme/reservations/")

		require.NoError(t, err)
		assert.Len(t, keys, 1000)
	})

	t.Run("one key past the page size", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := objstoreMocks.NewMockObjectStore(ctrl)
		repo := repository.New(mockStore, otelMocks.NewOtel())

		gomock.InOrder(
			mockStore.EXPECT().
				ListPage(gomock.Any(), "acme/reservations/", "").
				Return(fullPage, "token-1", nil),
			mockStore.EXPECT().
				ListPage(gomock.Any(), "acme/reservations/", "token-1").
				Return([]string{"acme/reservations/b-0000.json"}, "", nil),
		)

		keys, err := repo.ListAllKeys(context.Background(), "acme/reservations/")

		require.NoError(t, err)
		require.Len(t, keys, 1001)
		assert.Equal(t, "acme/reservations/b-0000.json", keys[1000])
	})
}

func TestRepository_ListAllKeys_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := objstoreMocks.NewMockObjectStore(ctrl)
	repo := repository.New(mockStore, otelMocks.NewOtel())

	mockStore.EXPECT().
		ListPage(gomock.Any(), "acme/reservations/", "").
		Return([]string{}, "", nil)

	keys, err := repo.ListAllKeys(context.Background(), "acme/reservations/")

	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRepository_ListAllKeys_PageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := objstoreMocks.NewMockObjectStore(ctrl)
	repo := repository.New(mockStore, otelMocks.NewOtel())

	gomock.InOrder(
		mockStore.EXPECT().
			ListPage(gomock.Any(), "acme/reservations/", "").
			Return([]string{"acme/reservations/a.json"}, "token-1", nil),
		mockStore.EXPECT().
			ListPage(gomock.Any(), "acme/reservations/", "token-1").
			Return(nil, "", errors.New("listing failed")),
	)

	_, err := repo.ListAllKeys(context.Background(), "acme/reservations/")

	assert.Error(t, err)
}
