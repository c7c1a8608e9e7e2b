package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"innkeeper/config"
	"innkeeper/infras/objstore"
	"innkeeper/infras/otel/mocks"
	reservationMocks "innkeeper/internal/domains/reservation/mocks"
	"innkeeper/internal/domains/reservation/model"
	"innkeeper/internal/domains/reservation/model/dto"
	"innkeeper/internal/domains/reservation/service"
	cacheMocks "innkeeper/shared/cache/mocks"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 300
	cfg.App.BulkFanOut = 4

	return cfg
}

func tenantContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyTenantID, "acme")
}

func TestReservationService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := reservationMocks.NewMockReservation(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CreateReservationRequest
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful creation",
			ctx:  tenantContext(),
			req: dto.CreateReservationRequest{
				GuestName: "Ana",
				PartySize: 2,
				CheckIn:   "2025-06-01",
				CheckOut:  "2025-06-03",
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Put(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "storage error",
			ctx:  tenantContext(),
			req: dto.CreateReservationRequest{
				GuestName: "Ana",
				PartySize: 2,
				CheckIn:   "2025-06-01",
				CheckOut:  "2025-06-03",
			},
			setupMock: func() {
				mockRepo.EXPECT().
					Put(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("storage error"))
			},
			wantErr: true,
		},
		{
			name:      "missing tenant",
			ctx:       context.Background(),
			req:       dto.CreateReservationRequest{GuestName: "Ana"},
			setupMock: func() {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			rec, err := svc.Create(tt.ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, rec.ID)
				assert.Equal(t, model.SchemaVersionCurrent, rec.SchemaVersion)
				assert.Equal(t, 2, rec.TotalNights)
			}
		})
	}
}

func TestReservationService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := reservationMocks.NewMockReservation(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	tests := []struct {
		name      string
		id        string
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "cache hit",
			id:   "r1",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "cache miss, fetch from storage",
			id:   "r1",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), "acme/reservations/r1.json").
					Return(model.ReservationRecord{ID: "r1"}, nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "missing record maps to not found",
			id:   "gone",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), "acme/reservations/gone.json").
					Return(model.ReservationRecord{}, objstore.ErrNotFound)
			},
			wantErr:  true,
			wantCode: 404,
		},
		{
			name: "storage error",
			id:   "r1",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.ReservationRecord{}, errors.New("storage error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			_, err := svc.Get(tenantContext(), tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReservationService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := reservationMocks.NewMockReservation(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	mockCache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss"))

	mockRepo.EXPECT().
		ListAllKeys(gomock.Any(), "acme/reservations/").
		Return([]string{
			"acme/reservations/r1.json",
			"acme/reservations/r2.json",
		}, nil)

	mockRepo.EXPECT().
		Get(gomock.Any(), "acme/reservations/r1.json").
		Return(model.ReservationRecord{ID: "r1", CheckIn: "2025-08-01"}, nil)

	mockRepo.EXPECT().
		Get(gomock.Any(), "acme/reservations/r2.json").
		Return(model.ReservationRecord{ID: "r2", CheckIn: "2025-06-01"}, nil)

	mockCache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	res, err := svc.GetAll(tenantContext())

	assert.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	// Sorted by check-in date, not key order.
	assert.Equal(t, "r2", res.Reservations[0].ID)
	assert.Equal(t, "r1", res.Reservations[1].ID)
}

func TestReservationService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := reservationMocks.NewMockReservation(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	newName := "Ben"

	tests := []struct {
		name      string
		id        string
		req       dto.UpdateReservationRequest
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful update",
			id:   "r1",
			req:  dto.UpdateReservationRequest{GuestName: &newName},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), "acme/reservations/r1.json").
					Return(model.ReservationRecord{ID: "r1", CheckIn: "2025-06-01", CheckOut: "2025-06-02"}, nil)

				mockRepo.EXPECT().
					Put(gomock.Any(), "acme/reservations/r1.json", gomock.Any()).
					Return(nil)

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "record not found",
			id:   "gone",
			req:  dto.UpdateReservationRequest{GuestName: &newName},
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), "acme/reservations/gone.json").
					Return(model.ReservationRecord{}, objstore.ErrNotFound)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			rec, err := svc.Update(tenantContext(), tt.id, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Ben", rec.GuestName)
				assert.NotEmpty(t, rec.UpdatedAt)
			}
		})
	}
}

func TestReservationService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := reservationMocks.NewMockReservation(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	tests := []struct {
		name      string
		id        string
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful deletion",
			id:   "r1",
			setupMock: func() {
				mockRepo.EXPECT().
					Exists(gomock.Any(), "acme/reservations/r1.json").
					Return(true, nil)

				mockRepo.EXPECT().
					Delete(gomock.Any(), "acme/reservations/r1.json").
					Return(nil)

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "record not found",
			id:   "gone",
			setupMock: func() {
				mockRepo.EXPECT().
					Exists(gomock.Any(), "acme/reservations/gone.json").
					Return(false, nil)
			},
			wantErr:  true,
			wantCode: 404,
		},
		{
			name: "existence check error",
			id:   "r1",
			setupMock: func() {
				mockRepo.EXPECT().
					Exists(gomock.Any(), gomock.Any()).
					Return(false, errors.New("storage error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.Delete(tenantContext(), tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
