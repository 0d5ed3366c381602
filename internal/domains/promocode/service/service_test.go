package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"resort/infras/otel/mocks"
	promoMocks "resort/internal/domains/promocode/mocks"
	"resort/internal/domains/promocode/model"
	"resort/internal/domains/promocode/model/dto"
	"resort/internal/domains/promocode/service"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
)

func ptr[T any](v T) *T {
	return &v
}

func TestPromoCodeService_ValidateForBaseAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := promoMocks.NewMockPromoCode(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name       string
		code       string
		baseAmount float64
		promo      *model.PromoCode
		want       float64
		wantErr    error
	}{
		{
			name:       "percent discount",
			code:       " save10 ",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "SAVE10", Type: model.TypePercent, Value: 10, IsActive: true},
			want:       100,
		},
		{
			name:       "percent 100 equals base",
			code:       "FREE",
			baseAmount: 1234.56,
			promo:      &model.PromoCode{ID: "p1", Code: "FREE", Type: model.TypePercent, Value: 100, IsActive: true},
			want:       1234.56,
		},
		{
			name:       "flat discount above base is clamped",
			code:       "FLAT2000",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "FLAT2000", Type: model.TypeFlat, Value: 2000, IsActive: true},
			want:       1000,
		},
		{
			name:       "within window and below cap",
			code:       "WINDOW",
			baseAmount: 500,
			promo: &model.PromoCode{
				ID: "p1", Code: "WINDOW", Type: model.TypeFlat, Value: 50, IsActive: true,
				StartsAt: &past, ExpiresAt: &future, MaxUses: ptr(5), UsedCount: 4,
			},
			want: 50,
		},
		{
			name:    "empty code",
			code:    "   ",
			wantErr: service.ErrCodeRequired,
		},
		{
			name:       "negative base amount",
			code:       "SAVE10",
			baseAmount: -1,
			wantErr:    service.ErrInvalidBaseAmount,
		},
		{
			name:       "infinite base amount",
			code:       "SAVE10",
			baseAmount: math.Inf(1),
			wantErr:    service.ErrInvalidBaseAmount,
		},
		{
			name:       "unknown code",
			code:       "NOPE",
			baseAmount: 1000,
			promo:      &model.PromoCode{},
			wantErr:    service.ErrInvalidPromoCode,
		},
		{
			name:       "inactive code",
			code:       "OFF",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "OFF", Type: model.TypeFlat, Value: 10, IsActive: false},
			wantErr:    service.ErrInvalidPromoCode,
		},
		{
			name:       "expired code is rejected even when active",
			code:       "OLD",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "OLD", Type: model.TypeFlat, Value: 10, IsActive: true, ExpiresAt: &past},
			wantErr:    service.ErrInvalidPromoCode,
		},
		{
			name:       "not started yet",
			code:       "SOON",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "SOON", Type: model.TypeFlat, Value: 10, IsActive: true, StartsAt: &future},
			wantErr:    service.ErrInvalidPromoCode,
		},
		{
			name:       "usage cap reached",
			code:       "CAPPED",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "CAPPED", Type: model.TypeFlat, Value: 10, IsActive: true, MaxUses: ptr(3), UsedCount: 3},
			wantErr:    service.ErrInvalidPromoCode,
		},
		{
			name:       "zero cap never redeemable",
			code:       "ZERO",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "ZERO", Type: model.TypeFlat, Value: 10, IsActive: true, MaxUses: ptr(0)},
			wantErr:    service.ErrInvalidPromoCode,
		},
		{
			name:       "non positive stored value",
			code:       "BROKEN",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "BROKEN", Type: model.TypeFlat, Value: 0, IsActive: true},
			wantErr:    service.ErrInvalidPromoCode,
		},
		{
			name:       "unsupported type",
			code:       "BOGO",
			baseAmount: 1000,
			promo:      &model.PromoCode{ID: "p1", Code: "BOGO", Type: "BOGO", Value: 1, IsActive: true},
			wantErr:    service.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.promo != nil {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(*tt.promo, nil)
			}

			got, err := svc.ValidateForBaseAmount(context.Background(), tt.code, tt.baseAmount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Discount)
			assert.Equal(t, tt.promo.ID, got.PromoCodeID)
			assert.InDelta(t, tt.baseAmount-tt.want, got.PayableBase, 0.001)
		})
	}
}

func TestPromoCodeService_ValidateForBaseAmount_Bounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := promoMocks.NewMockPromoCode(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	for _, promoType := range []string{model.TypePercent, model.TypeFlat} {
		for _, value := range []float64{0.01, 1, 10, 50, 99.99, 100} {
			for _, base := range []float64{0, 0.5, 1, 99.99, 1000, 25000.75} {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.PromoCode{ID: "p1", Code: "X", Type: promoType, Value: value, IsActive: true}, nil)

				got, err := svc.ValidateForBaseAmount(context.Background(), "X", base)
				require.NoError(t, err)

				assert.GreaterOrEqual(t, got.Discount, 0.0)
				assert.LessOrEqual(t, got.Discount, base)
			}
		}
	}
}

func TestPromoCodeService_ValidateForBaseAmount_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := promoMocks.NewMockPromoCode(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	mockRepo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(model.PromoCode{}, errors.New("database error"))

	_, err := svc.ValidateForBaseAmount(context.Background(), "X", 100)
	assert.Error(t, err)
	assert.Equal(t, 500, failure.GetCode(err))
}

func TestPromoCodeService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := promoMocks.NewMockPromoCode(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	tests := []struct {
		name      string
		req       dto.CreatePromoCodeRequest
		setupMock func()
		wantCode  int
	}{
		{
			name: "successful creation normalises the code",
			req:  dto.CreatePromoCodeRequest{Code: " summer ", Type: model.TypePercent, Value: 15},
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, promo model.PromoCode) error {
						assert.Equal(t, "SUMMER", promo.Code)
						assert.True(t, promo.IsActive)
						assert.Equal(t, "test-user-id", promo.CreatedBy)

						return nil
					})
			},
		},
		{
			name:      "percent above 100",
			req:       dto.CreatePromoCodeRequest{Code: "BIG", Type: model.TypePercent, Value: 150},
			setupMock: func() {},
			wantCode:  400,
		},
		{
			name:      "window ends before it starts",
			req:       dto.CreatePromoCodeRequest{Code: "WIN", Type: model.TypeFlat, Value: 10, StartsAt: &start, ExpiresAt: &end},
			setupMock: func() {},
			wantCode:  400,
		},
		{
			name: "duplicate code",
			req:  dto.CreatePromoCodeRequest{Code: "SUMMER", Type: model.TypeFlat, Value: 10},
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: 409,
		},
		{
			name: "insert error",
			req:  dto.CreatePromoCodeRequest{Code: "SUMMER", Type: model.TypeFlat, Value: 10},
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			err := svc.Create(ctx, tt.req)

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestPromoCodeService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := promoMocks.NewMockPromoCode(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	current := model.PromoCode{ID: "p1", Code: "SUMMER", Type: model.TypeFlat, Value: 500, IsActive: true}

	tests := []struct {
		name      string
		req       dto.UpdatePromoCodeRequest
		setupMock func()
		wantCode  int
	}{
		{
			name: "deactivate",
			req:  dto.UpdatePromoCodeRequest{IsActive: ptr(false)},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, false, fields[model.FieldIsActive])

						return nil
					})
			},
		},
		{
			name:      "empty request",
			req:       dto.UpdatePromoCodeRequest{},
			setupMock: func() {},
			wantCode:  400,
		},
		{
			name: "switching to percent keeps the stored value in range",
			req:  dto.UpdatePromoCodeRequest{Type: model.TypePercent},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
			},
			wantCode: 400,
		},
		{
			name: "rename to an existing code",
			req:  dto.UpdatePromoCodeRequest{Code: "winter"},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: 409,
		},
		{
			name: "not found",
			req:  dto.UpdatePromoCodeRequest{IsActive: ptr(true)},
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.PromoCode{}, nil)
			},
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.Update(context.Background(), tt.req, "p1")
			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestPromoCodeService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := promoMocks.NewMockPromoCode(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), "p1"))

	mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	assert.Equal(t, 404, failure.GetCode(svc.Delete(context.Background(), "p1")))
}
