package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"resort/config"
	"resort/infras/mailer"
	mailerMocks "resort/infras/mailer/mocks"
	"resort/infras/otel/mocks"
	inquiryMocks "resort/internal/domains/inquiry/mocks"
	"resort/internal/domains/inquiry/model"
	"resort/internal/domains/inquiry/model/dto"
	"resort/internal/domains/inquiry/service"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/failure"
)

type fixture struct {
	repo   *inquiryMocks.MockInquiry
	mailer *mailerMocks.MockMailer
	svc    service.Inquiry
}

func newFixture(t *testing.T, inbox string) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:   inquiryMocks.NewMockInquiry(ctrl),
		mailer: mailerMocks.NewMockMailer(ctrl),
	}

	cfg := &config.Config{}
	cfg.External.SMTP.From = inbox

	f.svc = service.New(f.repo, f.mailer, cfg, mocks.NewOtel())

	return f
}

func TestInquiryService_Create(t *testing.T) {
	req := dto.CreateInquiryRequest{Name: " Priya ", Email: "Priya@Example.com", Message: "Do you host weddings?"}

	t.Run("stores unread and forwards", func(t *testing.T) {
		f := newFixture(t, "stay@vintagevalley.example")
		sent := make(chan mailer.Mail, 1)

		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inquiry model.Inquiry) error {
				assert.Equal(t, model.StatusUnread, inquiry.Status)
				assert.Equal(t, "Priya", inquiry.Name)
				assert.Equal(t, "priya@example.com", inquiry.Email)
				assert.Equal(t, constant.ContextGuest, inquiry.CreatedBy)

				return nil
			})
		f.mailer.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, message mailer.Mail) error {
				sent <- message

				return nil
			})

		res, err := f.svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.NotEmpty(t, res.ID)

		select {
		case message := <-sent:
			assert.Equal(t, []string{"stay@vintagevalley.example"}, message.To)
			assert.Contains(t, message.Body, "Do you host weddings?")
		case <-time.After(time.Second):
			t.Fatal("inquiry was not forwarded")
		}
	})

	t.Run("no inbox configured", func(t *testing.T) {
		f := newFixture(t, "")
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.Create(context.Background(), req)
		require.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		f := newFixture(t, "")
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		_, err := f.svc.Create(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestInquiryService_GetAll(t *testing.T) {
	f := newFixture(t, "")

	filter := gDto.FilterGroup{Filters: []any{
		gDto.Filter{Field: model.FieldStatus, Value: model.StatusUnread, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	}}

	f.repo.EXPECT().Count(gomock.Any(), filter).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), filter).Return([]model.Inquiry{{ID: "i1", Status: model.StatusUnread}}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Limit: 10}, filter)
	require.NoError(t, err)
	assert.Len(t, res.Inquiries, 1)
	assert.Equal(t, 1, res.TotalPage)
}

func TestInquiryService_Get(t *testing.T) {
	f := newFixture(t, "")

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Inquiry{}, nil)

	_, err := f.svc.Get(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Inquiry{ID: "i1", Name: "Priya"}, nil)

	res, err := f.svc.Get(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, "Priya", res.Name)
}

func TestInquiryService_MarkRead(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "success",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, model.StatusRead, fields[model.FieldStatus])
						assert.Equal(t, "staff-id", fields[constant.FieldModifiedBy])

						return nil
					})
			},
		},
		{
			name: "not found",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "update error",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			tt.setupMock(f)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-id")

			err := f.svc.MarkRead(ctx, "i1")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestInquiryService_Delete(t *testing.T) {
	f := newFixture(t, "")

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(f.svc.Delete(context.Background(), "i1")))

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, f.svc.Delete(context.Background(), "i1"))
}
