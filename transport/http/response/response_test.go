package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/shared/constant"
	"resort/shared/failure"
	"resort/transport/http/response"
)

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	var body envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func TestWithJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithJSON(recorder, http.StatusCreated, map[string]int{"nights": 2})

	body := decode(t, recorder)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.True(t, body.OK)
	assert.JSONEq(t, `{"nights":2}`, string(body.Data))
	assert.Nil(t, body.Error)
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "tagged failure",
			env:      constant.ServerEnvProduction,
			err:      failure.NotFound("booking not found"),
			wantCode: http.StatusNotFound,
			wantMsg:  "booking not found",
		},
		{
			name:     "internal error shown in development",
			env:      constant.ServerEnvDevelopment,
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "pq: connection refused",
		},
		{
			name:     "internal error hidden in production",
			env:      constant.ServerEnvProduction,
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  constant.ResponseErrorInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response.SetEnvironment(tt.env)
			t.Cleanup(func() { response.SetEnvironment(constant.ServerEnvDevelopment) })

			recorder := httptest.NewRecorder()
			response.WithError(recorder, tt.err)

			body := decode(t, recorder)
			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.False(t, body.OK)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}

func TestWithFile(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithFile(recorder, constant.ContentTypePDF, "invoice.pdf", []byte("%PDF-1.3"))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, constant.ContentTypePDF, recorder.Header().Get(constant.RequestHeaderContentType))
	assert.Contains(t, recorder.Header().Get(constant.RequestHeaderDisposition), "invoice.pdf")
	assert.Equal(t, "8", recorder.Header().Get(constant.RequestHeaderContentLength))
	assert.Equal(t, "%PDF-1.3", recorder.Body.String())
}
