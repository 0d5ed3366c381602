package response

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"sync/atomic"

	"resort/shared/constant"
	"resort/shared/failure"
	"resort/shared/logger"
)

var hideInternal atomic.Bool

// ErrorBody is the error part of the envelope.
type ErrorBody struct {
	Message string `json:"message"`
}

// Envelope wraps every JSON response as {ok, data, error}.
type Envelope[T any] struct {
	OK    bool       `json:"ok"`
	Data  *T         `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// Data documents a successful payload.
type Data[T any] Envelope[T]

// Error documents a failed response.
type Error Envelope[struct{}]

// Message is the payload of responses that only acknowledge an action.
type Message struct {
	Message string `json:"message"`
}

// SetEnvironment hides the message of untagged errors in production.
func SetEnvironment(env string) {
	hideInternal.Store(env == constant.ServerEnvProduction)
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	WithJSON(writer, code, Message{Message: message})
}

func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, Envelope[any]{OK: true, Data: &jsonPayload})
}

// WithError maps err to its failure status. Untagged errors become 500s.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	errMsg := err.Error()

	if code == http.StatusInternalServerError && hideInternal.Load() {
		errMsg = constant.ResponseErrorInternal
	}

	withFailure(writer, code, errMsg)
}

// WithFile sends content as a download named filename.
func WithFile(writer http.ResponseWriter, contentType, filename string, content []byte) {
	header := writer.Header()
	header.Set(constant.RequestHeaderContentType, contentType)
	header.Set(constant.RequestHeaderDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	header.Set(constant.RequestHeaderContentLength, strconv.Itoa(len(content)))
	writer.WriteHeader(http.StatusOK)

	if _, err := writer.Write(content); err != nil {
		logger.ErrorWithStack(err)
	}
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	withFailure(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	withFailure(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	withFailure(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func withFailure(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Envelope[any]{Error: &ErrorBody{Message: message}})
}

// marshalFailure is sent when the payload itself cannot be encoded.
var marshalFailure = []byte(`{"ok":false,"error":{"message":"` + constant.ResponseErrorInternal + `"}}`)

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		code, response = http.StatusInternalServerError, marshalFailure
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
