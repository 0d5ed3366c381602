// Package validator decodes request bodies and checks them against `validate` struct tags.
// https://github.com/go-playground/validator
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"resort/shared/constant"
	"resort/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const megabyte = 1 << 20

var validate = newValidate()

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	for tag, fn := range map[string]val.Func{
		"mimetypes":   mimeTypes,
		"maxfilesize": maxFileSize,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	return v
}

// mimeTypes accepts an uploaded file or a base64 data URI whose type is listed in the param.
func mimeTypes(field val.FieldLevel) bool {
	var contentType string

	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		contentType = value.Header.Get(constant.RequestHeaderContentType)
	case string:
		contentType = dataURIType(value)
	}

	if contentType == constant.Empty {
		return false
	}

	return slices.Contains(strings.Fields(field.Param()), contentType)
}

// maxFileSize takes its limit in megabytes.
func maxFileSize(field val.FieldLevel) bool {
	limit, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	var size int64

	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		size = value.Size
	case string:
		size = int64(len(value))
	}

	return size <= int64(limit*megabyte)
}

func dataURIType(uri string) string {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return constant.Empty
	}

	contentType, _, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return constant.Empty
	}

	return contentType
}

// jsonName reports fields by their json key so messages match the request body.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}

	return name
}

// Validate decodes r into data and runs ValidateStruct on it.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
