package s3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resort/config"
	"resort/infras/otel/mocks"
	"resort/infras/s3"
)

func TestKeyFromURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.S3.APIEndpoint = "https://acc.r2.cloudflarestorage.com/"
	cfg.External.S3.PublicDomain = "https://media.vintagevalley.in/"
	cfg.External.S3.BucketName = "resort"

	store := s3.New(cfg, mocks.NewOtel())

	tests := map[string]string{
		"https://media.vintagevalley.in/room/a1.jpg":                    "room/a1.jpg",
		"https://acc.r2.cloudflarestorage.com/resort/room/b2.png":       "room/b2.png",
		"https://media.vintagevalley.in/":                               "",
		"https://elsewhere.example.com/room/a1.jpg":                     "",
		"https://acc.r2.cloudflarestorage.com/other-bucket/room/c3.png": "",
	}

	for url, want := range tests {
		assert.Equal(t, want, store.KeyFromURL(url), url)
	}
}
