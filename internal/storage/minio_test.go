package storage

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestMapMinioError(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	assert.ErrorIs(t, mapMinioError("k", missing), ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	err := mapMinioError("k", denied)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), `object "k"`)
}

func TestCreateOptionsAreConditional(t *testing.T) {
	opts := createOptions("video/mp4")
	assert.Equal(t, "*", opts.Header().Get("If-None-Match"))
	assert.Equal(t, "video/mp4", opts.ContentType)
}

func TestMapPutError(t *testing.T) {
	lost := minio.ErrorResponse{Code: "PreconditionFailed", StatusCode: http.StatusPreconditionFailed}
	assert.ErrorIs(t, mapPutError("k", lost), ErrExists)

	other := minio.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError}
	err := mapPutError("k", other)
	assert.False(t, errors.Is(err, ErrExists))
	assert.Contains(t, err.Error(), `put object "k"`)
}
