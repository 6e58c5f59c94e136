package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dias221467/shadowmeet/internal/config"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	putter := &fakePutter{}
	store := &S3Store{client: putter, bucket: "avatars", publicURL: "http://cdn.local/avatars"}

	url, err := store.Put(context.Background(), "avatars/2026/01/02/x.png", "image/png", []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, "http://cdn.local/avatars/avatars/2026/01/02/x.png", url)
	assert.Equal(t, "avatars", aws.ToString(putter.in.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.in.ContentType))
	assert.Equal(t, []byte("png"), putter.body)
}

func TestS3StorePutError(t *testing.T) {
	store := &S3Store{client: &fakePutter{err: errors.New("boom")}, bucket: "b", publicURL: "http://x"}

	_, err := store.Put(context.Background(), "k", "image/png", nil)
	assert.Error(t, err)
}

func TestS3StoreNotConfigured(t *testing.T) {
	var store *S3Store
	_, err := store.Put(context.Background(), "k", "image/png", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.S3Config
		want string
	}{
		{"explicit", config.S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
		{"minio", config.S3Config{Bucket: "b", Endpoint: "http://localhost:9000"}, "http://localhost:9000/b"},
		{"aws", config.S3Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg))
		})
	}
}
