package store_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/bindle/apps/server/internal/importer/store"
)

// fakeS3 records PutObject calls in memory.
type fakeS3 struct {
	objects      map[string][]byte
	contentTypes map[string]string
	err          error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	if params.ContentType != nil {
		f.contentTypes[*params.Key] = *params.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Put_StoresObjectAndBuildsURL(t *testing.T) {
	fake := newFakeS3()
	s := store.NewS3ContentStore(fake, "bindle-content", "https://cdn.example/")

	res, err := s.Put(context.Background(), "abc123/readme_01", []byte("# hi"), "text/markdown")
	require.NoError(t, err)

	assert.Equal(t, "abc123/readme_01", res.Key)
	assert.Equal(t, "https://cdn.example/abc123/readme_01", res.URL)
	assert.Equal(t, []byte("# hi"), fake.objects["abc123/readme_01"])
	assert.Equal(t, "text/markdown", fake.contentTypes["abc123/readme_01"])
}

func TestS3Put_RejectsEmptyPayload(t *testing.T) {
	fake := newFakeS3()
	s := store.NewS3ContentStore(fake, "bindle-content", "https://cdn.example")

	_, err := s.Put(context.Background(), "abc123/empty", nil, "text/plain")

	require.ErrorIs(t, err, store.ErrEmptyPayload)
	assert.Empty(t, fake.objects)
}

func TestS3Put_PropagatesClientError(t *testing.T) {
	fake := newFakeS3()
	fake.err = errors.New("access denied")
	s := store.NewS3ContentStore(fake, "bindle-content", "https://cdn.example")

	_, err := s.Put(context.Background(), "abc123/readme", []byte("x"), "text/plain")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
