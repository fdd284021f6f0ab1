package s3store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestUpload(t *testing.T) {
	fp := &fakePutter{}
	s := newStore(fp, Config{BucketPrefix: "mm-"})

	err := s.Upload(context.Background(), "videos", "owner/clip.mp4", strings.NewReader("data"), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "mm-videos", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "owner/clip.mp4", aws.ToString(fp.in.Key))
	assert.Equal(t, "video/mp4", aws.ToString(fp.in.ContentType))
	assert.Equal(t, "data", fp.body)
}

func TestUpload_Error(t *testing.T) {
	s := newStore(&fakePutter{err: errors.New("denied")}, Config{})

	err := s.Upload(context.Background(), "covers", "a.png", strings.NewReader(""), "image/png")
	assert.ErrorContains(t, err, "denied")
}

func TestPublicURL(t *testing.T) {
	s := newStore(&fakePutter{}, Config{BucketPrefix: "mm-", PublicBaseURL: "https://cdn.example/"})

	assert.Equal(t, "https://cdn.example/mm-tracks/owner/a%20b.mp3", s.PublicURL("tracks", "owner/a b.mp3"))
}
