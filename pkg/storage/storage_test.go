package storage_test

import (
	"testing"

	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/storage"
	"github.com/haierkeys/watermelon-notes/pkg/storage/aws_s3"
	"github.com/haierkeys/watermelon-notes/pkg/storage/local_fs"
	"github.com/haierkeys/watermelon-notes/pkg/storage/webdav"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Backends(t *testing.T) {
	client, err := storage.NewClient(&storage.Config{Type: storage.LOCAL, SavePath: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &local_fs.LocalFS{}, client)

	client, err = storage.NewClient(&storage.Config{Type: storage.WebDAV, Endpoint: "http://127.0.0.1:1"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &webdav.WebDAV{}, client)

	client, err = storage.NewClient(&storage.Config{Type: storage.R2, AccountID: "acc", BucketName: "b", AccessKeyID: "k", AccessKeySecret: "s"}, nil)
	require.NoError(t, err)
	r2 := client.(*aws_s3.S3)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", r2.Config.Endpoint)
	assert.Equal(t, "auto", r2.Config.Region)

	client, err = storage.NewClient(&storage.Config{Type: storage.MinIO, Endpoint: "http://127.0.0.1:9000", Region: "us-east-1", BucketName: "b"}, nil)
	require.NoError(t, err)
	assert.True(t, client.(*aws_s3.S3).Config.UsePathStyle)
}

func TestNewClient_Invalid(t *testing.T) {
	_, err := storage.NewClient(&storage.Config{Type: "invalid"}, nil)
	assert.True(t, code.ErrorInvalidStorageType.Is(err))

	_, err = storage.NewClient(nil, nil)
	assert.Error(t, err)
}

func TestConfig_URL(t *testing.T) {
	local := &storage.Config{Type: storage.LOCAL, IsEnabled: true, HttpfsIsEnable: true}
	assert.Equal(t, "/attachments/2024/a.png", local.URL("2024/a.png"))
	assert.True(t, local.ServesLocal())

	cdn := &storage.Config{Type: storage.S3, IsEnabled: true, CustomPath: "/img/", PublicURL: "https://cdn.example.com/"}
	assert.Equal(t, "https://cdn.example.com/img/2024/a.png", cdn.URL("/2024/a.png"))
	assert.False(t, cdn.ServesLocal())

	bare := &storage.Config{Type: storage.WebDAV, CustomPath: "notes"}
	assert.Equal(t, "notes/a.png", bare.URL("a.png"))
}
