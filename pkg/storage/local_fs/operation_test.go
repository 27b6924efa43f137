package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_SendContentAndDelete(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(&Config{SavePath: t.TempDir()})
	require.NoError(t, err)

	// Test with a subdirectory to ensure SendContent creates directories
	// 子目录会自动创建
	key := "202401/01/image.png"
	require.NoError(t, client.SendContent(ctx, key, []byte("png"), "image/png"))

	dst, err := client.Path(key)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))
	_, err = os.Stat(dst + ".tmp")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, client.SendContent(ctx, key, []byte("png2"), "image/png"))
	got, _ = os.ReadFile(dst)
	assert.Equal(t, "png2", string(got))

	require.NoError(t, client.Delete(ctx, key))
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
	// 删除不存在的文件不是错误
	assert.NoError(t, client.Delete(ctx, key))
}

func TestLocalFS_RejectsEscapingKeys(t *testing.T) {
	dir := t.TempDir()
	client, err := NewClient(&Config{SavePath: dir})
	require.NoError(t, err)

	for _, key := range []string{"", "/", "../outside.png", "a/../../b.png"} {
		assert.Error(t, client.SendContent(context.Background(), key, []byte("x"), ""), key)
	}
	p, err := client.Path("/abs/name.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abs", "name.png"), p)

	_, err = NewClient(&Config{})
	assert.Error(t, err)
}
