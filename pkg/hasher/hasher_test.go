package hasher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidHashAlgo(t *testing.T) {
	for _, algo := range HashAlgorithms {
		assert.True(t, IsValidHashAlgo(algo))
	}
	assert.True(t, IsValidHashAlgo("SHA256"))
	assert.False(t, IsValidHashAlgo("md5"))
	assert.False(t, IsValidHashAlgo("crc32"))
}

func TestSum(t *testing.T) {
	got, err := Sum(strings.NewReader("hello world"), DefaultAlgo)
	require.NoError(t, err)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", got)

	got, err = Sum(strings.NewReader("hello world"), "sha1")
	require.NoError(t, err)
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", got)

	_, err = Sum(strings.NewReader(""), "md5")
	assert.Error(t, err)
}

func TestFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "guide.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello world"), 0o600))

	got, err := File(p, "")
	require.NoError(t, err)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", got)

	_, err = File(filepath.Join(t.TempDir(), "missing.txt"), DefaultAlgo)
	assert.Error(t, err)
}
