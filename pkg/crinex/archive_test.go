package crinex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGzipAndRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.crx")
	assert.NoError(t, os.WriteFile(path, []byte("compressed content\n"), 0644))

	gz, err := GzipAndRemove(path)
	assert.NoError(t, err)
	assert.Equal(t, path+".gz", gz)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	info, err := os.Stat(gz)
	assert.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
