package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rjournal/config"
)

func TestNewDisabled(t *testing.T) {
	_, err := New(config.ArchiveConfig{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewLocalFS(t *testing.T) {
	st, err := New(config.ArchiveConfig{Type: "localfs", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalFS{}, st)
}

func TestNewS3(t *testing.T) {
	st, err := New(config.ArchiveConfig{
		Type: "s3",
		S3:   config.S3Config{Bucket: "journals", Region: "us-east-1", Prefix: "rjournal/"},
	})
	require.NoError(t, err)

	s3s, ok := st.(*S3Storage)
	require.True(t, ok)
	assert.Equal(t, "journals", s3s.bucket)
	assert.Equal(t, "rjournal", s3s.prefix)
}

func TestNewUnknown(t *testing.T) {
	_, err := New(config.ArchiveConfig{Type: "ftp"})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "sessions/S1/march.csv", Key("S1", "/tmp/out/march.csv"))
	assert.Equal(t, "sessions/S1/march.org", Key("S1", "march.org"))
	assert.Equal(t, "sessions/S1", Prefix("S1"))
}
