package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/site")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(8<<20), cfg.Server.MaxUploadBytes)

	assert.Equal(t, "postgres://user:pass@db:5432/site", cfg.Database.URI)
	assert.Equal(t, 10, cfg.Database.MaxPoolSize)
	assert.Equal(t, 30*time.Second, cfg.Database.ServerSelectionTimeout)
	assert.Equal(t, 45*time.Second, cfg.Database.SocketTimeout)
	assert.True(t, cfg.Database.ForceIPv4)

	assert.Equal(t, EventsDriverNone, cfg.Events.Driver)
	assert.Equal(t, ResumeStorageInline, cfg.Resume.Storage)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("EVENTS_DRIVER", "nats")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("RESUME_STORAGE", "s3")
	t.Setenv("RESUME_BUCKET", "careers-resumes")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, EventsDriverNATS, cfg.Events.Driver)
	assert.Equal(t, "nats://nats:4222", cfg.Events.NATS.URL)
	assert.Equal(t, ResumeStorageS3, cfg.Resume.Storage)
	assert.Equal(t, "careers-resumes", cfg.Resume.S3.Bucket)
	assert.Equal(t, "resumes/", cfg.Resume.S3.Prefix)
}

func TestLoad_MissingURIIsNotAConfigError(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.URI)
}

func TestLoad_RejectsUnknownOptions(t *testing.T) {
	t.Run("EventsDriver", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("EVENTS_DRIVER", "carrier-pigeon")

		_, err := load(viper.New())
		assert.ErrorContains(t, err, "unknown events driver")
	})

	t.Run("ResumeStorage", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("RESUME_STORAGE", "floppy")

		_, err := load(viper.New())
		assert.ErrorContains(t, err, "unknown resume storage")
	})

	t.Run("S3WithoutBucket", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("RESUME_STORAGE", "s3")
		t.Setenv("RESUME_BUCKET", "")

		_, err := load(viper.New())
		assert.ErrorContains(t, err, "resume.s3.bucket is required")
	})
}
