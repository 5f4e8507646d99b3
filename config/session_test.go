package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionConfig_Sanitize(t *testing.T) {
	t.Parallel()

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		t.Parallel()
		s := SessionConfig{}
		s.Sanitize()
		assert.Equal(t, time.Hour, s.IdleTimeout)
		assert.Equal(t, 30*time.Minute, s.RotateEvery)
	})

	t.Run("negative values fall back to defaults", func(t *testing.T) {
		t.Parallel()
		s := SessionConfig{IdleTimeout: -time.Minute, RotateEvery: -time.Second}
		s.Sanitize()
		assert.Equal(t, time.Hour, s.IdleTimeout)
		assert.Equal(t, 30*time.Minute, s.RotateEvery)
	})

	t.Run("rotation capped at idle window", func(t *testing.T) {
		t.Parallel()
		s := SessionConfig{IdleTimeout: 20 * time.Minute, RotateEvery: time.Hour}
		s.Sanitize()
		assert.Equal(t, 20*time.Minute, s.RotateEvery)
	})

	t.Run("sane values untouched", func(t *testing.T) {
		t.Parallel()
		s := SessionConfig{IdleTimeout: 2 * time.Hour, RotateEvery: 15 * time.Minute}
		s.Sanitize()
		assert.Equal(t, 2*time.Hour, s.IdleTimeout)
		assert.Equal(t, 15*time.Minute, s.RotateEvery)
	})
}
