package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault()
	require.NotNil(t, l)
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	l := New(Config{Level: "nonsense", Format: FormatJSON, Output: "stdout"})
	require.NotNil(t, l)
}

func TestWithComponent(t *testing.T) {
	l := NewDefault()
	cl := l.WithComponent("store")
	require.NotNil(t, cl)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	cfg.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg.Level = "debug"
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two")
	assert.Equal(t, 1, m["a"])
	assert.Equal(t, "two", m["b"])

	// Odd trailing key is dropped.
	m = Fields("a", 1, "dangling")
	assert.Len(t, m, 1)
}
