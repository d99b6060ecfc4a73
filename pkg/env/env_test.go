package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "hello")
	assert.Equal(t, "hello", GetEnvString("TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnvString("TEST_STRING_MISSING", "default"))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, GetEnvBool("TEST_BOOL", false))

	t.Setenv("TEST_BOOL_BAD", "not-a-bool")
	assert.True(t, GetEnvBool("TEST_BOOL_BAD", true))

	assert.False(t, GetEnvBool("TEST_BOOL_MISSING", false))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "123")
	assert.Equal(t, 123, GetEnvInt("TEST_INT", 0))

	t.Setenv("TEST_INT_BAD", "abc")
	assert.Equal(t, 7, GetEnvInt("TEST_INT_BAD", 7))

	assert.Equal(t, 42, GetEnvInt("TEST_INT_MISSING", 42))
}

func TestGetEnvUint64(t *testing.T) {
	t.Setenv("TEST_UINT", "18446744073709551615")
	assert.Equal(t, uint64(18446744073709551615), GetEnvUint64("TEST_UINT", 0))

	t.Setenv("TEST_UINT_NEG", "-1")
	assert.Equal(t, uint64(9), GetEnvUint64("TEST_UINT_NEG", 9))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "5s")
	assert.Equal(t, 5*time.Second, GetEnvDuration("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION_BAD", "xyz")
	assert.Equal(t, time.Minute, GetEnvDuration("TEST_DURATION_BAD", time.Minute))
}
