package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, 72, conf.MobGraceHours)
	assert.Equal(t, 3, conf.NotifyMaxAttempts)
}

func TestNewReadsOverrides(t *testing.T) {
	os.Setenv("MOB_GRACE_HOURS", "24")
	os.Setenv("NOTIFY_MAX_ATTEMPTS", "5")
	defer os.Unsetenv("MOB_GRACE_HOURS")
	defer os.Unsetenv("NOTIFY_MAX_ATTEMPTS")

	conf := New()
	assert.Equal(t, 24, conf.MobGraceHours)
	assert.Equal(t, 5, conf.NotifyMaxAttempts)
}

func TestEnvIntFallsBackOnGarbage(t *testing.T) {
	os.Setenv("MOB_GRACE_HOURS", "not-a-number")
	defer os.Unsetenv("MOB_GRACE_HOURS")

	assert.Equal(t, 72, envInt("MOB_GRACE_HOURS", 72))
}

func TestErrorStatus(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, w, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error it borked")
	assert.Contains(t, w.Body.String(), "bad request")
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
