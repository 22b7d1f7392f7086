package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsableBeforeSetup(t *testing.T) {
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() {
		Warn("warning before setup", "key", "value")
	})
}

func TestSetupTeesIntoLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	Setup("development", path)
	Info("service ready", "port", "8080")

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "service ready")
	assert.Contains(t, string(data), "port=8080")
}

func TestSetupWithoutFileStillLogs(t *testing.T) {
	Setup("development", "")
	assert.NotPanics(t, func() {
		Info("stdout only")
	})
}
