package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_LevelsAndPrefix(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWriterLogger("timelapse", false, &out, &errOut)

	logger.Debugf("hidden %d", 1)
	logger.Infof("frame %d", 7)
	logger.Warnf("texture %q missing", "grass")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[timelapse] INFO: frame 7")
	assert.Contains(t, errOut.String(), `[timelapse] WARN: texture "grass" missing`)

	logger.SetDebug(true)
	logger.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.False(t, logger.DebugEnabled())
	logger.Errorf("nothing %s", "happens")
}
