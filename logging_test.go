package argon2cal

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type TestLogWriter struct {
	Logs []string
}

func NewTestLogWriter() *TestLogWriter {
	return &TestLogWriter{Logs: make([]string, 0)}
}

func (tl *TestLogWriter) Write(p []byte) (n int, err error) {
	tl.Logs = append(tl.Logs, string(p))
	return len(p), nil
}

func (tl *TestLogWriter) Reset() {
	tl.Logs = tl.Logs[:0]
}

func TestLogrusProbeLogger(t *testing.T) {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	}
	l.Level = logrus.DebugLevel
	tl := NewTestLogWriter()
	l.Out = tl

	pl := NewLogrusProbeLogger(l)
	pl.BeginProbe(Parameters{Parallelism: 4, Iterations: 3, Memory: 65536})
	pl.CompleteProbe(250)
	pl.BeginProbe(Parameters{Parallelism: 4, Iterations: 3, Memory: 131072})
	pl.FailProbe(assert.AnError)
	assert.Equal(t, []string{
		"level=debug msg=\"starting calibration probe\" iterations=3 memory=65536 parallelism=4\n",
		"level=debug msg=\"calibration probe completed\" elapsedMs=250\n",
		"level=debug msg=\"starting calibration probe\" iterations=3 memory=131072 parallelism=4\n",
		"level=debug msg=\"calibration probe failed\" error=\"" + assert.AnError.Error() + "\"\n",
	}, tl.Logs)

	// quiet at the default level
	tl.Reset()
	l.Level = logrus.InfoLevel
	pl.BeginProbe(Parameters{Parallelism: 1, Iterations: 1, Memory: 1024})
	pl.CompleteProbe(1)
	pl.FailProbe(assert.AnError)
	assert.Empty(t, tl.Logs)
}

func TestProbeFailure_Log(t *testing.T) {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	}
	tl := NewTestLogWriter()
	l.Out = tl

	pf := &ProbeFailure{Parameters: Parameters{Parallelism: 2, Iterations: 8, Memory: 2048}, Err: assert.AnError}
	pf.Log(l)
	assert.Equal(t, []string{
		"level=warning msg=\"probe failed, skipping memory level\" error=\"" + assert.AnError.Error() + "\" iterations=8 memory=2048 parallelism=2\n",
	}, tl.Logs)
	assert.ErrorIs(t, pf, assert.AnError)
	assert.Equal(t, "probe at m=2048,t=8,p=2 failed: "+assert.AnError.Error(), pf.Error())
}
