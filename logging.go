package argon2cal

import (
	"io"

	"github.com/sirupsen/logrus"
)

// ProbeLogger is told about every probe. It only observes, calibration does not depend on it.
// Every BeginProbe is followed by exactly one CompleteProbe, or FailProbe when hashing failed.
type ProbeLogger interface {
	BeginProbe(p Parameters)
	CompleteProbe(elapsedMilliseconds int64)
	FailProbe(err error)
}

type nopProbeLogger struct{}

func (nopProbeLogger) BeginProbe(Parameters) {}
func (nopProbeLogger) CompleteProbe(int64)   {}
func (nopProbeLogger) FailProbe(error)       {}

// LogrusProbeLogger writes probe notifications at debug level.
type LogrusProbeLogger struct {
	l *logrus.Logger
}

func NewLogrusProbeLogger(l *logrus.Logger) *LogrusProbeLogger {
	return &LogrusProbeLogger{l: l}
}

func (pl *LogrusProbeLogger) BeginProbe(p Parameters) {
	pl.l.WithFields(logrus.Fields{
		"memory":      p.Memory,
		"iterations":  p.Iterations,
		"parallelism": p.Parallelism,
	}).Debug("starting calibration probe")
}

func (pl *LogrusProbeLogger) CompleteProbe(elapsedMilliseconds int64) {
	pl.l.WithField("elapsedMs", elapsedMilliseconds).Debug("calibration probe completed")
}

func (pl *LogrusProbeLogger) FailProbe(err error) {
	pl.l.WithError(err).Debug("calibration probe failed")
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
