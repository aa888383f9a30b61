package argon2cal

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ConfigurationError is returned by Run, before any probing, when the Input cannot be calibrated.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid calibration input: %s %s", e.Field, e.Reason)
}

// ProbeFailure is a hashing error at one parameter set. It aborts the memory level it happened at,
// never the run.
type ProbeFailure struct {
	Parameters Parameters
	Err        error
}

func (e *ProbeFailure) Error() string {
	return fmt.Sprintf("probe at %v failed: %v", e.Parameters, e.Err)
}

func (e *ProbeFailure) Unwrap() error {
	return e.Err
}

func (e *ProbeFailure) Fields() logrus.Fields {
	return logrus.Fields{
		"memory":      e.Parameters.Memory,
		"iterations":  e.Parameters.Iterations,
		"parallelism": e.Parameters.Parallelism,
	}
}

func (e *ProbeFailure) Log(l *logrus.Logger) {
	l.WithFields(e.Fields()).WithError(e.Err).Warn("probe failed, skipping memory level")
}
