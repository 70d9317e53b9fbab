package utils

import (
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"go.uber.org/zap"
)

// StepTimer records how long each step of a multi-step operation takes
type StepTimer struct {
	operation string
	logger    *logging.SafeLogger
	startTime time.Time
	lastMark  time.Time
	steps     []StepDuration
}

// StepDuration is the time spent in one named step
type StepDuration struct {
	Name     string
	Duration time.Duration
}

// NewStepTimer starts timing an operation
func NewStepTimer(operation string, logger *logging.SafeLogger) *StepTimer {
	now := time.Now()
	return &StepTimer{
		operation: operation,
		logger:    logger,
		startTime: now,
		lastMark:  now,
	}
}

// Mark closes the current step under name and starts the next one
func (st *StepTimer) Mark(name string) {
	now := time.Now()
	step := StepDuration{Name: name, Duration: now.Sub(st.lastMark)}
	st.lastMark = now
	st.steps = append(st.steps, step)

	observability.StepDuration.WithLabelValues(st.operation, name).Observe(step.Duration.Seconds())
}

// Steps returns the recorded steps in order
func (st *StepTimer) Steps() []StepDuration {
	return st.steps
}

// End logs the per-step breakdown and returns the total duration
func (st *StepTimer) End() time.Duration {
	total := time.Since(st.startTime)

	fields := make([]zap.Field, 0, len(st.steps)+2)
	fields = append(fields,
		zap.String("operation", st.operation),
		zap.Duration("total_duration", total),
	)
	for _, step := range st.steps {
		fields = append(fields, zap.Duration("step_"+step.Name, step.Duration))
	}
	st.logger.Debug("operation timing", fields...)

	return total
}
