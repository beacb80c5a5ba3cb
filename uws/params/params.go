// Package params implements the UWS parameter controllers: typed
// default/parse/check behavior for the reserved parameter names (RUN_ID,
// EXECUTION_DURATION, DESTRUCTION_TIME, PHASE, QUOTE) plus pass-through
// handling for any other registered or unrecognized name.
package params

import (
	"strconv"
	"strings"
	"time"

	"adqltap/errs"
)

// Context carries the per-job constraints a controller's Check needs:
// service-wide caps that a raw value must be clamped or rejected against.
type Context struct {
	MaxExecutionDuration time.Duration // 0 = unbounded
	MaxRetentionPeriod   time.Duration // 0 = unbounded
	Now                  time.Time
}

// Controller is implemented once per recognized parameter name.
type Controller interface {
	Name() string
	Default() any
	Parse(raw string) (any, error)
	Check(value any, ctx Context) (any, error)
}

// Registry holds the controllers known to one service, at most one per
// lowercased parameter name, and records the order they were registered
// in. ParseAndCheck applies only the single controller registered for a
// parameter's name; controllers are not chained.
type Registry struct {
	order  []string
	byName map[string]Controller
}

// NewRegistry creates a Registry preloaded with the five reserved
// controllers (spec §3.4).
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Controller)}
	r.Register(runIDController{})
	r.Register(executionDurationController{})
	r.Register(destructionTimeController{})
	r.Register(phaseController{})
	r.Register(quoteController{})
	return r
}

// Register adds or replaces a controller, folding its name to lowercase
// to match UWSParameters' lowercase-folded keys.
func (r *Registry) Register(c Controller) {
	key := strings.ToLower(c.Name())
	if _, exists := r.byName[key]; !exists {
		r.order = append(r.order, key)
	}
	r.byName[key] = c
}

// Lookup returns the controller registered for name, if any.
func (r *Registry) Lookup(name string) (Controller, bool) {
	c, ok := r.byName[strings.ToLower(name)]
	return c, ok
}

// ParseAndCheck parses raw against name's controller (if registered) and
// applies Check, returning the typed, constrained value. Unregistered
// names pass through verbatim as strings (spec §3.4's "additional
// parameters").
func (r *Registry) ParseAndCheck(name, raw string, ctx Context) (any, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return raw, nil
	}
	v, err := c.Parse(raw)
	if err != nil {
		return nil, err
	}
	return c.Check(v, ctx)
}

// runIDController accepts any free-form string.
type runIDController struct{}

func (runIDController) Name() string    { return "RUN_ID" }
func (runIDController) Default() any    { return "" }
func (runIDController) Parse(raw string) (any, error) { return raw, nil }
func (runIDController) Check(v any, _ Context) (any, error) { return v, nil }

// executionDurationController accepts a non-negative integer number of
// seconds, clamped to the service maximum.
type executionDurationController struct{}

func (executionDurationController) Name() string { return "EXECUTION_DURATION" }
func (executionDurationController) Default() any { return time.Duration(0) }

func (executionDurationController) Parse(raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errs.New(errs.ParamRejected, "EXECUTION_DURATION must be an integer number of seconds: %q", raw)
	}
	if n < 0 {
		return nil, errs.New(errs.ParamRejected, "EXECUTION_DURATION must be non-negative, got %d", n)
	}
	return time.Duration(n) * time.Second, nil
}

func (executionDurationController) Check(v any, ctx Context) (any, error) {
	d := v.(time.Duration)
	if ctx.MaxExecutionDuration > 0 && (d == 0 || d > ctx.MaxExecutionDuration) {
		return ctx.MaxExecutionDuration, nil
	}
	return d, nil
}

// destructionTimeController accepts an ISO-8601 timestamp, clamped to the
// service's maximum retention period from now.
type destructionTimeController struct{}

func (destructionTimeController) Name() string { return "DESTRUCTION_TIME" }
func (destructionTimeController) Default() any { return time.Time{} }

func (destructionTimeController) Parse(raw string) (any, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errs.New(errs.ParamRejected, "DESTRUCTION_TIME must be ISO-8601: %q", raw)
	}
	return ts, nil
}

func (destructionTimeController) Check(v any, ctx Context) (any, error) {
	ts := v.(time.Time)
	if ctx.MaxRetentionPeriod <= 0 {
		return ts, nil
	}
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	deadline := now.Add(ctx.MaxRetentionPeriod)
	if ts.After(deadline) {
		return deadline, nil
	}
	return ts, nil
}

// phaseController only accepts RUN or ABORT as user input; the current
// phase is read-only through this controller (the state machine in
// package uws owns transitions).
type phaseController struct{}

func (phaseController) Name() string { return "PHASE" }
func (phaseController) Default() any { return "" }

func (phaseController) Parse(raw string) (any, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v != "RUN" && v != "ABORT" {
		return nil, errs.New(errs.ParamRejected, "PHASE input must be RUN or ABORT, got %q", raw)
	}
	return v, nil
}

func (phaseController) Check(v any, _ Context) (any, error) { return v, nil }

// quoteController is read-only: the service computes it, users never set
// it, so Parse always rejects.
type quoteController struct{}

func (quoteController) Name() string { return "QUOTE" }
func (quoteController) Default() any { return time.Duration(0) }

func (quoteController) Parse(raw string) (any, error) {
	return nil, errs.New(errs.ParamRejected, "QUOTE is read-only and cannot be set by the client")
}

func (quoteController) Check(v any, _ Context) (any, error) { return v, nil }
