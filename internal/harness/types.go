package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq            int64  `json:"seq"`
	Op             string `json:"op"`
	Schedule       string `json:"schedule,omitempty"`
	Role           string `json:"role,omitempty"`
	Constraint     string `json:"constraint,omitempty"`
	ConstraintName string `json:"constraint_name,omitempty"`
	Transition     string `json:"transition,omitempty"`
	Created        bool   `json:"created,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
