package llm

// Status tags how a generation call ended.
type Status int

const (
	// StatusOK means the backend produced the answer.
	StatusOK Status = iota
	// StatusDegraded means a canned reply stood in for the backend.
	StatusDegraded
	// StatusFailed means the call failed; Text holds a readable error line.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a backend hands back to the conversation layer.
// Text is always safe to show to the user.
type Result struct {
	Status  Status
	Text    string
	Reason  string
	Backend string
}

func OK(backend, text string) Result {
	return Result{Status: StatusOK, Text: text, Backend: backend}
}

func Degraded(backend, text, reason string) Result {
	return Result{Status: StatusDegraded, Text: text, Reason: reason, Backend: backend}
}

func Failed(backend, text, reason string) Result {
	return Result{Status: StatusFailed, Text: text, Reason: reason, Backend: backend}
}
