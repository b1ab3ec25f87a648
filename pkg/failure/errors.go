package failure

type Severity int

// retrieval control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// ClassifiedError is returned by every pipeline component.
// Severity tells the caller whether asking again later may succeed.
type ClassifiedError interface {
	error
	Severity() Severity
}
