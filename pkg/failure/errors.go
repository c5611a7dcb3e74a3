package failure

import "errors"

type Severity int

// engine control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// Kind tells callers which stage of the pipeline failed so they can branch
// on transport vs. parsing vs. I/O without inspecting concrete types.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindRender
	KindExtraction
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRender:
		return "render"
	case KindExtraction:
		return "extraction"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

type ClassifiedError interface {
	error
	Severity() Severity
	Kind() Kind
}

// KindOf returns the Kind of the first error in err's tree that reports one,
// KindUnknown otherwise.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}
