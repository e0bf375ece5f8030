package mailbox

// ResultCode is the small signed status code threaded through the
// mailbox, highway, and channel packages wherever an operation needs to
// report more than a bare success/failure. It lives here, at the lowest
// layer that every one of those packages depends on (directly or
// transitively), so it can flow upward through all of them without
// creating an import cycle back down into mailbox.
//
// Values and meanings are carried over unchanged from the original
// result_code.h: positive values are successes of increasing specificity,
// negative values are failures of increasing severity, and ResultNone (0)
// is neither.
type ResultCode int32

const (
	// ResultNone means the operation produced nothing to report.
	ResultNone ResultCode = 0
	// ResultOK is a plain success.
	ResultOK ResultCode = 1
	// ResultOKCreatedNew means the operation succeeded by creating a new
	// entry rather than reusing or replacing one.
	ResultOKCreatedNew ResultCode = 2
	// ResultOKReplaced means the operation succeeded by replacing an
	// existing entry.
	ResultOKReplaced ResultCode = 3
	// ResultOKReady means the operation succeeded and the result is ready
	// to be consumed immediately.
	ResultOKReady ResultCode = 4
	// ResultOKInProcess means the operation was accepted but has not yet
	// completed; the caller should check again later.
	ResultOKInProcess ResultCode = 5

	// ResultFail is a generic failure.
	ResultFail ResultCode = -1
	// ResultFailNoMemory means the operation failed because no holder or
	// buffer space was available.
	ResultFailNoMemory ResultCode = -2
	// ResultFailMoreThanIHave means the operation asked for more than the
	// callee has to give (e.g. reading past the end of a buffer).
	ResultFailMoreThanIHave ResultCode = -3
)

// OK reports whether c represents any of the positive success codes.
func (c ResultCode) OK() bool {
	return c >= ResultOK
}

// String renders c using the same names as its constant, for logging.
func (c ResultCode) String() string {
	switch c {
	case ResultNone:
		return "none"
	case ResultOK:
		return "ok"
	case ResultOKCreatedNew:
		return "ok_created_new"
	case ResultOKReplaced:
		return "ok_replaced"
	case ResultOKReady:
		return "ok_ready"
	case ResultOKInProcess:
		return "ok_in_process"
	case ResultFail:
		return "fail"
	case ResultFailNoMemory:
		return "fail_no_memory"
	case ResultFailMoreThanIHave:
		return "fail_more_than_i_have"
	default:
		return "unknown"
	}
}
