package highway

import "github.com/highwaygo/highways/mailbox"

// ResultCode is an alias for mailbox.ResultCode, re-exported here so
// callers working against a Highway (PostResult) don't need to import
// mailbox themselves just to name the type. See mailbox.ResultCode's doc
// for why the type is defined at that layer rather than this one.
type ResultCode = mailbox.ResultCode

const (
	ResultNone              = mailbox.ResultNone
	ResultOK                = mailbox.ResultOK
	ResultOKCreatedNew      = mailbox.ResultOKCreatedNew
	ResultOKReplaced        = mailbox.ResultOKReplaced
	ResultOKReady           = mailbox.ResultOKReady
	ResultOKInProcess       = mailbox.ResultOKInProcess
	ResultFail              = mailbox.ResultFail
	ResultFailNoMemory      = mailbox.ResultFailNoMemory
	ResultFailMoreThanIHave = mailbox.ResultFailMoreThanIHave
)
