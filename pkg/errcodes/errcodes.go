package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	Forbidden           failure.ErrorCode = "Forbidden"

	InvalidPaging       failure.ErrorCode = "InvalidPaging"
	InvalidFilter       failure.ErrorCode = "InvalidFilter"
	InvalidSortField    failure.ErrorCode = "InvalidSortField"
	InvalidUpdatePeriod failure.ErrorCode = "InvalidUpdatePeriod"

	UnknownAsset        failure.ErrorCode = "UnknownAsset"
	TooFewExchanges     failure.ErrorCode = "TooFewExchanges"
	OpportunityNotFound failure.ErrorCode = "OpportunityNotFound"
	OpportunityStale    failure.ErrorCode = "OpportunityStale"
	DealRejected        failure.ErrorCode = "DealRejected"
	RefetchFailed       failure.ErrorCode = "RefetchFailed"
)
