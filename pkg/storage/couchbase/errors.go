package couchbase

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/couchbase/gocb/v2"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Error is a cluster failure with the code reported for it.
type Error struct {
	Op   string
	code string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the query error code, or a short name for key-value failures.
func (e *Error) Code() string { return e.code }

var sentinelCodes = []struct {
	err  error
	code string
}{
	{gocb.ErrDocumentExists, "document_exists"},
	{gocb.ErrPathMismatch, "path_mismatch"},
	{gocb.ErrAuthenticationFailure, "authentication_failure"},
	{gocb.ErrBucketNotFound, "bucket_not_found"},
	{gocb.ErrIndexNotFound, "index_not_found"},
	{gocb.ErrParsingFailure, "parsing_failure"},
	{gocb.ErrUnambiguousTimeout, "timeout"},
	{gocb.ErrAmbiguousTimeout, "ambiguous_timeout"},
	{gocb.ErrTimeout, "timeout"},
	{gocb.ErrRequestCanceled, "request_canceled"},
}

// translate maps a gocb error onto the gateway's error kinds. Missing
// documents and missing sub-document paths become domain.ErrNotFound.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gocb.ErrDocumentNotFound) || errors.Is(err, gocb.ErrPathNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return &Error{Op: op, code: codeOf(err), Err: err}
}

func codeOf(err error) string {
	var qe *gocb.QueryError
	if errors.As(err, &qe) && len(qe.Errors) > 0 {
		return strconv.FormatUint(uint64(qe.Errors[0].Code), 10)
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return ""
}
