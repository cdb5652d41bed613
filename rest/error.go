package rest

import (
	"context"
	"errors"

	rest2 "github.com/swaggest/rest"
	"github.com/swaggest/usecase"
	"github.com/swaggest/usecase/status"
)

// Err makes HTTP status code and error response body from error.
//
// Errors carrying a status code are rendered by rest.Err of
// github.com/swaggest/rest, an expired context is reported as
// DEADLINE_EXCEEDED.
func Err(err error) (rest2.ErrResponse, int) {
	if err == nil {
		panic("rest: nil error received")
	}

	var withStatus rest2.ErrWithCanonicalStatus
	if !errors.As(err, &withStatus) && errors.Is(err, context.DeadlineExceeded) {
		err = usecase.Error{StatusCode: status.DeadlineExceeded, Value: err}
	}

	code, er := rest2.Err(err)

	return er, code
}

// invalidArgument classifies a request decoding failure, field details
// of the cause are kept as error context.
func invalidArgument(err error) error {
	ue := usecase.Error{StatusCode: status.InvalidArgument, Value: err}

	var withFields rest2.ErrWithFields
	if errors.As(err, &withFields) {
		ue.Context = withFields.Fields()
	}

	return ue
}
