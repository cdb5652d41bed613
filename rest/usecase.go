package rest

import (
	"context"

	"github.com/neurolearn/shell"
	"github.com/swaggest/usecase"
)

// UseCaseMiddlewares applies use case middlewares to rest.Handler.
//
// Handlers of other types are passed through unchanged.
func UseCaseMiddlewares(mw ...usecase.Middleware) func(shell.Handler) shell.Handler {
	return func(handler shell.Handler) shell.Handler {
		if len(mw) == 0 {
			return handler
		}

		var uh *Handler
		if !HandlerAs(handler, &uh) {
			return handler
		}

		fu := usecase.Interact(func(ctx context.Context, input, output interface{}) error {
			return output.(error)
		})

		uh.SetUseCase(usecase.Wrap(uh.UseCase(), mw...))
		uh.failingUseCase = usecase.Wrap(fu, mw...)

		return handler
	}
}

// HandlerAs finds *Handler behind handlers wrapped with middlewares.
func HandlerAs(handler shell.Handler, target **Handler) bool {
	for {
		if h, ok := handler.(*Handler); ok {
			*target = h

			return true
		}

		w, ok := handler.(shell.Wrapper)
		if !ok {
			return false
		}

		handler = w.Unwrap()
	}
}
