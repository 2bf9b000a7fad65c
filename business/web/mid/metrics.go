package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/memoledger/business/sys/metrics"
	"github.com/ardanlabs/memoledger/foundation/web"
)

// Metrics updates program counters.
func Metrics(m *metrics.Metrics) web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request and goroutines counter.
			m.AddRequest()

			// Increment if there is an error flowing through the request.
			if err != nil {
				m.AddError()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
