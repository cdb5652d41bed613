package shell

import (
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
)

// ServeTest serves h on a free loopback port until the test ends and
// returns the base URL of the server, for example to build a store.Store.
func ServeTest(tb testing.TB, h Handler) string {
	tb.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		if l, err = net.Listen("tcp6", "[::1]:0"); err != nil {
			tb.Fatalf("shell: failed to listen on a port: %v", err)
		}
	}

	srv := &fasthttp.Server{
		Handler:     RequestHandler(h),
		IdleTimeout: 10 * time.Millisecond,
	}

	served := make(chan struct{})

	go func() {
		defer close(served)

		if err := srv.Serve(l); err != nil {
			tb.Logf("shell: test server stopped: %v", err)
		}
	}()

	tb.Cleanup(func() {
		if err := srv.Shutdown(); err != nil {
			tb.Errorf("shell: test server shutdown: %v", err)
		}

		<-served
	})

	return "http://" + l.Addr().String()
}
