package middleware

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/base64"
	"strconv"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

// BasicAuth guards a route with HTTP basic authentication against a fixed
// set of user to password credentials.
//
// The server mounts it in front of the profiler when debug credentials
// are configured.
func BasicAuth(realm string, creds map[string]string) func(next shell.Handler) shell.Handler {
	challenge := "Basic realm=" + strconv.Quote(realm)

	return func(next shell.Handler) shell.Handler {
		return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
			user, pass, ok := parseBasicAuth(rc.Request.Header.Peek(fasthttp.HeaderAuthorization))

			if ok {
				want, known := creds[user]
				ok = known && subtle.ConstantTimeCompare([]byte(pass), []byte(want)) == 1
			}

			if !ok {
				rc.Response.Header.Add(fasthttp.HeaderWWWAuthenticate, challenge)
				rc.SetStatusCode(fasthttp.StatusUnauthorized)

				return
			}

			next.ServeHTTP(ctx, rc)
		})
	}
}

// parseBasicAuth parses "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==" into
// ("Aladdin", "open sesame", true).
func parseBasicAuth(auth []byte) (user, pass string, ok bool) {
	const prefix = "Basic "

	if len(auth) < len(prefix) || !bytes.EqualFold(auth[:len(prefix)], []byte(prefix)) {
		return "", "", false
	}

	c, err := base64.StdEncoding.DecodeString(string(auth[len(prefix):]))
	if err != nil {
		return "", "", false
	}

	i := bytes.IndexByte(c, ':')
	if i < 0 {
		return "", "", false
	}

	return string(c[:i]), string(c[i+1:]), true
}
