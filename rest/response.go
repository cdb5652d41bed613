package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fasthttp"
)

const jsonContentType = "application/json; charset=utf-8"

// MinCompressSize is the smallest JSON body that is compressed.
var MinCompressSize = 512

// WriteJSON renders v as JSON with status code, the body is compressed with
// brotli or gzip when it is large enough and the client accepts it.
func WriteJSON(rc *fasthttp.RequestCtx, statusCode int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		rc.Error(err.Error(), fasthttp.StatusInternalServerError)

		return
	}

	rc.SetStatusCode(statusCode)
	rc.SetContentType(jsonContentType)

	if len(b) < MinCompressSize {
		rc.SetBody(b)

		return
	}

	rc.Response.Header.Add(fasthttp.HeaderVary, fasthttp.HeaderAcceptEncoding)

	enc := negotiateEncoding(rc.Request.Header.Peek(fasthttp.HeaderAcceptEncoding))
	if enc == "" {
		rc.SetBody(b)

		return
	}

	var w io.WriteCloser

	body := rc.Response.BodyWriter()

	switch enc {
	case "br":
		w = brotli.NewWriterLevel(body, brotli.DefaultCompression)
	default:
		w = gzip.NewWriter(body)
	}

	rc.Response.Header.Set(fasthttp.HeaderContentEncoding, enc)

	if _, err := w.Write(b); err != nil {
		rc.Error(err.Error(), fasthttp.StatusInternalServerError)

		return
	}

	if err := w.Close(); err != nil {
		rc.Error(err.Error(), fasthttp.StatusInternalServerError)
	}
}

// negotiateEncoding picks br or gzip from Accept-Encoding, br wins a tie.
func negotiateEncoding(ae []byte) string {
	var br, gz bool

	for _, part := range bytes.Split(ae, []byte(",")) {
		token, params, _ := bytes.Cut(bytes.TrimSpace(part), []byte(";"))
		if q, ok := bytes.CutPrefix(bytes.TrimSpace(params), []byte("q=")); ok {
			if w, err := strconv.ParseFloat(string(q), 64); err == nil && w == 0 {
				continue
			}
		}

		switch string(bytes.ToLower(token)) {
		case "br":
			br = true
		case "gzip", "*":
			gz = true
		}
	}

	switch {
	case br:
		return "br"
	case gz:
		return "gzip"
	default:
		return ""
	}
}
