package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compress gzips text responses above a small size. Websocket and proxied
// streaming routes must not be wrapped.
func Compress(next http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.ContentTypes([]string{
			"text/html",
			"text/css",
			"text/javascript",
			"application/javascript",
			"image/svg+xml",
		}),
	)
	if err != nil {
		panic(err)
	}
	return wrap(next)
}
