package httpserver

import (
	"net/http"
	"time"
)

// New builds a server whose write deadline leaves headroom over the
// handler timeout, so timed-out requests still get their 503 written.
func New(addr string, handler http.Handler, handlerTimeout time.Duration) *http.Server {
	writeTimeout := 30 * time.Second
	if handlerTimeout > 0 && handlerTimeout+5*time.Second > writeTimeout {
		writeTimeout = handlerTimeout + 5*time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
