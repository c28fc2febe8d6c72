// Package health serves the liveness endpoint hosting platforms probe.
package health

import (
	"fmt"
	"net/http"
)

// Handler responds to liveness probes.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "I am alive! The match mirror is running.")
	})
	return mux
}

// Serve blocks serving the liveness endpoint on the given port.
func Serve(port string) error {
	return http.ListenAndServe(":"+port, Handler())
}
