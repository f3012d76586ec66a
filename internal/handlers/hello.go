package handlers

import "net/http"

type messageResponse struct {
	Message string `json:"message"`
}

// Root answers GET / only; the catch-all pattern otherwise 404s, matching
// a router with explicit routes.
func Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello from the intake backend!"})
}

func Hello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello from the backend API!"})
}
