package handler

import (
	"net/http"
	"time"
)

type statusResponse struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Time    time.Time `json:"time"`
}

// HandleStatus reports that the service is up.
//
// HTTP: GET /
//
// The route is public: load balancers and uptime probes hit it without
// credentials, and it reveals nothing about the user data set.
func HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "ok",
		Service: "userauth",
		Time:    time.Now().UTC(),
	})
}
