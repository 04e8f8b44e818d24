//nolint:revive // exported
package rhealth

import (
	"net/http"

	"github.com/reqforge/reqforge/internal/api"
)

type HealthServiceRPC struct {
	version string
}

func New(version string) *HealthServiceRPC {
	return &HealthServiceRPC{version: version}
}

func CreateService(srv *HealthServiceRPC) *api.Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/health.v1.HealthService/Check", srv.Check)
	return &api.Service{Path: "/health.v1.HealthService/", Handler: mux}
}

type checkResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (c *HealthServiceRPC) Check(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, checkResponse{Status: "ok", Version: c.version})
}
