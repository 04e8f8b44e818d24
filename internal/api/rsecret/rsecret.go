//nolint:revive // exported
package rsecret

import (
	"net/http"

	"github.com/reqforge/reqforge/internal/api"
	"github.com/reqforge/reqforge/pkg/secretscan"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

type SecretServiceRPC struct{}

func New() *SecretServiceRPC {
	return &SecretServiceRPC{}
}

func CreateService(srv *SecretServiceRPC) *api.Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/secret.v1.SecretService/Scan", srv.Scan)
	mux.HandleFunc("/secret.v1.SecretService/ScanRequest", srv.ScanRequest)
	return &api.Service{Path: "/secret.v1.SecretService/", Handler: mux}
}

type scanRequest struct {
	Text string `json:"text"`
}

type scanResponse struct {
	Findings []secretscan.Finding `json:"findings"`
}

// Scan checks free text, typically a rendered snippet, for credential
// material that should not leave the machine.
func (c *SecretServiceRPC) Scan(w http.ResponseWriter, r *http.Request) {
	var in scanRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return
	}
	findings := secretscan.ScanText("text", in.Text)
	if findings == nil {
		findings = []secretscan.Finding{}
	}
	api.WriteJSON(w, http.StatusOK, scanResponse{Findings: findings})
}

type scanDocRequest struct {
	Request treqfile.RequestDoc `json:"request"`
}

// ScanRequest walks a full request document, covering auth config and
// form fields that a flat text scan would miss.
func (c *SecretServiceRPC) ScanRequest(w http.ResponseWriter, r *http.Request) {
	var in scanDocRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return
	}
	findings := secretscan.ScanRequest(treqfile.ToModel(in.Request))
	if findings == nil {
		findings = []secretscan.Finding{}
	}
	api.WriteJSON(w, http.StatusOK, scanResponse{Findings: findings})
}
