//nolint:revive // exported
package rimport

import (
	"net/http"
	"strings"

	"github.com/reqforge/reqforge/internal/api"
	"github.com/reqforge/reqforge/pkg/errmap"
	"github.com/reqforge/reqforge/pkg/translate/tcurl"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

type ImportServiceRPC struct{}

func New() *ImportServiceRPC {
	return &ImportServiceRPC{}
}

func CreateService(srv *ImportServiceRPC) *api.Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/import.v1.ImportService/Curl", srv.Curl)
	return &api.Service{Path: "/import.v1.ImportService/", Handler: mux}
}

type curlRequest struct {
	Command string `json:"command"`
}

type curlResponse struct {
	Request treqfile.RequestDoc `json:"request"`
}

// Curl converts a curl command line into a request document. Parsing is
// best-effort and never fails; only an empty command is rejected.
func (c *ImportServiceRPC) Curl(w http.ResponseWriter, r *http.Request) {
	var in curlRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return
	}
	if strings.TrimSpace(in.Command) == "" {
		api.WriteError(w, errmap.New(errmap.CodeBadRequest, "command is empty", nil))
		return
	}
	req := tcurl.Parse(in.Command)
	api.WriteJSON(w, http.StatusOK, curlResponse{Request: treqfile.FromModel(req)})
}
