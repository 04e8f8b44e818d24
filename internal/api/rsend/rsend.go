//nolint:revive // exported
package rsend

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/reqforge/reqforge/internal/api"
	"github.com/reqforge/reqforge/pkg/errmap"
	"github.com/reqforge/reqforge/pkg/history"
	"github.com/reqforge/reqforge/pkg/httpsender"
	"github.com/reqforge/reqforge/pkg/model/mresponse"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

type RequestServiceRPC struct {
	sender httpsender.Sender
	store  *history.Store
}

// New builds the send service. store may be nil to disable history.
func New(sender httpsender.Sender, store *history.Store) *RequestServiceRPC {
	return &RequestServiceRPC{sender: sender, store: store}
}

func CreateService(srv *RequestServiceRPC) *api.Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/request.v1.RequestService/Send", srv.Send)
	return &api.Service{Path: "/request.v1.RequestService/", Handler: mux}
}

type sendRequest struct {
	Request treqfile.RequestDoc `json:"request"`
}

type sendResponse struct {
	Response treqfile.ResponseDoc `json:"response"`
}

// Send executes the request document and returns the full exchange record.
// History persistence is best-effort; a failed write only logs.
func (c *RequestServiceRPC) Send(w http.ResponseWriter, r *http.Request) {
	var in sendRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return
	}

	req := treqfile.ToModel(in.Request)
	resp, err := c.sender.Send(r.Context(), req)
	c.persist(r.Context(), string(req.Method), in.Request, resp, err)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, sendResponse{Response: treqfile.FromResponse(resp)})
}

func (c *RequestServiceRPC) persist(ctx context.Context, method string, doc treqfile.RequestDoc, resp mresponse.Response, sendErr error) {
	if c.store == nil {
		return
	}
	raw, err := treqfile.WriteJSON(doc)
	if err != nil {
		slog.Warn("history: encoding request doc", "error", err)
		return
	}
	entry := history.Entry{
		Method:         method,
		URL:            doc.URL,
		RequestDoc:     raw,
		Status:         resp.Status,
		DurationMillis: resp.Timing.TotalMillis,
		ResponseSize:   resp.ResponseSize.TotalBytes,
	}
	if sendErr != nil {
		entry.Error = errmap.Friendly(sendErr)
	}
	if _, err := c.store.Save(ctx, entry); err != nil {
		slog.Warn("history: saving entry", "error", err)
	}
}
