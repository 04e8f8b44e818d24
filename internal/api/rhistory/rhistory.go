//nolint:revive // exported
package rhistory

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/reqforge/reqforge/internal/api"
	"github.com/reqforge/reqforge/pkg/errmap"
	"github.com/reqforge/reqforge/pkg/history"
	"github.com/reqforge/reqforge/pkg/idwrap"
)

type HistoryServiceRPC struct {
	store *history.Store
}

func New(store *history.Store) *HistoryServiceRPC {
	return &HistoryServiceRPC{store: store}
}

func CreateService(srv *HistoryServiceRPC) *api.Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/history.v1.HistoryService/List", srv.List)
	mux.HandleFunc("/history.v1.HistoryService/Get", srv.Get)
	mux.HandleFunc("/history.v1.HistoryService/Delete", srv.Delete)
	mux.HandleFunc("/history.v1.HistoryService/Clear", srv.Clear)
	return &api.Service{Path: "/history.v1.HistoryService/", Handler: mux}
}

type entrySummary struct {
	ID             string  `json:"id"`
	ExecutedAt     string  `json:"executed_at"`
	Method         string  `json:"method"`
	URL            string  `json:"url"`
	Status         int     `json:"status,omitempty"`
	DurationMillis float64 `json:"duration_ms,omitempty"`
	ResponseSize   int64   `json:"response_size,omitempty"`
	Error          string  `json:"error,omitempty"`
}

func summarize(e history.Entry) entrySummary {
	return entrySummary{
		ID:             e.ID.String(),
		ExecutedAt:     e.ExecutedAt.Format(time.RFC3339Nano),
		Method:         e.Method,
		URL:            e.URL,
		Status:         e.Status,
		DurationMillis: e.DurationMillis,
		ResponseSize:   e.ResponseSize,
		Error:          e.Error,
	}
}

type listRequest struct {
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Query  string `json:"query,omitempty"`
}

type listResponse struct {
	Entries []entrySummary `json:"entries"`
	Total   int64          `json:"total"`
}

// List pages through entries newest first; a query switches to search.
func (c *HistoryServiceRPC) List(w http.ResponseWriter, r *http.Request) {
	var in listRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return
	}

	var (
		entries []history.Entry
		err     error
	)
	if in.Query != "" {
		entries, err = c.store.Search(r.Context(), in.Query, in.Limit)
	} else {
		entries, err = c.store.List(r.Context(), in.Limit, in.Offset)
	}
	if err != nil {
		api.WriteError(w, err)
		return
	}
	total, err := c.store.Count(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}

	out := listResponse{Entries: make([]entrySummary, 0, len(entries)), Total: total}
	for _, e := range entries {
		out.Entries = append(out.Entries, summarize(e))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

type idRequest struct {
	ID string `json:"id"`
}

type getResponse struct {
	Entry   entrySummary    `json:"entry"`
	Request json.RawMessage `json:"request,omitempty"`
}

func (c *HistoryServiceRPC) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := c.readID(w, r)
	if !ok {
		return
	}
	entry, err := c.store.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		api.WriteErrorStatus(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, getResponse{Entry: summarize(entry), Request: entry.RequestDoc})
}

func (c *HistoryServiceRPC) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.readID(w, r)
	if !ok {
		return
	}
	err := c.store.Delete(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		api.WriteErrorStatus(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, struct {
		Deleted bool `json:"deleted"`
	}{Deleted: true})
}

func (c *HistoryServiceRPC) Clear(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Clear(r.Context()); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, struct {
		Cleared bool `json:"cleared"`
	}{Cleared: true})
}

func (c *HistoryServiceRPC) readID(w http.ResponseWriter, r *http.Request) (idwrap.IDWrap, bool) {
	var in idRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return idwrap.IDWrap{}, false
	}
	id, err := idwrap.NewText(in.ID)
	if err != nil {
		api.WriteError(w, errmap.New(errmap.CodeBadRequest, "invalid entry id", err))
		return idwrap.IDWrap{}, false
	}
	return id, true
}
