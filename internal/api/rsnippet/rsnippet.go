//nolint:revive // exported
package rsnippet

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/reqforge/reqforge/internal/api"
	"github.com/reqforge/reqforge/pkg/cachettl"
	"github.com/reqforge/reqforge/pkg/codegen"
	"github.com/reqforge/reqforge/pkg/contenthash"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

const (
	cacheTTL   = 5 * time.Minute
	cacheSweep = time.Minute
)

type SnippetServiceRPC struct {
	cache  *cachettl.Cache[string, string]
	hasher *contenthash.Hasher
}

func New() *SnippetServiceRPC {
	return &SnippetServiceRPC{
		cache:  cachettl.New[string, string](cacheTTL, cacheSweep),
		hasher: contenthash.New(),
	}
}

// Close stops the cache sweeper.
func (c *SnippetServiceRPC) Close() {
	c.cache.Close()
}

func CreateService(srv *SnippetServiceRPC) *api.Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/snippet.v1.SnippetService/Render", srv.Render)
	mux.HandleFunc("/snippet.v1.SnippetService/RenderAll", srv.RenderAll)
	mux.HandleFunc("/snippet.v1.SnippetService/Targets", srv.Targets)
	return &api.Service{Path: "/snippet.v1.SnippetService/", Handler: mux}
}

type renderRequest struct {
	Target  string              `json:"target"`
	Request treqfile.RequestDoc `json:"request"`
}

type renderResponse struct {
	Target  string `json:"target"`
	Snippet string `json:"snippet"`
}

// Render produces one snippet. Unknown targets fall back to curl; the
// resolved id is echoed so clients see which generator ran.
func (c *SnippetServiceRPC) Render(w http.ResponseWriter, r *http.Request) {
	var in renderRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return
	}

	target, ok := codegen.Lookup(in.Target)
	if !ok {
		target, _ = codegen.Lookup("curl")
	}

	key, err := c.hasher.HashStruct(renderRequest{Target: target.ID, Request: in.Request})
	if err == nil {
		if snippet, hit := c.cache.Get(key); hit {
			api.WriteJSON(w, http.StatusOK, renderResponse{Target: target.ID, Snippet: snippet})
			return
		}
	}

	snippet := target.Generate(treqfile.ToModel(in.Request))
	if err == nil {
		c.cache.Set(key, snippet)
		slog.Debug("render cached", "target", target.ID, "entries", c.cache.Len())
	}
	api.WriteJSON(w, http.StatusOK, renderResponse{Target: target.ID, Snippet: snippet})
}

type renderAllRequest struct {
	Request treqfile.RequestDoc `json:"request"`
}

type renderAllResponse struct {
	Snippets map[string]string `json:"snippets"`
}

func (c *SnippetServiceRPC) RenderAll(w http.ResponseWriter, r *http.Request) {
	var in renderAllRequest
	if err := api.ReadJSON(w, r, &in); err != nil {
		api.WriteError(w, err)
		return
	}
	snippets, err := codegen.RenderAll(r.Context(), treqfile.ToModel(in.Request))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, renderAllResponse{Snippets: snippets})
}

type targetInfo struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
	Label   string   `json:"label"`
}

type targetsResponse struct {
	Targets []targetInfo `json:"targets"`
}

func (c *SnippetServiceRPC) Targets(w http.ResponseWriter, r *http.Request) {
	all := codegen.Targets()
	out := targetsResponse{Targets: make([]targetInfo, 0, len(all))}
	for _, t := range all {
		out.Targets = append(out.Targets, targetInfo{ID: t.ID, Aliases: t.Aliases, Label: t.Label})
	}
	api.WriteJSON(w, http.StatusOK, out)
}
