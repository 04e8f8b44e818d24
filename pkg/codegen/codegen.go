//nolint:revive // exported
package codegen

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/reqforge/reqforge/pkg/fuzzyfinder"
	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/translate/tcurl"
	"github.com/reqforge/reqforge/pkg/translate/tfetch"
	"github.com/reqforge/reqforge/pkg/translate/tgohttp"
	"github.com/reqforge/reqforge/pkg/translate/tguzzle"
	"github.com/reqforge/reqforge/pkg/translate/tjavahttp"
	"github.com/reqforge/reqforge/pkg/translate/trequests"
	"github.com/reqforge/reqforge/pkg/translate/treqwest"
)

// Target is one snippet language the registry can render.
type Target struct {
	ID       string
	Aliases  []string
	Label    string
	Generate func(mrequest.Request) string
}

// targets holds the registry in presentation order. curl stays first
// because it doubles as the fallback for unknown ids.
var targets = []Target{
	{ID: "curl", Aliases: []string{"shell"}, Label: "cURL", Generate: tcurl.Build},
	{ID: "fetch", Aliases: []string{"javascript", "js"}, Label: "JavaScript fetch", Generate: tfetch.Generate},
	{ID: "python", Aliases: []string{"py", "requests"}, Label: "Python requests", Generate: trequests.Generate},
	{ID: "go", Aliases: []string{"golang"}, Label: "Go net/http", Generate: tgohttp.Generate},
	{ID: "rust", Aliases: []string{"reqwest"}, Label: "Rust reqwest", Generate: treqwest.Generate},
	{ID: "java", Label: "Java HttpClient", Generate: tjavahttp.Generate},
	{ID: "php", Aliases: []string{"guzzle"}, Label: "PHP Guzzle", Generate: tguzzle.Generate},
}

// Targets returns the registry in presentation order.
func Targets() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// Lookup resolves an id or alias to its target. Matching trims whitespace
// and ignores case.
func Lookup(id string) (Target, bool) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	for _, target := range targets {
		if target.ID == normalized {
			return target, true
		}
		for _, alias := range target.Aliases {
			if alias == normalized {
				return target, true
			}
		}
	}
	return Target{}, false
}

// Render produces the snippet for the given target id. Unknown ids fall
// back to curl so the call never fails.
func Render(id string, req mrequest.Request) string {
	target, ok := Lookup(id)
	if !ok {
		target = targets[0]
	}
	return target.Generate(req)
}

// Suggest proposes the canonical id closest to a misspelled input.
func Suggest(input string) (string, bool) {
	keys := make([]string, 0, len(targets)*2)
	for _, target := range targets {
		keys = append(keys, target.ID)
		keys = append(keys, target.Aliases...)
	}
	match, ok := fuzzyfinder.Best(keys, strings.TrimSpace(input))
	if !ok {
		return "", false
	}
	target, ok := Lookup(match)
	if !ok {
		return "", false
	}
	return target.ID, true
}

// RenderAll renders every registered target and keys the result by id.
// Generation is pure per target, so the renders run concurrently.
func RenderAll(ctx context.Context, req mrequest.Request) (map[string]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	rendered := make([]string, len(targets))
	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rendered[i] = target.Generate(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(targets))
	for i, target := range targets {
		out[target.ID] = rendered[i]
	}
	return out, nil
}
