//nolint:revive // exported
package checker

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-json"

	"github.com/reqforge/reqforge/pkg/errmap"
	"github.com/reqforge/reqforge/pkg/model/mresponse"
)

// ErrEmptyExpression rejects blank assertion strings before compilation.
var ErrEmptyExpression = errors.New("empty expression")

type compileMode int8

const (
	compileModeAny compileMode = iota
	compileModeBool
)

type expressionPhase int8

const (
	phaseCompile expressionPhase = iota
	phaseRun
)

type programCacheKey struct {
	expression string
	mode       compileMode
}

// programCache memoizes compiled assertions; runs and handlers re-check
// the same expressions constantly.
var programCache sync.Map // map[programCacheKey]*vm.Program

// compileEnv fixes the shape assertions compile against, so cached
// programs never depend on which response happened to compile them first.
var compileEnv = map[string]any{
	"status":     0,
	"statusText": "",
	"headers":    map[string]string{},
	"body":       "",
	"json":       nil,
	"durationMs": float64(0),
	"size":       int64(0),
}

// Result is the outcome of one assertion against a response.
type Result struct {
	Expression string `json:"expression"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
}

// Env builds the evaluation environment an assertion sees. Header names
// are lowercased for lookup; json holds the parsed body or nil when the
// body is not valid JSON.
func Env(resp mresponse.Response) map[string]any {
	headers := make(map[string]string, len(resp.Headers))
	for _, h := range resp.Headers {
		headers[strings.ToLower(h.Key)] = h.Value
	}
	body := mresponse.DecodeBody(resp)

	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		parsed = nil
	}

	return map[string]any{
		"status":     resp.Status,
		"statusText": resp.StatusText,
		"headers":    headers,
		"body":       body,
		"json":       parsed,
		"durationMs": resp.Timing.TotalMillis,
		"size":       resp.ResponseSize.TotalBytes,
	}
}

// EvalBool compiles (or reuses) an assertion and evaluates it against a
// response environment.
func EvalBool(expression string, env map[string]any) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, ErrEmptyExpression
	}
	program, err := compileProgram(expression, compileModeBool)
	if err != nil {
		return false, err
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, wrapExpressionError(expression, phaseRun, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, wrapExpressionError(expression, phaseRun, fmt.Errorf("expression did not evaluate to bool, got %T", output))
	}
	return result, nil
}

// Eval evaluates an expression without constraining the result type.
func Eval(expression string, env map[string]any) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyExpression
	}
	program, err := compileProgram(expression, compileModeAny)
	if err != nil {
		return nil, err
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return nil, wrapExpressionError(expression, phaseRun, err)
	}
	return output, nil
}

// CheckAll evaluates each assertion independently; a broken expression
// fails its own result instead of aborting the batch.
func CheckAll(expressions []string, resp mresponse.Response) []Result {
	env := Env(resp)
	results := make([]Result, 0, len(expressions))
	for _, expression := range expressions {
		passed, err := EvalBool(expression, env)
		result := Result{Expression: expression, Passed: passed}
		if err != nil {
			result.Passed = false
			result.Error = errmap.Friendly(err)
		}
		results = append(results, result)
	}
	return results
}

func compileProgram(expression string, mode compileMode) (*vm.Program, error) {
	key := programCacheKey{expression: expression, mode: mode}
	if cached, ok := programCache.Load(key); ok {
		return cached.(*vm.Program), nil
	}

	options := []expr.Option{expr.Env(compileEnv)}
	switch mode {
	case compileModeBool:
		options = append(options, expr.AsBool())
	default:
		options = append(options, expr.AsAny())
	}

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, wrapExpressionError(expression, phaseCompile, err)
	}
	programCache.Store(key, program)
	return program, nil
}

func wrapExpressionError(expression string, phase expressionPhase, err error) error {
	if err == nil {
		return nil
	}

	code := errmap.CodeExpressionRuntime
	phaseVerb := "evaluating"
	if phase == phaseCompile {
		code = errmap.CodeExpressionSyntax
		phaseVerb = "parsing"
	}

	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		location := ""
		if fileErr.Line > 0 {
			location = fmt.Sprintf(" at line %d", fileErr.Line)
			if column := fileErr.Column + 1; column > 0 {
				location += fmt.Sprintf(" column %d", column)
			}
		}
		message := fmt.Sprintf("error %s expression%s: %s", phaseVerb, location, fileErr.Message)
		if snippet := fileErr.Snippet; snippet != "" {
			message += snippet
		}
		return errmap.New(code, message, err)
	}

	return errmap.New(code, fmt.Sprintf("error %s expression: %v", phaseVerb, err), err)
}
