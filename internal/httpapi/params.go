/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package httpapi

import "context"

type paramsKey struct{}

func withParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// PathParam returns a named path parameter bound by the Router, or "" if
// the current request has none by that name.
func PathParam(ctx context.Context, name string) string {
	params, ok := ctx.Value(paramsKey{}).(map[string]string)
	if !ok {
		return ""
	}
	return params[name]
}
