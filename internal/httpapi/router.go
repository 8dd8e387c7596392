/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

// Package httpapi is the control-plane HTTP surface: a trie router, the
// middleware chain (panic recovery, request metrics, compression, auth,
// rate limiting), and the handlers backing every route in the external
// interface. Adapted from the teacher's internal/router XyRouter and
// internal/server CompressionMiddleware, generalized from routing to
// static-file/JS-worker targets into routing straight to http.HandlerFunc.
package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// RouteInfo describes one registered route for introspection (ListRoutes)
// and dispatch.
type RouteInfo struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// RouterStats mirrors the teacher's atomic lookup counters.
type RouterStats struct {
	TotalLookups  uint64
	FailedLookups uint64
}

// node is one path segment in the routing trie. Static children live in a
// map for O(1) exact lookup; named and wildcard children are singletons per
// level, checked in static > param > wildcard priority order.
type node struct {
	staticMap map[string]*node
	param     *node
	wild      *node

	route     *RouteInfo
	paramName string
}

func newNode() *node {
	return &node{staticMap: make(map[string]*node, 4)}
}

var partsPool = sync.Pool{
	New: func() any {
		s := make([]string, 0, 16)
		return &s
	},
}

func splitPath(path string) *[]string {
	ptr := partsPool.Get().(*[]string)
	parts := (*ptr)[:0]
	path = strings.Trim(path, "/")
	for path != "" {
		i := strings.IndexByte(path, '/')
		if i < 0 {
			parts = append(parts, path)
			break
		}
		if i > 0 {
			parts = append(parts, path[:i])
		}
		path = path[i+1:]
	}
	*ptr = parts
	return ptr
}

func putParts(ptr *[]string) { partsPool.Put(ptr) }

// Router is a method-keyed trie router dispatching directly to
// http.HandlerFunc values.
type Router struct {
	mu    sync.RWMutex
	roots map[string]*node

	totalLookups  uint64
	failedLookups uint64
}

// NewRouter constructs an empty Router.
func NewRouter() *Router {
	return &Router{roots: make(map[string]*node, 8)}
}

// Handle registers a handler for method+path. path segments prefixed with
// ":" bind a named parameter; a segment prefixed with "*" is a terminal
// wildcard capturing the remainder of the path.
func (r *Router) Handle(method, path string, handler http.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	method = strings.ToUpper(method)
	root, ok := r.roots[method]
	if !ok {
		root = newNode()
		r.roots[method] = root
	}

	info := &RouteInfo{Method: method, Path: path, Handler: handler}

	if path == "/" || path == "" {
		root.route = info
		return
	}

	ptr := splitPath(path)
	parts := *ptr
	curr := root

	for _, part := range parts {
		switch {
		case strings.HasPrefix(part, "*"):
			if curr.wild == nil {
				curr.wild = newNode()
				curr.wild.paramName = part[1:]
			}
			curr = curr.wild
		case strings.HasPrefix(part, ":"):
			if curr.param == nil {
				curr.param = newNode()
				curr.param.paramName = part[1:]
			}
			curr = curr.param
		default:
			child, exists := curr.staticMap[part]
			if !exists {
				child = newNode()
				curr.staticMap[part] = child
			}
			curr = child
		}
	}
	putParts(ptr)
	curr.route = info
}

// Match looks up the route for method+path, returning the matched route and
// any bound path parameters.
func (r *Router) Match(method, path string) (*RouteInfo, map[string]string) {
	atomic.AddUint64(&r.totalLookups, 1)

	r.mu.RLock()
	defer r.mu.RUnlock()

	root, ok := r.roots[strings.ToUpper(method)]
	if !ok {
		atomic.AddUint64(&r.failedLookups, 1)
		return nil, nil
	}

	if path == "/" || path == "" {
		if root.route != nil {
			return root.route, map[string]string{}
		}
		atomic.AddUint64(&r.failedLookups, 1)
		return nil, nil
	}

	ptr := splitPath(path)
	parts := *ptr
	params := make(map[string]string, 4)
	found := matchNode(root, parts, params)
	putParts(ptr)

	if found != nil {
		return found, params
	}
	atomic.AddUint64(&r.failedLookups, 1)
	return nil, nil
}

func matchNode(curr *node, parts []string, params map[string]string) *RouteInfo {
	if len(parts) == 0 {
		return curr.route
	}

	part := parts[0]
	rest := parts[1:]

	if child, ok := curr.staticMap[part]; ok {
		if ri := matchNode(child, rest, params); ri != nil {
			return ri
		}
	}

	if curr.param != nil {
		params[curr.param.paramName] = part
		if ri := matchNode(curr.param, rest, params); ri != nil {
			return ri
		}
		delete(params, curr.param.paramName)
	}

	if curr.wild != nil {
		params[curr.wild.paramName] = strings.Join(parts, "/")
		return curr.wild.route
	}

	return nil
}

// ServeHTTP makes Router usable directly as an http.Handler; unmatched
// routes get a plain 404.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	route, params := r.Match(req.Method, req.URL.Path)
	if route == nil {
		http.NotFound(w, req)
		return
	}
	if len(params) > 0 {
		req = req.WithContext(withParams(req.Context(), params))
	}
	route.Handler(w, req)
}

// Stats returns the atomic lookup counters.
func (r *Router) Stats() RouterStats {
	return RouterStats{
		TotalLookups:  atomic.LoadUint64(&r.totalLookups),
		FailedLookups: atomic.LoadUint64(&r.failedLookups),
	}
}
