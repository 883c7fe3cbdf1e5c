package stdresp

// Group is a collection of routes under a shared prefix with shared
// middleware and a shared response declaration.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	contract   Contract
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupMiddleware adds middleware to the group.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// WithGroupStandardResponse declares a standard response for every route
// in the group. A route's own declaration overrides the response type and
// adds to the enabled features.
func WithGroupStandardResponse(s StandardResponse) GroupOption {
	return func(g *Group) {
		g.contract = s.contract()
	}
}

// WithGroupRawResponse declares a raw response for every route in the
// group unless a route declares otherwise.
func WithGroupRawResponse(raw RawResponse) GroupOption {
	return func(g *Group) {
		g.contract = raw.contract()
	}
}

// Group creates a new route group with the given prefix and options.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{
		router: r,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// addRoute implements Registrar for Group.
func (g *Group) addRoute(ri routeInfo) {
	ri.pattern = g.prefix + ri.pattern
	g.router.addRoute(ri)
}

func (g *Group) owner() *Router { return g.router }

func (g *Group) pathPrefix() string { return g.prefix }

func (g *Group) routeMiddleware() []Middleware { return g.middleware }

func (g *Group) groupContract() Contract { return g.contract }
