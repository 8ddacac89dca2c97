package dispatch

import (
	"context"

	"github.com/bronystylecrazy/amvisie/bind"
	"github.com/bronystylecrazy/amvisie/body"
	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/web"
)

// Request is the transport-independent view of an incoming call.
type Request struct {
	Verb        string
	Body        []byte
	ContentType string
	// Query holds the decoded query string. Values are not escaped.
	Query     body.Fields
	RouteData map[string]string
	// RouteMethod names the method suffix configured on the route, for
	// example "Image" for GetImage. Empty means convention mode.
	RouteMethod string
}

// MethodContext describes the call about to be made. A hook that sets
// Response skips the invocation.
type MethodContext struct {
	Controller *controller.Controller
	Method     *controller.Method
	Request    *Request
	Body       *body.ParsedBody
	Arguments  *bind.Arguments
	Response   *web.Response
}

// BeforeMethodCaller is implemented by controllers that inspect or
// short-circuit calls.
type BeforeMethodCaller interface {
	BeforeMethodCall(ctx context.Context, mc *MethodContext)
}

// Hook runs before every invocation, ahead of the controller's own
// BeforeMethodCall.
type Hook func(ctx context.Context, mc *MethodContext)

type methodContextKey struct{}

func withMethodContext(ctx context.Context, mc *MethodContext) context.Context {
	return context.WithValue(ctx, methodContextKey{}, mc)
}

// FromContext returns the MethodContext of the call in progress.
func FromContext(ctx context.Context) (*MethodContext, bool) {
	mc, ok := ctx.Value(methodContextKey{}).(*MethodContext)
	return mc, ok
}
