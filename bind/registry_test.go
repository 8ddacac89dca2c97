package bind

import (
	"github.com/bronystylecrazy/amvisie/hint"
)

var registry = func() *hint.Registry {
	r := hint.NewRegistry()
	hint.Register[person](r)
	return r
}()
