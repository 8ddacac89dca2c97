package dispatch

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/pkg/errors"
)

var errNoController = stderrors.New("dispatch: no controller")

// InternalError is a failure during resolution, binding or invocation,
// located at the source line it originated from.
type InternalError struct {
	Err  error
	File string
	Line int
}

func (e *InternalError) Error() string { return e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

type stackTracer interface {
	StackTrace() errors.StackTrace
}

var internalPrefixes = []string{
	"runtime.",
	"reflect.",
	reflect.TypeFor[Dispatcher]().PkgPath() + ".",
	reflect.TypeFor[controller.Controller]().PkgPath() + ".",
}

func newInternalError(err error, m *controller.Method) *InternalError {
	file, line := locate(err)
	if file == "" && m != nil {
		file, line = m.Source()
	}
	return &InternalError{Err: err, File: file, Line: line}
}

// locate returns the first frame outside the runtime, reflection and this
// module's dispatch machinery, using the innermost stack trace in the chain.
func locate(err error) (string, int) {
	var st stackTracer
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if s, ok := e.(stackTracer); ok {
			st = s
		}
	}
	if st == nil {
		return "", 0
	}
	for _, f := range st.StackTrace() {
		pc := uintptr(f) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil || internalFrame(fn.Name()) {
			continue
		}
		return fn.FileLine(pc)
	}
	return "", 0
}

func internalFrame(name string) bool {
	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.WithStack(err)
	}
	return errors.WithStack(fmt.Errorf("panic: %v", r))
}
