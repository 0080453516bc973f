package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
)

const dispatchLogPrefix = "rpc:dispatch"

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// ServiceEntry registers one service interface with the dispatch table. Iface
// must be an interface type; Impl, when non-nil, must implement it. Impl may
// be left nil when the table is used for method resolution only.
type ServiceEntry struct {
	Name  string
	Iface reflect.Type
	Impl  any
}

// InterfaceType returns the interface type behind a nil interface pointer,
// e.g. InterfaceType((*services.AccountService)(nil)).
func InterfaceType(ptr any) reflect.Type {
	return reflect.TypeOf(ptr).Elem()
}

// MethodTable maps method names to their owning service. It is built once at
// startup from the ordered service list and is read-only afterward, so
// lookups are safe from any number of goroutines.
type MethodTable struct {
	services map[string]ServiceEntry
	methods  map[string]string
}

// NewMethodTable builds the table by enumerating the declared methods of each
// entry's interface. A method name declared by two services is a
// configuration error and fails table construction; silent override at
// startup would surface only as misrouted calls in production.
func NewMethodTable(entries ...ServiceEntry) (*MethodTable, error) {
	t := &MethodTable{
		services: make(map[string]ServiceEntry, len(entries)),
		methods:  make(map[string]string),
	}
	for _, entry := range entries {
		if entry.Iface == nil || entry.Iface.Kind() != reflect.Interface {
			return nil, fmt.Errorf("%s - service %q: Iface must be an interface type", dispatchLogPrefix, entry.Name)
		}
		if entry.Impl != nil && !reflect.TypeOf(entry.Impl).Implements(entry.Iface) {
			return nil, fmt.Errorf("%s - service %q: %T does not implement %s", dispatchLogPrefix, entry.Name, entry.Impl, entry.Iface)
		}
		if _, dup := t.services[entry.Name]; dup {
			return nil, fmt.Errorf("%s - service %q registered twice", dispatchLogPrefix, entry.Name)
		}
		t.services[entry.Name] = entry

		for i := 0; i < entry.Iface.NumMethod(); i++ {
			name := entry.Iface.Method(i).Name
			if owner, dup := t.methods[name]; dup {
				return nil, fmt.Errorf("%s - method %q declared by both %q and %q", dispatchLogPrefix, name, owner, entry.Name)
			}
			t.methods[name] = entry.Name
		}
	}
	return t, nil
}

// ServiceFor resolves a method name to its owning service name.
func (t *MethodTable) ServiceFor(method string) (string, bool) {
	name, ok := t.methods[method]
	return name, ok
}

func (t *MethodTable) entryFor(method string) (ServiceEntry, bool) {
	name, ok := t.methods[method]
	if !ok {
		return ServiceEntry{}, false
	}
	entry, ok := t.services[name]
	return entry, ok
}

// Dispatcher routes decoded request envelopes to the owning service
// implementation.
type Dispatcher struct {
	table *MethodTable
}

// NewDispatcher creates a Dispatcher over a method table.
func NewDispatcher(table *MethodTable) *Dispatcher {
	return &Dispatcher{table: table}
}

// Dispatch invokes the service method named by the envelope with its decoded
// positional parameters and wraps the outcome in a response envelope. Service
// errors map through CodeOf; a panic in service code is recovered into an
// internal failure so one bad call cannot take the transport down.
func (d *Dispatcher) Dispatch(ctx context.Context, env *RequestEnvelope) (resp *ResponseEnvelope) {
	slog.Debug(fmt.Sprintf("%s - method=%s service=%s params=%d", dispatchLogPrefix, env.Method, env.Service, len(env.Params)))

	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("%s - panic in %s: %v", dispatchLogPrefix, env.Method, r))
			resp = Failure(Errorf(CodeInternal, "internal error in %s", env.Method))
		}
	}()

	entry, ok := d.table.entryFor(env.Method)
	if !ok {
		return Failure(Errorf(CodeUnknownMethod, "invalid service request: unknown method %q", env.Method))
	}
	if entry.Impl == nil {
		return Failure(Errorf(CodeInternal, "service %q has no bound implementation", entry.Name))
	}

	method := reflect.ValueOf(entry.Impl).MethodByName(env.Method)
	if !method.IsValid() {
		return Failure(Errorf(CodeInternal, "service %q does not expose method %q", entry.Name, env.Method))
	}

	args, err := buildArgs(ctx, method.Type(), env)
	if err != nil {
		return Failure(err)
	}

	out := method.Call(args)
	if len(out) > 0 {
		if last := out[len(out)-1]; last.Type().Implements(errType) {
			if !last.IsNil() {
				return Failure(last.Interface().(error))
			}
			out = out[:len(out)-1]
		}
	}
	if len(out) == 0 {
		return Success(nil)
	}
	return Success(out[0].Interface())
}

// buildArgs converts the envelope's decoded parameters to the method's
// parameter types, prepending the call context when the method accepts one.
func buildArgs(ctx context.Context, mt reflect.Type, env *RequestEnvelope) ([]reflect.Value, error) {
	offset := 0
	if mt.NumIn() > 0 && mt.In(0) == ctxType {
		offset = 1
	}
	if mt.NumIn()-offset != len(env.Params) {
		return nil, Errorf(CodeBadParameterType, "method %s takes %d parameters, got %d",
			env.Method, mt.NumIn()-offset, len(env.Params))
	}

	args := make([]reflect.Value, mt.NumIn())
	if offset == 1 {
		args[0] = reflect.ValueOf(ctx)
	}
	for i, param := range env.Params {
		want := mt.In(offset + i)
		arg, err := convertArg(param, want)
		if err != nil {
			return nil, Errorf(CodeBadParameterType, "parameter %d of %s: %v", i, env.Method, err)
		}
		args[offset+i] = arg
	}
	return args, nil
}

func convertArg(param any, want reflect.Type) (reflect.Value, error) {
	if param == nil {
		return reflect.Zero(want), nil
	}
	rv := reflect.ValueOf(param)
	if rv.Type().AssignableTo(want) {
		return rv, nil
	}
	if isNumericKind(rv.Kind()) && isNumericKind(want.Kind()) && rv.Type().ConvertibleTo(want) {
		return rv.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("have %s, want %s", rv.Type(), want)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
