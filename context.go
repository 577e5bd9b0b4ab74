package conditions

// Context is the set of variables and functions available to expressions.
// Evaluation only reads a Context, so one Context may be used by concurrent
// evaluations as long as nothing calls Set or SetFunc meanwhile.
type Context struct {
	names map[string]binding
}

// binding is what a name refers to in a context.
type binding struct {
	val Value
	fn  Func
	// native is a Go value that had no Value representation.
	native any
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption(*Context)
}

type (
	varopt struct {
		name string
		val  Value
	}
	varsopt   map[string]Value
	nativeopt map[string]any
	fnopt     struct {
		name string
		fn   Func
	}
	fnsopt map[string]Func
)

func (o varopt) ctxOption(ctx *Context) {
	ctx.names[o.name] = binding{val: o.val}
}

func (o varsopt) ctxOption(ctx *Context) {
	for k, v := range o {
		ctx.names[k] = binding{val: v}
	}
}

func (o nativeopt) ctxOption(ctx *Context) {
	for k, x := range o {
		if x == nil {
			// A name bound to nothing is the same as an unbound name.
			delete(ctx.names, k)
			continue
		}
		v, err := ValueOf(x)
		if err != nil {
			ctx.names[k] = binding{native: x}
			continue
		}
		ctx.names[k] = binding{val: v}
	}
}

func (o fnopt) ctxOption(ctx *Context) {
	ctx.setFunc(o.name, o.fn)
}

func (o fnsopt) ctxOption(ctx *Context) {
	for k, f := range o {
		ctx.setFunc(k, f)
	}
}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val Value) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]Value) ContextOption {
	return varsopt(vars)
}

// SetNative sets variables from Go values as converted by ValueOf. A nil
// value leaves its name unbound. A value that ValueOf cannot convert is kept,
// and evaluating an expression that refers to it fails with a *TypeError.
func SetNative(vars map[string]any) ContextOption {
	return nativeopt(vars)
}

// SetFunc sets a function in the context. A nil fn removes the name.
func SetFunc(name string, fn Func) ContextOption {
	return fnopt{name, fn}
}

// SetFuncs sets any number of functions in the context, as by SetFunc.
func SetFuncs(fns map[string]Func) ContextOption {
	return fnsopt(fns)
}

// NewContext creates a new evaluation context.
func NewContext(opts ...ContextOption) *Context {
	var ctx Context
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{names: make(map[string]binding)}
	if ctx != nil {
		for k, v := range ctx.names {
			n.names[k] = v
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.ctxOption(&n)
	}
	return &n
}

// Set sets the value of a variable. Returns ctx for chaining. Set must not
// be called while any evaluation is using the context.
func (ctx *Context) Set(name string, value Value) *Context {
	if ctx.names == nil {
		ctx.names = make(map[string]binding)
	}
	ctx.names[name] = binding{val: value}
	return ctx
}

// SetFunc sets a function. A nil fn removes the name. Returns ctx for
// chaining. SetFunc must not be called while any evaluation is using the
// context.
func (ctx *Context) SetFunc(name string, fn Func) *Context {
	if ctx.names == nil {
		ctx.names = make(map[string]binding)
	}
	ctx.setFunc(name, fn)
	return ctx
}

func (ctx *Context) setFunc(name string, fn Func) {
	if fn == nil {
		delete(ctx.names, name)
		return
	}
	ctx.names[name] = binding{fn: fn}
}

// Lookup returns the value of a variable. The second result is false if the
// name is not bound to a value.
func (ctx *Context) Lookup(name string) (Value, bool) {
	if ctx == nil {
		return Value{}, false
	}
	b, ok := ctx.names[name]
	if !ok || b.fn != nil || b.native != nil {
		return Value{}, false
	}
	return b.val, true
}

// Func returns the function bound to a name, if any.
func (ctx *Context) Func(name string) (Func, bool) {
	if ctx == nil {
		return nil, false
	}
	b := ctx.names[name]
	return b.fn, b.fn != nil
}

// lookup gets the binding for a name.
func (ctx *Context) lookup(name string) (binding, bool) {
	if ctx == nil {
		return binding{}, false
	}
	b, ok := ctx.names[name]
	return b, ok
}
