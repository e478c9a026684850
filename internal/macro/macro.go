// Package macro builds the execution context handed to a macro: one source
// unit plus an explicit table of named capabilities such as exact_src.
package macro

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mvp-joe/exactsrc/internal/exactsrc"
	"github.com/mvp-joe/exactsrc/internal/syntax"
)

// ExactSrcName is the capability name of the exact source hook.
const ExactSrcName = "exact_src"

var (
	// ErrDuplicate is returned when a capability name is registered twice.
	ErrDuplicate = errors.New("capability already registered")

	// ErrNoCapability is returned when a context lacks a capability.
	ErrNoCapability = errors.New("capability not available")

	// ErrCapabilityType is returned when a capability has an unexpected type.
	ErrCapabilityType = errors.New("capability has unexpected type")
)

// Unit is the compilation unit a macro runs against.
type Unit struct {
	Path    string
	Grammar *syntax.Grammar
	Buffer  *exactsrc.Buffer
}

// UnitOf returns the unit for a parsed file.
func UnitOf(f *syntax.File) Unit {
	return Unit{Path: f.Path, Grammar: f.Grammar(), Buffer: f.Buffer()}
}

// Provider builds a capability for one execution context.
type Provider func(ctx *Context) any

// Table maps capability names to providers. It is built once and shared by
// every context bound from it; it is not safe to Register concurrently with Bind.
type Table struct {
	providers map[string]Provider
}

// NewEmptyTable returns a table with no capabilities.
func NewEmptyTable() *Table {
	return &Table{providers: make(map[string]Provider)}
}

// NewTable returns a table with exact_src registered.
func NewTable(opts ...exactsrc.Option) *Table {
	t := NewEmptyTable()
	// Cannot collide on an empty table.
	_ = t.Register(ExactSrcName, exactSrcProvider(opts...))
	return t
}

func (t *Table) Register(name string, p Provider) error {
	if _, ok := t.providers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	t.providers[name] = p
	return nil
}

// Names returns the registered capability names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.providers))
	for name := range t.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind creates the context for one macro execution against unit.
func (t *Table) Bind(unit Unit, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	ctx := &Context{
		ID:     id,
		Unit:   unit,
		Logger: logger.With(zap.String("context", id), zap.String("path", unit.Path)),
		caps:   make(map[string]any, len(t.providers)),
	}
	for name, p := range t.providers {
		ctx.caps[name] = p(ctx)
	}
	return ctx
}

// Context is what a single macro execution sees.
type Context struct {
	ID     string
	Unit   Unit
	Logger *zap.Logger

	caps map[string]any
}

func (c *Context) Lookup(name string) (any, bool) {
	v, ok := c.caps[name]
	return v, ok
}

// ExactSource returns the context's exact_src hook.
func ExactSource(c *Context) (exactsrc.Func, error) {
	v, ok := c.Lookup(ExactSrcName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCapability, ExactSrcName)
	}
	fn, ok := v.(exactsrc.Func)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrCapabilityType, ExactSrcName, v)
	}
	return fn, nil
}

func exactSrcProvider(opts ...exactsrc.Option) Provider {
	return func(ctx *Context) any {
		bound := exactsrc.Bind(ctx.Unit.Buffer, ctx.Unit.Grammar.Oracle(), opts...)
		return exactsrc.Func(func(nodes ...exactsrc.Node) (string, error) {
			text, err := bound(nodes...)
			if err != nil {
				payload, _ := exactsrc.PayloadOf(err)
				ctx.Logger.Debug("exact_src unverified",
					zap.Stringer("start", exactsrc.Run(nodes).First().Start()),
					zap.Stringer("end", exactsrc.Run(nodes).Last().End()),
					zap.String("payload", payload),
					zap.Error(err))
			}
			return text, err
		})
	}
}
