package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fr830/gpytorch/constraints"
	"github.com/fr830/gpytorch/tensor"
)

var (
	ErrDuplicate = errors.New("params: name already registered")
	ErrUnknown   = errors.New("params: unknown name")
)

// Prior is a univariate density placed independently on every element of a
// constrained value. gonum's distuv distributions satisfy it.
type Prior interface {
	LogProb(x float64) float64
	Rand() float64
}

// Accessor reads and writes the constrained value a prior is placed on.
type Accessor struct {
	Get func() *tensor.Tensor
	Set func(v *tensor.Tensor) error
}

// NamedPrior is a prior registered on a module.
type NamedPrior struct {
	Name     string
	Prior    Prior
	Accessor Accessor
}

// NamedParameter pairs a parameter with its dotted path from the root
// module.
type NamedParameter struct {
	Name      string
	Parameter *Parameter
}

type child struct {
	name   string
	module *Module
}

// Module is a registry of parameters, constraints, priors and child modules.
// The zero value is not usable; call NewModule.
type Module struct {
	params      []*Parameter
	byName      map[string]*Parameter
	constraints map[string]constraints.Constraint
	priors      []NamedPrior
	children    []child
}

func NewModule() *Module {
	return &Module{
		params:      make([]*Parameter, 0, 1),
		byName:      make(map[string]*Parameter),
		constraints: make(map[string]constraints.Constraint),
	}
}

func (m *Module) RegisterParameter(p *Parameter) error {
	if _, ok := m.byName[p.Name()]; ok {
		return fmt.Errorf("%w: parameter %q", ErrDuplicate, p.Name())
	}
	m.params = append(m.params, p)
	m.byName[p.Name()] = p
	return nil
}

// RegisterConstraint attaches c to an already registered parameter.
func (m *Module) RegisterConstraint(param string, c constraints.Constraint) error {
	if _, ok := m.byName[param]; !ok {
		return fmt.Errorf("%w: parameter %q", ErrUnknown, param)
	}
	m.constraints[param] = c
	return nil
}

func (m *Module) RegisterPrior(name string, prior Prior, acc Accessor) error {
	for _, p := range m.priors {
		if p.Name == name {
			return fmt.Errorf("%w: prior %q", ErrDuplicate, name)
		}
	}
	m.priors = append(m.priors, NamedPrior{Name: name, Prior: prior, Accessor: acc})
	return nil
}

func (m *Module) AddChild(name string, c *Module) error {
	for _, ch := range m.children {
		if ch.name == name {
			return fmt.Errorf("%w: child %q", ErrDuplicate, name)
		}
	}
	m.children = append(m.children, child{name: name, module: c})
	return nil
}

// Parameter looks up a parameter by dotted path.
func (m *Module) Parameter(name string) (*Parameter, bool) {
	owner, leaf, ok := m.resolve(name)
	if !ok {
		return nil, false
	}
	p, ok := owner.byName[leaf]
	return p, ok
}

// Constraint returns the constraint registered on a parameter path.
func (m *Module) Constraint(name string) (constraints.Constraint, bool) {
	owner, leaf, ok := m.resolve(name)
	if !ok {
		return nil, false
	}
	c, ok := owner.constraints[leaf]
	return c, ok
}

func (m *Module) resolve(name string) (*Module, string, bool) {
	head, rest, nested := strings.Cut(name, ".")
	if !nested {
		return m, name, true
	}
	for _, ch := range m.children {
		if ch.name == head {
			return ch.module.resolve(rest)
		}
	}
	return nil, "", false
}

// NamedParameters lists parameters depth first, own parameters before those
// of children, in registration order.
func (m *Module) NamedParameters() []NamedParameter {
	return m.namedParameters("")
}

func (m *Module) namedParameters(prefix string) []NamedParameter {
	out := make([]NamedParameter, 0, len(m.params))
	for _, p := range m.params {
		out = append(out, NamedParameter{Name: prefix + p.Name(), Parameter: p})
	}
	for _, ch := range m.children {
		out = append(out, ch.module.namedParameters(prefix+ch.name+".")...)
	}
	return out
}

// Priors lists registered priors with dotted names, children included.
func (m *Module) Priors() []NamedPrior {
	return m.namedPriors("")
}

func (m *Module) namedPriors(prefix string) []NamedPrior {
	out := make([]NamedPrior, 0, len(m.priors))
	for _, p := range m.priors {
		p.Name = prefix + p.Name
		out = append(out, p)
	}
	for _, ch := range m.children {
		out = append(out, ch.module.namedPriors(prefix+ch.name+".")...)
	}
	return out
}

// Initialize overwrites a raw parameter. v is broadcast to the parameter's
// shape.
func (m *Module) Initialize(name string, v *tensor.Tensor) error {
	p, ok := m.Parameter(name)
	if !ok {
		return fmt.Errorf("%w: parameter %q", ErrUnknown, name)
	}
	if err := p.Tensor().CopyFrom(v); err != nil {
		return fmt.Errorf("params: initialize %s: %w", name, err)
	}
	return nil
}

// LogPrior sums the log-density of every registered prior over every element
// of the value its accessor returns.
func (m *Module) LogPrior() float64 {
	total := 0.0
	for _, p := range m.Priors() {
		for _, x := range p.Accessor.Get().Data() {
			total += p.Prior.LogProb(x)
		}
	}
	return total
}

// SampleFromPrior draws one value per element from the named prior and
// writes the draw through its accessor.
func (m *Module) SampleFromPrior(name string) error {
	for _, p := range m.Priors() {
		if p.Name != name {
			continue
		}
		draw := p.Accessor.Get().Apply(func(float64) float64 {
			return p.Prior.Rand()
		})
		if err := p.Accessor.Set(draw); err != nil {
			return fmt.Errorf("params: sample %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("%w: prior %q", ErrUnknown, name)
}
