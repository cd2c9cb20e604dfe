package liftplan

import (
	"fmt"
	"sync"
)

// NumericFunction is an interned numeric function symbol (e.g.
// "total-cost", "fuel-level"), the numeric analogue of a Predicate.
// Ground applications of a NumericFunction are interned the same way
// GroundAtoms are, and index a slot in a state's NumericVector.
type NumericFunction struct {
	Index uint32
	Name  string
	Arity int
}

func (f *NumericFunction) String() string { return f.Name }

// NumericFunctionTable interns NumericFunctions, mirroring PredicateTable.
type NumericFunctionTable struct {
	byIndex []*NumericFunction
	byName  map[string]*NumericFunction
}

// NewNumericFunctionTable returns an empty NumericFunctionTable.
func NewNumericFunctionTable() *NumericFunctionTable {
	return &NumericFunctionTable{byName: make(map[string]*NumericFunction)}
}

// Intern returns the NumericFunction named name, creating one if needed.
func (t *NumericFunctionTable) Intern(name string, arity int) *NumericFunction {
	if f, ok := t.byName[name]; ok {
		return f
	}
	f := &NumericFunction{Index: uint32(len(t.byIndex)), Name: name, Arity: arity}
	t.byIndex = append(t.byIndex, f)
	t.byName[name] = f
	return f
}

func (t *NumericFunctionTable) Lookup(name string) *NumericFunction { return t.byName[name] }
func (t *NumericFunctionTable) Len() int                            { return len(t.byIndex) }

// GroundFunction is an interned application of a NumericFunction to
// ground objects; its Index is the slot in a NumericVector.
type GroundFunction struct {
	Index    uint32
	Function *NumericFunction
	Objects  []*Object
}

func (g *GroundFunction) String() string {
	if len(g.Objects) == 0 {
		return g.Function.Name
	}
	s := g.Function.Name + "("
	for i, o := range g.Objects {
		if i > 0 {
			s += ", "
		}
		s += o.Name
	}
	return s + ")"
}

// GroundFunctionTable interns GroundFunctions, mirroring GroundAtomTable,
// including its mutex: cost and numeric-effect expressions are grounded
// on demand during search, so Intern/Lookup stay safe under concurrent
// callers (e.g. LAAG grounding several schemas at once through a
// WorkerPool).
type GroundFunctionTable struct {
	mu      sync.RWMutex
	byIndex []*GroundFunction
	byKey   map[string]*GroundFunction
}

func NewGroundFunctionTable() *GroundFunctionTable {
	return &GroundFunctionTable{byKey: make(map[string]*GroundFunction)}
}

func (t *GroundFunctionTable) Intern(f *NumericFunction, objs []*Object) *GroundFunction {
	key := groundAtomKey(&Predicate{Name: f.Name}, objs)
	t.mu.RLock()
	if g, ok := t.byKey[key]; ok {
		t.mu.RUnlock()
		return g
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.byKey[key]; ok {
		return g
	}
	objsCopy := append([]*Object(nil), objs...)
	g := &GroundFunction{Index: uint32(len(t.byIndex)), Function: f, Objects: objsCopy}
	t.byIndex = append(t.byIndex, g)
	t.byKey[key] = g
	return g
}

func (t *GroundFunctionTable) Lookup(f *NumericFunction, objs []*Object) *GroundFunction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byKey[groundAtomKey(&Predicate{Name: f.Name}, objs)]
}

func (t *GroundFunctionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byIndex)
}

// NumericVector is a dense slot-indexed store of numeric fluent values,
// the third component of UnpackedState/PackedState (spec §3).
type NumericVector struct {
	values []float64
	set    []bool
}

// NewNumericVector returns a vector sized for n ground functions, with
// every slot unset.
func NewNumericVector(n int) NumericVector {
	return NumericVector{values: make([]float64, n), set: make([]bool, n)}
}

// Clone returns an independent copy.
func (v NumericVector) Clone() NumericVector {
	values := make([]float64, len(v.values))
	copy(values, v.values)
	set := make([]bool, len(v.set))
	copy(set, v.set)
	return NumericVector{values: values, set: set}
}

// Get returns the value at slot i and whether it has been assigned. An
// unset slot defaults to 0 when read through Value, but Get exposes the
// distinction for callers that must tell "declared but unassigned" apart
// from "explicitly zero".
func (v NumericVector) Get(i uint32) (float64, bool) { return v.values[i], v.set[i] }

// Value returns the value at slot i, defaulting to 0 if unset.
func (v NumericVector) Value(i uint32) float64 { return v.values[i] }

// SetMut assigns slot i in place; used only on scratch vectors the caller
// owns exclusively (successor-state construction).
func (v NumericVector) SetMut(i uint32, val float64) {
	v.values[i] = val
	v.set[i] = true
}

// NumericOp is an arithmetic operator in a NumericExpr tree.
type NumericOp int

const (
	OpConst NumericOp = iota
	OpFunc
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
)

// NumericExpr is an arithmetic expression tree over numeric functions and
// constants (spec §3: "arithmetic expression tree over numeric variables
// and constants"). Eval grounds it on the fly: it replaces every
// Variable-tagged Term argument of an OpFunc node with the binding's
// object and looks the resulting GroundFunction's slot up in a
// NumericVector/static-value map.
type NumericExpr struct {
	Op       NumericOp
	Const    float64
	Function *NumericFunction
	Args     []Term // arguments to Function, when Op == OpFunc
	Left     *NumericExpr
	Right    *NumericExpr
}

// ConstExpr builds a constant leaf.
func ConstExpr(v float64) *NumericExpr { return &NumericExpr{Op: OpConst, Const: v} }

// FuncExpr builds a function-application leaf.
func FuncExpr(f *NumericFunction, args ...Term) *NumericExpr {
	return &NumericExpr{Op: OpFunc, Function: f, Args: args}
}

// BinExpr builds an internal binary node.
func BinExpr(op NumericOp, left, right *NumericExpr) *NumericExpr {
	return &NumericExpr{Op: op, Left: left, Right: right}
}

// NegExpr builds a unary negation node.
func NegExpr(e *NumericExpr) *NumericExpr { return &NumericExpr{Op: OpNeg, Left: e} }

// EvalContext supplies the two numeric sources a grounded expression
// reads from: the problem's static initial numeric values (immutable for
// the run) and a state's numeric vector (mutable across actions). Ground
// function lookups are resolved through Funcs.Lookup, which never
// interns; a ground function missing from Funcs is an undefined function
// reference.
type EvalContext struct {
	Funcs       *GroundFunctionTable
	StaticInit  map[uint32]float64 // GroundFunction index -> problem initial value
	State       *NumericVector      // nil when evaluating against static-only context (e.g. cost exprs)
}

// substituteTerm resolves a Term under a binding into an Object.
func substituteTerm(t Term, binding []*Object) *Object {
	if !t.IsVar() {
		return t.Object()
	}
	return binding[t.Variable().ParamIndex]
}

// Eval evaluates e after substituting binding into every function-call
// argument, returning spec §7's ArithmeticError for an undefined function
// reference or a division by zero.
func (e *NumericExpr) Eval(ctx *EvalContext, binding []*Object) (float64, error) {
	switch e.Op {
	case OpConst:
		return e.Const, nil
	case OpFunc:
		objs := make([]*Object, len(e.Args))
		for i, a := range e.Args {
			objs[i] = substituteTerm(a, binding)
		}
		gf := ctx.Funcs.Lookup(e.Function, objs)
		if gf == nil {
			return 0, &ArithmeticError{Op: e.Function.Name, Err: ErrUndefinedFunction}
		}
		if ctx.State != nil {
			if v, ok := ctx.State.Get(gf.Index); ok {
				return v, nil
			}
		}
		if v, ok := ctx.StaticInit[gf.Index]; ok {
			return v, nil
		}
		return 0, nil // declared-but-unassigned numeric function defaults to 0.
	case OpNeg:
		v, err := e.Left.Eval(ctx, binding)
		if err != nil {
			return 0, err
		}
		return -v, nil
	}

	l, err := e.Left.Eval(ctx, binding)
	if err != nil {
		return 0, err
	}
	r, err := e.Right.Eval(ctx, binding)
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, &ArithmeticError{Op: "/", Err: ErrDivideByZero}
		}
		return l / r, nil
	default:
		return 0, fmt.Errorf("liftplan: unknown numeric operator %d", e.Op)
	}
}

// Comparator is the root relational operator of a NumericConstraint.
type Comparator int

const (
	CmpLT Comparator = iota
	CmpLE
	CmpEQ
	CmpGE
	CmpGT
)

// NumericConstraint is an arithmetic expression tree over numeric
// variables and constants, with a comparison root (spec §3).
type NumericConstraint struct {
	Comparator Comparator
	Left       *NumericExpr
	Right      *NumericExpr
}

// Eval grounds and evaluates the constraint under binding, returning
// ArithmeticError unchanged from the underlying expression evaluation so
// callers (C6) can swallow it as an invalid binding (spec §7).
func (c *NumericConstraint) Eval(ctx *EvalContext, binding []*Object) (bool, error) {
	l, err := c.Left.Eval(ctx, binding)
	if err != nil {
		return false, err
	}
	r, err := c.Right.Eval(ctx, binding)
	if err != nil {
		return false, err
	}
	switch c.Comparator {
	case CmpLT:
		return l < r, nil
	case CmpLE:
		return l <= r, nil
	case CmpEQ:
		return l == r, nil
	case CmpGE:
		return l >= r, nil
	case CmpGT:
		return l > r, nil
	default:
		return false, fmt.Errorf("liftplan: unknown comparator %d", c.Comparator)
	}
}

// NumericEffectKind selects one of PDDL's five numeric effect forms
// (spec §4.9).
type NumericEffectKind int

const (
	NumAssign NumericEffectKind = iota
	NumIncrease
	NumDecrease
	NumScaleUp
	NumScaleDown
)

// NumericEffect assigns, increases, decreases, or scales a single numeric
// function by the value of an expression. Numeric effects update
// σ.numeric_variables in declaration order (spec §4.9); GroundNumericEffect
// carries the already-grounded target slot and a value expression that
// still needs evaluating against the current state (so that
// `increase x by (f x)` reads the pre-effect value of f(x), matching
// standard PDDL numeric-effect ordering).
type NumericEffect struct {
	Kind   NumericEffectKind
	Target *NumericFunction
	Args   []Term
	Value  *NumericExpr
}

// GroundNumericEffect is a NumericEffect with its target already resolved
// to a ground function slot.
type GroundNumericEffect struct {
	Kind   NumericEffectKind
	Target uint32 // GroundFunction index
	Value  *NumericExpr
	Args   []*Object // the action's binding, reused to re-evaluate Value against state
}

// Apply performs the effect against state in place, using ctx for
// function lookups and the pre-effect Value evaluation.
func (e *GroundNumericEffect) Apply(ctx *EvalContext, state *NumericVector) error {
	val, err := e.Value.Eval(ctx, e.Args)
	if err != nil {
		return err
	}
	cur := state.Value(e.Target)
	switch e.Kind {
	case NumAssign:
		state.SetMut(e.Target, val)
	case NumIncrease:
		state.SetMut(e.Target, cur+val)
	case NumDecrease:
		state.SetMut(e.Target, cur-val)
	case NumScaleUp:
		state.SetMut(e.Target, cur*val)
	case NumScaleDown:
		if val == 0 {
			return &ArithmeticError{Op: fmt.Sprintf("scale-down(slot=%d)", e.Target), Err: ErrDivideByZero}
		}
		state.SetMut(e.Target, cur/val)
	}
	return nil
}
