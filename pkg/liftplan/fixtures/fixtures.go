// Package fixtures loads small, self-contained planning problems from a
// bundled YAML encoding, for use by cmd/liftplan and by the package's own
// seed tests. It is a concrete, minimal stand-in for a real PDDL front
// end — domain/problem parsing is out of scope for liftplan itself — and
// is never positioned as a PDDL replacement: the schema below has no
// requirements, no typing hierarchy, no :action-costs detection, none of
// PDDL's surface-syntax machinery, just enough structure to build a
// *liftplan.Problem by hand in a test or demo.
package fixtures

import (
	"context"
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/liftplan/pkg/liftplan"
)

//go:embed *.yaml
var bundled embed.FS

// Load reads a bundled fixture by file name (e.g. "gripper.yaml") and
// builds the liftplan.Problem it describes.
func Load(name string) (*liftplan.Problem, error) {
	data, err := bundled.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %s: %w", name, err)
	}
	return Parse(data)
}

// Parse builds a liftplan.Problem from raw YAML bytes in the fixture
// schema documented on yamlProblem.
func Parse(data []byte) (*liftplan.Problem, error) {
	var doc yamlProblem
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fixtures: parse: %w", err)
	}
	return build(&doc)
}

// yamlProblem is the top-level fixture document: a domain theory and one
// problem instance over it, flattened into a single file since every
// fixture here is used exactly once.
//
//	name: gripper-demo
//	objects:
//	  - {name: rooma, types: [room]}
//	static_predicates: [{name: room, arity: 1}]
//	fluent_predicates: [{name: at-robby, arity: 1}]
//	derived_predicates: [{name: reachable, arity: 1}]
//	functions: [{name: total-cost, arity: 1}]
//	actions: [...]
//	axioms: [...]
//	init:
//	  static: [{pred: room, args: [rooma]}]
//	  fluent: [{pred: at-robby, args: [rooma]}]
//	  numeric: [{func: total-cost, args: [o1], value: 5}]
//	goal: {params: [], literals: [...], numeric: []}
type yamlProblem struct {
	Name              string             `yaml:"name"`
	Objects           []yamlObject       `yaml:"objects"`
	StaticPredicates  []yamlPredicate    `yaml:"static_predicates"`
	FluentPredicates  []yamlPredicate    `yaml:"fluent_predicates"`
	DerivedPredicates []yamlPredicate    `yaml:"derived_predicates"`
	Functions         []yamlPredicate    `yaml:"functions"`
	Actions           []yamlAction       `yaml:"actions"`
	Axioms            []yamlAxiom        `yaml:"axioms"`
	Init              yamlInit           `yaml:"init"`
	Goal              *yamlCondition     `yaml:"goal"`
}

type yamlObject struct {
	Name  string   `yaml:"name"`
	Types []string `yaml:"types"`
}

type yamlPredicate struct {
	Name  string `yaml:"name"`
	Arity int    `yaml:"arity"`
}

// yamlLiteral's Args strings are either object names or, prefixed with
// "?", a reference to the owning schema's Nth parameter ("?0", "?1", ...).
type yamlLiteral struct {
	Pred     string   `yaml:"pred"`
	Args     []string `yaml:"args"`
	Polarity string   `yaml:"polarity,omitempty"` // "pos" (default) or "neg"
}

type yamlNumericExpr struct {
	Const *float64         `yaml:"const,omitempty"`
	Func  string           `yaml:"func,omitempty"`
	Args  []string         `yaml:"args,omitempty"`
	Op    string           `yaml:"op,omitempty"` // add, sub, mul, div, neg
	Left  *yamlNumericExpr `yaml:"left,omitempty"`
	Right *yamlNumericExpr `yaml:"right,omitempty"`
}

type yamlNumericConstraint struct {
	Cmp   string          `yaml:"cmp"`
	Left  yamlNumericExpr `yaml:"left"`
	Right yamlNumericExpr `yaml:"right"`
}

type yamlParam struct {
	Types []string `yaml:"types"`
}

type yamlCondition struct {
	Params  []yamlParam             `yaml:"params"`
	Literals []yamlLiteral          `yaml:"literals"`
	Numeric []yamlNumericConstraint `yaml:"numeric"`
}

type yamlNumericEffect struct {
	Kind  string          `yaml:"kind"` // assign, increase, decrease, scale-up, scale-down
	Func  string          `yaml:"func"`
	Args  []string        `yaml:"args"`
	Value yamlNumericExpr `yaml:"value"`
}

type yamlConditionalEffect struct {
	Condition yamlCondition `yaml:"condition"`
	Kind      string        `yaml:"kind"` // add, delete
	Pred      string        `yaml:"pred"`
	Args      []string      `yaml:"args"`
}

type yamlAction struct {
	Name        string                  `yaml:"name"`
	Params      []yamlParam             `yaml:"params"`
	Precondition yamlCondition          `yaml:"precondition"`
	Add         []yamlLiteral           `yaml:"add"`
	Delete      []yamlLiteral           `yaml:"delete"`
	Numeric     []yamlNumericEffect     `yaml:"numeric"`
	Conditional []yamlConditionalEffect `yaml:"conditional"`
	Cost        *yamlNumericExpr        `yaml:"cost"`
}

type yamlAxiom struct {
	Name   string      `yaml:"name"`
	Params []yamlParam `yaml:"params"`
	Body   yamlCondition `yaml:"body"`
	Head   yamlLiteral `yaml:"head"`
}

type yamlInit struct {
	Static  []yamlLiteral       `yaml:"static"`
	Fluent  []yamlLiteral       `yaml:"fluent"`
	Numeric []yamlNumericInit   `yaml:"numeric"`
}

type yamlNumericInit struct {
	Func  string   `yaml:"func"`
	Args  []string `yaml:"args"`
	Value float64  `yaml:"value"`
}

// builder carries the interning tables needed to translate yaml* structs
// into liftplan terms, atoms, and expressions.
type builder struct {
	domain  *liftplan.Domain
	objects *liftplan.ObjectTable
}

func build(doc *yamlProblem) (*liftplan.Problem, error) {
	b := &builder{
		domain:  liftplan.NewDomain(doc.Name),
		objects: liftplan.NewObjectTable(),
	}

	for _, o := range doc.Objects {
		b.objects.Intern(o.Name, o.Types)
	}
	for _, p := range doc.StaticPredicates {
		b.domain.StaticPredicates.Intern(p.Name, p.Arity)
	}
	for _, p := range doc.FluentPredicates {
		b.domain.FluentPredicates.Intern(p.Name, p.Arity)
	}
	for _, p := range doc.DerivedPredicates {
		b.domain.DerivedPredicates.Intern(p.Name, p.Arity)
	}
	for _, f := range doc.Functions {
		b.domain.Functions.Intern(f.Name, f.Arity)
	}

	for i, a := range doc.Actions {
		schema, err := b.buildAction(uint32(i), a)
		if err != nil {
			return nil, fmt.Errorf("fixtures: action %s: %w", a.Name, err)
		}
		b.domain.Actions = append(b.domain.Actions, schema)
	}
	for i, a := range doc.Axioms {
		schema, err := b.buildAxiom(uint32(i), a)
		if err != nil {
			return nil, fmt.Errorf("fixtures: axiom %s: %w", a.Name, err)
		}
		b.domain.Axioms = append(b.domain.Axioms, schema)
	}

	pb := liftplan.NewProblemBuilder(b.domain, b.objects)
	for _, l := range doc.Init.Static {
		lit, err := b.literal(nil, l)
		if err != nil {
			return nil, fmt.Errorf("fixtures: init static: %w", err)
		}
		pb.AddInitialLiteral(lit)
	}
	for _, l := range doc.Init.Fluent {
		lit, err := b.literal(nil, l)
		if err != nil {
			return nil, fmt.Errorf("fixtures: init fluent: %w", err)
		}
		pb.AddInitialLiteral(lit)
	}
	for _, n := range doc.Init.Numeric {
		f := b.domain.Functions.Lookup(n.Func)
		if f == nil {
			return nil, fmt.Errorf("fixtures: init numeric: unknown function %q", n.Func)
		}
		objs, err := b.objectArgs(nil, n.Args)
		if err != nil {
			return nil, fmt.Errorf("fixtures: init numeric %s: %w", n.Func, err)
		}
		pb.SetInitialNumericValue(f, objs, n.Value)
	}

	if doc.Goal != nil {
		goal, err := b.condition(nil, *doc.Goal)
		if err != nil {
			return nil, fmt.Errorf("fixtures: goal: %w", err)
		}
		pb.SetGoal(goal)
	}

	return pb.Build(context.Background())
}

func paramSlots(params []yamlParam) []liftplan.ParameterSlot {
	out := make([]liftplan.ParameterSlot, len(params))
	for i, p := range params {
		out[i] = liftplan.ParameterSlot{Index: i, Types: p.Types}
	}
	return out
}

// term resolves one argument string against an in-scope parameter list:
// "?N" is a reference to parameter N, anything else is an object name.
func (b *builder) term(params []yamlParam, arg string) (liftplan.Term, error) {
	if len(arg) > 1 && arg[0] == '?' {
		var idx int
		if _, err := fmt.Sscanf(arg[1:], "%d", &idx); err != nil {
			return liftplan.Term{}, fmt.Errorf("bad parameter reference %q", arg)
		}
		if idx < 0 || idx >= len(params) {
			return liftplan.Term{}, fmt.Errorf("parameter reference %q out of range (have %d params)", arg, len(params))
		}
		return liftplan.VariableTerm(idx), nil
	}
	o := b.objects.Lookup(arg)
	if o == nil {
		return liftplan.Term{}, fmt.Errorf("unknown object %q", arg)
	}
	return liftplan.ObjectTerm(o), nil
}

func (b *builder) terms(params []yamlParam, args []string) ([]liftplan.Term, error) {
	out := make([]liftplan.Term, len(args))
	for i, a := range args {
		t, err := b.term(params, a)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// objectArgs resolves args that must all be concrete objects (used for
// init-section numeric values, which never reference a parameter).
func (b *builder) objectArgs(params []yamlParam, args []string) ([]*liftplan.Object, error) {
	out := make([]*liftplan.Object, len(args))
	for i, a := range args {
		o := b.objects.Lookup(a)
		if o == nil {
			return nil, fmt.Errorf("unknown object %q", a)
		}
		out[i] = o
	}
	return out, nil
}

func (b *builder) predicateOf(name string) *liftplan.Predicate {
	if p := b.domain.StaticPredicates.Lookup(name); p != nil {
		return p
	}
	if p := b.domain.FluentPredicates.Lookup(name); p != nil {
		return p
	}
	return b.domain.DerivedPredicates.Lookup(name)
}

func (b *builder) literal(params []yamlParam, l yamlLiteral) (*liftplan.Literal, error) {
	pred := b.predicateOf(l.Pred)
	if pred == nil {
		return nil, fmt.Errorf("unknown predicate %q", l.Pred)
	}
	terms, err := b.terms(params, l.Args)
	if err != nil {
		return nil, fmt.Errorf("literal %s: %w", l.Pred, err)
	}
	polarity := liftplan.Positive
	if l.Polarity == "neg" {
		polarity = liftplan.Negative
	}
	return &liftplan.Literal{Polarity: polarity, Atom: &liftplan.Atom{Predicate: pred, Terms: terms}}, nil
}

func (b *builder) atom(params []yamlParam, pred string, args []string) (*liftplan.Atom, error) {
	p := b.predicateOf(pred)
	if p == nil {
		return nil, fmt.Errorf("unknown predicate %q", pred)
	}
	terms, err := b.terms(params, args)
	if err != nil {
		return nil, fmt.Errorf("atom %s: %w", pred, err)
	}
	return &liftplan.Atom{Predicate: p, Terms: terms}, nil
}

func numericOp(name string) (liftplan.NumericOp, error) {
	switch name {
	case "add":
		return liftplan.OpAdd, nil
	case "sub":
		return liftplan.OpSub, nil
	case "mul":
		return liftplan.OpMul, nil
	case "div":
		return liftplan.OpDiv, nil
	case "neg":
		return liftplan.OpNeg, nil
	default:
		return 0, fmt.Errorf("unknown numeric operator %q", name)
	}
}

func (b *builder) numericExpr(params []yamlParam, e yamlNumericExpr) (*liftplan.NumericExpr, error) {
	switch {
	case e.Const != nil:
		return liftplan.ConstExpr(*e.Const), nil
	case e.Func != "":
		f := b.domain.Functions.Lookup(e.Func)
		if f == nil {
			return nil, fmt.Errorf("unknown function %q", e.Func)
		}
		args, err := b.terms(params, e.Args)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", e.Func, err)
		}
		return liftplan.FuncExpr(f, args...), nil
	case e.Op == "neg":
		left, err := b.numericExpr(params, *e.Left)
		if err != nil {
			return nil, err
		}
		return liftplan.NegExpr(left), nil
	case e.Op != "":
		op, err := numericOp(e.Op)
		if err != nil {
			return nil, err
		}
		left, err := b.numericExpr(params, *e.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.numericExpr(params, *e.Right)
		if err != nil {
			return nil, err
		}
		return liftplan.BinExpr(op, left, right), nil
	default:
		return nil, fmt.Errorf("empty numeric expression")
	}
}

func numericCmp(name string) (liftplan.Comparator, error) {
	switch name {
	case "<":
		return liftplan.CmpLT, nil
	case "<=":
		return liftplan.CmpLE, nil
	case "=":
		return liftplan.CmpEQ, nil
	case ">=":
		return liftplan.CmpGE, nil
	case ">":
		return liftplan.CmpGT, nil
	default:
		return 0, fmt.Errorf("unknown comparator %q", name)
	}
}

func (b *builder) numericConstraint(params []yamlParam, c yamlNumericConstraint) (*liftplan.NumericConstraint, error) {
	cmp, err := numericCmp(c.Cmp)
	if err != nil {
		return nil, err
	}
	left, err := b.numericExpr(params, c.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.numericExpr(params, c.Right)
	if err != nil {
		return nil, err
	}
	return &liftplan.NumericConstraint{Comparator: cmp, Left: left, Right: right}, nil
}

func (b *builder) condition(params []yamlParam, c yamlCondition) (*liftplan.ConjunctiveCondition, error) {
	scope := params
	if len(c.Params) > 0 {
		scope = c.Params
	}
	literals := make([]*liftplan.Literal, 0, len(c.Literals))
	for _, yl := range c.Literals {
		l, err := b.literal(scope, yl)
		if err != nil {
			return nil, err
		}
		literals = append(literals, l)
	}
	numeric := make([]*liftplan.NumericConstraint, 0, len(c.Numeric))
	for _, nc := range c.Numeric {
		n, err := b.numericConstraint(scope, nc)
		if err != nil {
			return nil, err
		}
		numeric = append(numeric, n)
	}
	return liftplan.NewConjunctiveCondition(paramSlots(scope), literals, numeric), nil
}

func numericEffectKind(name string) (liftplan.NumericEffectKind, error) {
	switch name {
	case "assign":
		return liftplan.NumAssign, nil
	case "increase":
		return liftplan.NumIncrease, nil
	case "decrease":
		return liftplan.NumDecrease, nil
	case "scale-up":
		return liftplan.NumScaleUp, nil
	case "scale-down":
		return liftplan.NumScaleDown, nil
	default:
		return 0, fmt.Errorf("unknown numeric effect kind %q", name)
	}
}

func (b *builder) buildAction(index uint32, a yamlAction) (*liftplan.ActionSchema, error) {
	precondition, err := b.condition(a.Params, a.Precondition)
	if err != nil {
		return nil, fmt.Errorf("precondition: %w", err)
	}

	effect := &liftplan.ConjunctiveEffect{}
	for _, yl := range a.Add {
		atom, err := b.atom(a.Params, yl.Pred, yl.Args)
		if err != nil {
			return nil, fmt.Errorf("add: %w", err)
		}
		effect.Adds = append(effect.Adds, atom)
	}
	for _, yl := range a.Delete {
		atom, err := b.atom(a.Params, yl.Pred, yl.Args)
		if err != nil {
			return nil, fmt.Errorf("delete: %w", err)
		}
		effect.Deletes = append(effect.Deletes, atom)
	}
	for _, yn := range a.Numeric {
		kind, err := numericEffectKind(yn.Kind)
		if err != nil {
			return nil, fmt.Errorf("numeric: %w", err)
		}
		f := b.domain.Functions.Lookup(yn.Func)
		if f == nil {
			return nil, fmt.Errorf("numeric: unknown function %q", yn.Func)
		}
		args, err := b.terms(a.Params, yn.Args)
		if err != nil {
			return nil, fmt.Errorf("numeric %s: %w", yn.Func, err)
		}
		value, err := b.numericExpr(a.Params, yn.Value)
		if err != nil {
			return nil, fmt.Errorf("numeric %s value: %w", yn.Func, err)
		}
		effect.Numeric = append(effect.Numeric, &liftplan.NumericEffect{Kind: kind, Target: f, Args: args, Value: value})
	}

	var conditional []*liftplan.ConditionalEffect
	for _, yc := range a.Conditional {
		scope := a.Params
		if len(yc.Condition.Params) > 0 {
			scope = yc.Condition.Params
		}
		cond, err := b.condition(a.Params, yc.Condition)
		if err != nil {
			return nil, fmt.Errorf("conditional effect: %w", err)
		}
		atom, err := b.atom(scope, yc.Pred, yc.Args)
		if err != nil {
			return nil, fmt.Errorf("conditional effect atom: %w", err)
		}
		kind := liftplan.EffectAdd
		if yc.Kind == "delete" {
			kind = liftplan.EffectDelete
		}
		conditional = append(conditional, &liftplan.ConditionalEffect{
			Condition: cond,
			Effect:    liftplan.SimpleEffect{Kind: kind, Atom: atom},
		})
	}

	var cost *liftplan.NumericExpr
	if a.Cost != nil {
		c, err := b.numericExpr(a.Params, *a.Cost)
		if err != nil {
			return nil, fmt.Errorf("cost: %w", err)
		}
		cost = c
	}

	return &liftplan.ActionSchema{
		Index:        index,
		Name:         a.Name,
		Parameters:   paramSlots(a.Params),
		Precondition: precondition,
		Effect:       effect,
		Conditional:  conditional,
		Cost:         cost,
	}, nil
}

func (b *builder) buildAxiom(index uint32, a yamlAxiom) (*liftplan.AxiomSchema, error) {
	body, err := b.condition(a.Params, a.Body)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	head, err := b.atom(a.Params, a.Head.Pred, a.Head.Args)
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	return &liftplan.AxiomSchema{
		Index:      index,
		Name:       a.Name,
		Parameters: paramSlots(a.Params),
		Body:       body,
		Head:       head,
	}, nil
}
