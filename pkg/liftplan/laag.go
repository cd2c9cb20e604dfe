package liftplan

import (
	"context"
	"sync"

	"github.com/gitrdm/liftplan/internal/parallel"
)

// LAAG is the Lifted Applicable-Action Generator (C8, spec §4.6): given a
// state, it enumerates every ground action whose precondition holds by
// driving the Satisficing Binding Generator (C6) over each ActionSchema's
// precondition and grounding each binding through a shared Grounder (C7).
// Each schema's binding search and grounding is independent of every
// other schema's, so Generate fans the per-schema work out across a
// WorkerPool rather than walking Domain.Actions one schema at a time.
type LAAG struct {
	p        *Problem
	grounder *Grounder
	hooks    EventHooks
}

// NewLAAG returns a LAAG over p, grounding through grounder and reporting
// observational events through hooks (NoopHooks if nil).
func NewLAAG(p *Problem, grounder *Grounder, hooks EventHooks) *LAAG {
	if hooks == nil {
		hooks = NoopHooks{}
	}
	return &LAAG{p: p, grounder: grounder, hooks: hooks}
}

// Generate returns every ground action applicable in state, following
// the protocol of spec §4.6.
func (l *LAAG) Generate(state *UnpackedState) ([]*GroundAction, error) {
	l.hooks.OnStartGeneratingApplicableActions()

	actions := l.p.Domain.Actions
	pool := parallel.NewWorkerPool(len(actions))
	defer pool.Shutdown()

	ctx := context.Background()
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		out      []*GroundAction
		firstErr error
	)
	for _, a := range actions {
		if !nullaryHolds(a.Precondition, l.p, state) {
			continue
		}

		a := a
		wg.Add(1)
		submitErr := pool.Submit(ctx, func() {
			defer wg.Done()
			schemaOut, err := l.generateForSchema(a, state)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			out = append(out, schemaOut...)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	l.hooks.OnEndGeneratingApplicableActions()
	return out, nil
}

// generateForSchema drives the binding generator for a single schema to
// exhaustion, grounding and emit-testing every candidate binding it
// yields (spec §4.6). Called once per ActionSchema, concurrently with
// every other schema's call, from Generate's WorkerPool tasks.
func (l *LAAG) generateForSchema(a *ActionSchema, state *UnpackedState) ([]*GroundAction, error) {
	var out []*GroundAction
	bg := NewBindingGenerator(a.Precondition, l.p, state, l.hooks)
	for {
		binding, ok := bg.Next()
		if !ok {
			break
		}
		ga, err := l.grounder.GroundAction(a, binding)
		if err != nil {
			return nil, err
		}
		if ga == nil {
			continue
		}
		applicable, err := ga.IsApplicable(l.p, state)
		if err != nil {
			return nil, err
		}
		if !applicable {
			l.hooks.OnInvalidBinding(errBindingRejected)
			continue
		}
		out = append(out, ga)
		l.hooks.OnGroundAction(ga)
	}
	return out, nil
}
