package orchestrator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// step is one named node of a task graph.
type step struct {
	name string
	deps []string
	run  func(ctx context.Context) error
}

// graph runs steps concurrently, each once all of its dependencies finished.
// The first failure cancels the remaining steps and is returned unchanged;
// a step whose dependency failed never starts.
type graph struct {
	op    string
	steps []step
}

func newGraph(op string) *graph {
	return &graph{op: op}
}

func (g *graph) add(name string, deps []string, run func(ctx context.Context) error) {
	g.steps = append(g.steps, step{name: name, deps: deps, run: run})
}

type stepState struct {
	done chan struct{}
	ok   bool
}

func (g *graph) run(ctx context.Context, tracer trace.Tracer) error {
	if err := g.validate(); err != nil {
		return err
	}

	states := make(map[string]*stepState, len(g.steps))
	for _, s := range g.steps {
		states[s.name] = &stepState{done: make(chan struct{})}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, s := range g.steps {
		s := s
		state := states[s.name]
		eg.Go(func() error {
			defer close(state.done)
			for _, dep := range s.deps {
				select {
				case <-states[dep].done:
				case <-egCtx.Done():
					return nil
				}
				if !states[dep].ok {
					return nil
				}
			}
			if egCtx.Err() != nil {
				return nil
			}

			stepCtx, span := tracer.Start(egCtx, g.op+"."+s.name,
				trace.WithAttributes(attribute.String("generation.op", g.op)))
			err := s.run(stepCtx)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.End()
				return err
			}
			span.End()
			state.ok = true
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// validate rejects unknown dependencies and cycles before anything runs.
func (g *graph) validate() error {
	index := make(map[string]step, len(g.steps))
	for _, s := range g.steps {
		if _, dup := index[s.name]; dup {
			return fmt.Errorf("task graph %s: duplicate step %q", g.op, s.name)
		}
		index[s.name] = s
	}

	indegree := make(map[string]int, len(g.steps))
	dependents := make(map[string][]string)
	for _, s := range g.steps {
		for _, dep := range s.deps {
			if _, ok := index[dep]; !ok {
				return fmt.Errorf("task graph %s: step %q depends on unknown %q", g.op, s.name, dep)
			}
			indegree[s.name]++
			dependents[dep] = append(dependents[dep], s.name)
		}
	}

	var ready []string
	for _, s := range g.steps {
		if indegree[s.name] == 0 {
			ready = append(ready, s.name)
		}
	}
	visited := 0
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		visited++
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	if visited != len(g.steps) {
		return fmt.Errorf("task graph %s: dependency cycle", g.op)
	}
	return nil
}
