package scene_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/scene"
)

// journal collects "state:step" entries from the manager's step hook.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			j.mu.Lock()
			defer j.mu.Unlock()
			j.entries = append(j.entries, e.State+":"+e.Step.String())
		},
	}
}

// of returns the steps recorded for state, in order.
func (j *journal) of(state string) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []string
	prefix := state + ":"
	for _, e := range j.entries {
		if len(e) > len(prefix) && e[:len(prefix)] == prefix {
			out = append(out, e[len(prefix):])
		}
	}
	return out
}

func (j *journal) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
}

func steps(list ...domain.Step) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.String()
	}
	return out
}

var (
	loadSteps      = []domain.Step{domain.StepPreLoad, domain.StepLoad, domain.StepPostLoad}
	visibleSteps   = []domain.Step{domain.StepPreMakeVisible, domain.StepMakeVisible, domain.StepPostMakeVisible}
	focusSteps     = []domain.Step{domain.StepPreFocus, domain.StepFocus, domain.StepPostFocus}
	blurSteps      = []domain.Step{domain.StepPreBlur, domain.StepBlur, domain.StepPostBlur}
	invisibleSteps = []domain.Step{domain.StepPreMakeInvisible, domain.StepMakeInvisible, domain.StepPostMakeInvisible}
	unloadSteps    = []domain.Step{domain.StepPreUnload, domain.StepUnload, domain.StepPostUnload}
)

func concat(groups ...[]domain.Step) []domain.Step {
	var out []domain.Step
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// received is what a probe saw in its visible and focus steps.
type received struct {
	Step   domain.Step
	Prev   string
	Result any
}

// probe is a plain state taking an int and returning an int.
type probe struct {
	scene.Base[int, int]
	name string

	mu       sync.Mutex
	received []received
	phaseAt  map[domain.Step]domain.StatePhase
	failAt   domain.Step
	updates  int
	onUpdate func(p *probe) error
}

func newProbe(name string) *probe {
	return &probe{name: name, phaseAt: make(map[domain.Step]domain.StatePhase)}
}

func (p *probe) Name() string { return p.name }

func (p *probe) mark(step domain.Step, prev scene.Node, result any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phaseAt[step] = p.Phase()
	if step != domain.StepPreMakeInvisible {
		p.received = append(p.received, received{Step: step, Prev: scene.NameOf(prev), Result: result})
	}
}

func (p *probe) seen() []received {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]received(nil), p.received...)
}

func (p *probe) phaseDuring(step domain.Step) domain.StatePhase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phaseAt[step]
}

func (p *probe) Load(ctx context.Context, m *scene.Manager, arg any) error {
	if p.failAt == domain.StepLoad {
		return fmt.Errorf("%s refuses to load", p.name)
	}
	return p.Base.Load(ctx, m, arg)
}

func (p *probe) PreMakeVisible(ctx context.Context, prev scene.Node, result any) error {
	p.mark(domain.StepPreMakeVisible, prev, result)
	return p.Base.PreMakeVisible(ctx, prev, result)
}

func (p *probe) MakeVisible(ctx context.Context, prev scene.Node, result any) error {
	if err := p.Base.MakeVisible(ctx, prev, result); err != nil {
		return err
	}
	p.mark(domain.StepMakeVisible, prev, result)
	return nil
}

func (p *probe) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := p.Base.Focus(ctx, prev, result); err != nil {
		return err
	}
	p.mark(domain.StepFocus, prev, result)
	return nil
}

func (p *probe) PreMakeInvisible(ctx context.Context) error {
	p.mark(domain.StepPreMakeInvisible, nil, nil)
	return p.Base.PreMakeInvisible(ctx)
}

func (p *probe) Update(ctx context.Context) error {
	p.mu.Lock()
	p.updates++
	fn := p.onUpdate
	p.mu.Unlock()
	if fn != nil {
		return fn(p)
	}
	return nil
}

func (p *probe) updateCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updates
}

// rendezvous lets two steps show they run at the same time: each checks in, then
// waits for a release that only comes once both have checked in.
type rendezvous struct {
	arrived chan string
	release chan struct{}
}

func newRendezvous() *rendezvous {
	return &rendezvous{arrived: make(chan string, 2), release: make(chan struct{})}
}

func (r *rendezvous) meet(ctx context.Context, who string) error {
	r.arrived <- who
	select {
	case <-r.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await collects both check-ins, sorted, and lets the steps go.
func (r *rendezvous) await(t *testing.T) []string {
	t.Helper()
	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case who := <-r.arrived:
			got = append(got, who)
		case <-timeout:
			close(r.release)
			t.Fatalf("steps ran one after the other, only %v started", got)
		}
	}
	close(r.release)
	slices.Sort(got)
	return got
}

// gate is a probe that holds one armed step at a rendezvous.
type gate struct {
	*probe
	meeting *rendezvous
	armed   bool
	at      domain.Step
}

func newGate(name string, r *rendezvous) *gate {
	return &gate{probe: newProbe(name), meeting: r}
}

func (g *gate) arm(step domain.Step) {
	g.armed, g.at = true, step
}

func (g *gate) hold(ctx context.Context, step domain.Step) error {
	if !g.armed || g.at != step {
		return nil
	}
	return g.meeting.meet(ctx, g.name+":"+step.String())
}

func (g *gate) Load(ctx context.Context, m *scene.Manager, arg any) error {
	if err := g.hold(ctx, domain.StepLoad); err != nil {
		return err
	}
	return g.probe.Load(ctx, m, arg)
}

func (g *gate) MakeVisible(ctx context.Context, prev scene.Node, result any) error {
	if err := g.hold(ctx, domain.StepMakeVisible); err != nil {
		return err
	}
	return g.probe.MakeVisible(ctx, prev, result)
}

func (g *gate) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := g.hold(ctx, domain.StepFocus); err != nil {
		return err
	}
	return g.probe.Focus(ctx, prev, result)
}

func (g *gate) Blur(ctx context.Context) error {
	if err := g.hold(ctx, domain.StepBlur); err != nil {
		return err
	}
	return g.probe.Blur(ctx)
}

func (g *gate) MakeInvisible(ctx context.Context) error {
	if err := g.hold(ctx, domain.StepMakeInvisible); err != nil {
		return err
	}
	return g.probe.MakeInvisible(ctx)
}

func (g *gate) Unload(ctx context.Context) error {
	if err := g.hold(ctx, domain.StepUnload); err != nil {
		return err
	}
	return g.probe.Unload(ctx)
}

// settleAsync runs Settle in the background and reports its error.
func settleAsync(ctx context.Context, m *scene.Manager) <-chan error {
	done := make(chan error, 1)
	go func() { done <- m.Settle(ctx) }()
	return done
}
