package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestStep_OrdinalLine(t *testing.T) {
	forward := []domain.Step{
		domain.StepPreLoad, domain.StepLoad, domain.StepPostLoad,
		domain.StepPreMakeVisible, domain.StepMakeVisible, domain.StepPostMakeVisible,
		domain.StepPreFocus, domain.StepFocus, domain.StepPostFocus,
	}
	for i, s := range forward {
		assert.True(t, s.Forward(), s.String())
		assert.Equal(t, i+1, s.Ordinal(), s.String())
	}

	backward := []domain.Step{
		domain.StepPreBlur, domain.StepBlur, domain.StepPostBlur,
		domain.StepPreMakeInvisible, domain.StepMakeInvisible, domain.StepPostMakeInvisible,
		domain.StepPreUnload, domain.StepUnload, domain.StepPostUnload,
	}
	for i, s := range backward {
		assert.False(t, s.Forward(), s.String())
		assert.Equal(t, 8-i, s.Ordinal(), s.String())
	}
}

func TestStep_ObserverTarget(t *testing.T) {
	cases := map[domain.Step]domain.ObserverPhase{
		domain.StepPreLoad:           domain.ObserverPreLoad,
		domain.StepPostFocus:         domain.ObserverPostFocus,
		domain.StepPreBlur:           domain.ObserverFocus,
		domain.StepBlur:              domain.ObserverPreFocus,
		domain.StepPostBlur:          domain.ObserverPostMakeVisible,
		domain.StepPreMakeInvisible:  domain.ObserverMakeVisible,
		domain.StepMakeInvisible:     domain.ObserverPreMakeVisible,
		domain.StepPostMakeInvisible: domain.ObserverPostLoad,
		domain.StepPreUnload:         domain.ObserverLoad,
		domain.StepUnload:            domain.ObserverPreLoad,
		domain.StepPostUnload:        domain.ObserverInitialized,
	}
	for step, want := range cases {
		assert.Equal(t, want, step.ObserverTarget(), step.String())
	}
}

func TestObserverPhase_Step(t *testing.T) {
	assert.Equal(t, domain.StepNone, domain.ObserverInitialized.Step())
	assert.Equal(t, domain.StepLoad, domain.ObserverLoad.Step())
	assert.Equal(t, domain.StepPostFocus, domain.ObserverPostFocus.Step())
}

func TestStatePhase_String(t *testing.T) {
	assert.Equal(t, "focused", domain.PhaseFocused.String())
	assert.True(t, domain.PhaseVisible.AtLeast(domain.PhaseLoaded))
	assert.False(t, domain.PhaseLoaded.AtLeast(domain.PhaseVisible))
}

func TestChainHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnStep: func(_ context.Context, e *domain.StepEvent) { calls = append(calls, "a:"+e.State) }}
	b := domain.LifecycleHooks{OnStep: func(_ context.Context, e *domain.StepEvent) { calls = append(calls, "b:"+e.State) }}

	h := domain.ChainHooks(a, domain.LifecycleHooks{}, b)
	h.OnStep(context.Background(), &domain.StepEvent{State: "x"})

	assert.Equal(t, []string{"a:x", "b:x"}, calls)
	assert.Nil(t, h.OnTransitionStart)
}
