package engine

import (
	"mcsim/mcmodel"
	"mcsim/rng"
)

// counterConfig is a minimal test model: its energy is a single float64
// counter, and every proposed step adds a fixed delta to it. It exists
// only to exercise Base.RunInnerStep and the checkpoint envelope without
// pulling in a physical model.
type counterConfig struct {
	value float64
	delta float64
}

type counterStep struct {
	cfg   *counterConfig
	delta float64
}

func (s *counterStep) DeltaE() mcmodel.Float64Energy { return mcmodel.Float64Energy(s.delta) }
func (s *counterStep) IsExecutable() bool            { return true }
func (s *counterStep) SelectionProbabilityFactor() float64 { return 1 }
func (s *counterStep) Execute()                      { s.cfg.value += s.delta }

func (c *counterConfig) Energy() mcmodel.Float64Energy { return mcmodel.Float64Energy(c.value) }
func (c *counterConfig) ProposeStep(r rng.Source) *counterStep {
	return &counterStep{cfg: c, delta: c.delta}
}
func (c *counterConfig) Commit(s *counterStep) { s.Execute() }

// inexecutableStep always reports itself as not executable.
type inexecutableStep struct{ counterStep }

func (s *inexecutableStep) IsExecutable() bool { return false }

type inexecutableConfig struct{ counterConfig }

func (c *inexecutableConfig) ProposeStep(r rng.Source) *inexecutableStep {
	return &inexecutableStep{counterStep{cfg: &c.counterConfig, delta: c.delta}}
}
func (c *inexecutableConfig) Commit(s *inexecutableStep) { s.Execute() }

// constantHandler accepts every step with a fixed, unclamped probability.
type constantHandler struct {
	probability float64
	executed    []float64
	rejected    []float64
}

func (h *constantHandler) AcceptanceProbability(s *counterStep) float64 { return h.probability }
func (h *constantHandler) HandleExecutedStep(s *counterStep)           { h.executed = append(h.executed, s.delta) }
func (h *constantHandler) HandleRejectedStep(s *counterStep)           { h.rejected = append(h.rejected, s.delta) }

type constantHandlerInexecutable struct {
	rejected []float64
}

func (h *constantHandlerInexecutable) AcceptanceProbability(s *inexecutableStep) float64 { return 1 }
func (h *constantHandlerInexecutable) HandleExecutedStep(s *inexecutableStep)            {}
func (h *constantHandlerInexecutable) HandleRejectedStep(s *inexecutableStep) {
	h.rejected = append(h.rejected, s.delta)
}

// weightedConfig/weightedStep exercise SelectionProbabilityFactor != 1.
type weightedConfig struct {
	value float64
	q     float64
}

type weightedStep struct {
	cfg *weightedConfig
	q   float64
}

func (s *weightedStep) DeltaE() mcmodel.Float64Energy      { return mcmodel.Float64Energy(1) }
func (s *weightedStep) IsExecutable() bool                 { return true }
func (s *weightedStep) SelectionProbabilityFactor() float64 { return s.q }
func (s *weightedStep) Execute()                           { s.cfg.value = 1 }

func (c *weightedConfig) Energy() mcmodel.Float64Energy { return mcmodel.Float64Energy(c.value) }
func (c *weightedConfig) ProposeStep(r rng.Source) *weightedStep {
	return &weightedStep{cfg: c, q: c.q}
}
func (c *weightedConfig) Commit(s *weightedStep) { s.Execute() }

type weightedHandler struct{ probability float64 }

func (h *weightedHandler) AcceptanceProbability(s *weightedStep) float64 { return h.probability }
func (h *weightedHandler) HandleExecutedStep(s *weightedStep)            {}
func (h *weightedHandler) HandleRejectedStep(s *weightedStep)            {}
