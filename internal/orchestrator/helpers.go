package orchestrator

import (
	"math"

	"github.com/wrenlabs/affect-engine/internal/affect"
)

// Input-construction helpers translating semantic external events into
// affect inputs with pre-tuned deltas. Delta magnitudes are tuning values;
// the engine's inertia scaling and clamping bound their effect.

// #region conversation

// ConversationSentiment submits sentiment from a conversation turn.
// score is expected in [-1, 1]; out-of-range values are clamped. The call
// also resets the longing clock, since a conversation turn means the
// partner is present.
func (o *Orchestrator) ConversationSentiment(score float64) error {
	if score < -1 {
		score = -1
	}
	if score > 1 {
		score = 1
	}
	o.engine.RecordPartnerInput()
	return o.engine.SubmitInput(affect.NewInput("conversation:sentiment", map[affect.Key]float64{
		affect.Valence:    0.50 * score,
		affect.Arousal:    0.15 * math.Abs(score),
		affect.Attachment: 0.10 * math.Max(0, score),
	}))
}

// #endregion conversation

// #region retrieval

// RetrievalFeedback submits the outcome of a memory retrieval: high
// relevance reinforces certainty, low relevance reads as novelty.
func (o *Orchestrator) RetrievalFeedback(relevance float64) error {
	if relevance < 0 {
		relevance = 0
	}
	if relevance > 1 {
		relevance = 1
	}
	return o.engine.SubmitInput(affect.NewInput("memory:retrieval", map[affect.Key]float64{
		affect.Certainty: 0.30 * (relevance - 0.5),
		affect.Novelty:   0.40 * (1 - relevance),
	}))
}

// #endregion retrieval

// #region goals

// GoalBlocked submits the frustration of a blocked goal.
func (o *Orchestrator) GoalBlocked() error {
	return o.engine.SubmitInput(affect.NewInput("goal:blocked", map[affect.Key]float64{
		affect.Frustration: 0.40,
		affect.Valence:     -0.20,
		affect.Certainty:   -0.10,
	}))
}

// GoalAchieved submits the satisfaction of a completed goal.
func (o *Orchestrator) GoalAchieved() error {
	return o.engine.SubmitInput(affect.NewInput("goal:achieved", map[affect.Key]float64{
		affect.Valence:     0.40,
		affect.Satiation:   0.30,
		affect.Frustration: -0.30,
		affect.Certainty:   0.20,
	}))
}

// #endregion goals

// #region selfmod

// SelfChangeProposal submits the affective response to a proposal for
// self-modification being approved or rejected.
func (o *Orchestrator) SelfChangeProposal(approved bool) error {
	if approved {
		return o.engine.SubmitInput(affect.NewInput("selfmod:proposal", map[affect.Key]float64{
			affect.Curiosity: 0.30,
			affect.Certainty: 0.10,
			affect.Valence:   0.10,
		}))
	}
	return o.engine.SubmitInput(affect.NewInput("selfmod:proposal", map[affect.Key]float64{
		affect.Vulnerability: 0.20,
		affect.Certainty:     -0.20,
	}))
}

// #endregion selfmod
