// Package planner computes plan_tp[t], the per-collection target sample
// size for the next stage. A baseline allocator is always applied;
// two optional refinements — a Dirichlet-Multinomial simulation planner
// and a discrete Robbins-Monro planner — may raise the baseline's
// target for collections feeding an Open measurement. All three are
// advisory only: the engine always caps a plan at the collection size and
// never decreases it below the current sample.
package planner
