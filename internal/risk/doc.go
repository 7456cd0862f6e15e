// Package risk implements the Bayes-risk Monte Carlo estimator:
// for a measurement's contest, it repeatedly completes each stratum's
// unsampled ballots from the Dirichlet-Multinomial posterior, recomputes
// the social-choice outcome over the completed tally, and estimates the
// probability the reported outcome is wrong as the fraction of trials
// where it isn't reproduced. It also implements the tweak variant used
// by the planner for counterfactual "what if we had this much more
// favorable evidence" simulation.
package risk
