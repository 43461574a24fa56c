// Package scoring fuses rating samples into fairness-weighted scores.
//
// Every signal that feeds a pick decision passes through here: star
// histograms become Beta-Binomial posteriors, critic aggregates are
// weighted by sample size, both are damped by per-source demographic
// penalties, and films from countries under-represented in the catalogue
// relative to their share of the online population earn a small bonus.
// All public outputs live on a 0-100 scale.
package scoring
