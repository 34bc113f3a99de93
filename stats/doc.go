// Package stats provides covariance estimation for in-sample forecast residuals.
//
// Residual matrices are laid out with one row per timestamp and one column
// per hierarchy node. Missing observations are represented by NaN.
//
// # Masked Covariance
//
// Estimate the covariance while ignoring missing values pairwise:
//
//	cov := stats.MaskedCovariance(residuals)
//
// Entry (a, b) only uses the timestamps where both a and b were observed,
// so a single missing value never removes a whole row.
//
// # Correlation
//
// Convert a covariance matrix into a correlation matrix:
//
//	corr := stats.Correlation(cov)
//
// # Shrinkage
//
// Estimate how strongly the sample covariance should be pulled towards its
// diagonal:
//
//	lambda := stats.ShrinkageIntensity(residuals, cov)
//	target := stats.DiagonalTarget(cov)
//	// W = lambda*target + (1-lambda)*cov
//
// Unlike MaskedCovariance, ShrinkageIntensity drops every row holding a
// missing value before computing its bias term.
package stats
