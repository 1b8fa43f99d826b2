// Package ml contains the small learning primitives used by the personalization
// engine: text vectorizers, truncated SVD, a standard scaler, a gradient boosted
// regressor and a multinomial naive Bayes classifier.
//
// Every model follows the same life cycle: construct, Fit once, then use the
// read-only fitted state from any number of goroutines.
package ml
