// Package finance derives dashboard statistics and budget spending from a
// snapshot of a user's transactions, categories and budgets.
//
// Every function here is pure: inputs are never mutated, returned slices are
// fresh copies and the current time is always passed in by the caller.
// Records whose dates are unusable are excluded from date-windowed sums and
// counted, never rejected.
package finance
