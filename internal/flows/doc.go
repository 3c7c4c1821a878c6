// Package flows turns raw flow matrices into per-unit-output coefficients and
// applies the sign convention of extension flows.
package flows
