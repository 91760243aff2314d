// Package estimation is the record matching and derivation engine.
//
// Match finds the first row of a reference table satisfying every Criterion. A
// PowerColumnPolicy names the column holding the power draw, and the Engine runs the
// registered Calculators (energy, cost, carbon) over the matched power and the
// requested duration.
package estimation
