// Package calculators provides concrete Calculator implementations for the estimation engine.
//
// Each calculator derives one quantity from the matched power draw and the requested
// duration: energy consumption, energy cost, carbon footprint, and the per test
// fixed, additional and total costs of a Tariff. Calculators are
// composed via the estimation.Engine and accept input through estimation.Param slices.
package calculators
