// Package viz renders traces for terminals.
//
//   - [FormatRows] / [WriteTable]: the record table, iteration column 1-based
//   - [RenderTable]: the same table styled with lipgloss for the TUI
//   - [Plot]: an asciigraph chart of y (ODE) or log10 error (Newton-Raphson)
//   - [StatusLine]: the terminal status coloured by severity
package viz
