package ui

// Status symbols.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolWarning  = "!"
	SymbolInfo     = "i"
	SymbolActive   = "●"
	SymbolInactive = "○"
	SymbolLoading  = "◐"
)
