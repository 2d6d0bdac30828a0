package strategy

import "strings"

// SymbolResolver maps a parsed symbol onto a name the execution venue knows.
type SymbolResolver struct {
	universe []string
}

func NewSymbolResolver(universe []string) SymbolResolver {
	cleaned := make([]string, 0, len(universe))
	for _, s := range universe {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return SymbolResolver{universe: cleaned}
}

// Resolve tries the exact name, then the name without "/", without "INDEX" and with an
// "INDEX" suffix. With an empty universe the normalized name is returned as is.
func (r SymbolResolver) Resolve(symbol string) (string, bool) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", false
	}

	if len(r.universe) == 0 {
		return strings.ToUpper(strings.ReplaceAll(symbol, "/", "")), true
	}

	candidates := []string{
		symbol,
		strings.ReplaceAll(symbol, "/", ""),
		strings.ReplaceAll(symbol, "INDEX", ""),
		symbol + "INDEX",
	}
	for _, c := range candidates {
		for _, known := range r.universe {
			if strings.EqualFold(known, c) {
				return known, true
			}
		}
	}
	return "", false
}

// pipSize follows the usual forex convention: JPY quoted pairs move in 0.01.
func pipSize(symbol string) string {
	if strings.Contains(strings.ToUpper(symbol), "JPY") {
		return "0.01"
	}
	return "0.0001"
}
