package translate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared with the packages that print them.
const (
	CompareSummary = "Clocks:\n%d x %d\nThroughput:\n%.2f x %.2f"
	RequestFailed  = "%s failed: %v"
	EmptyResult    = "%s returned no cycles"
	InvalidText    = "the engine rejected the source text"
)

func registerCatalog() {
	pt := language.BrazilianPortuguese
	_ = message.SetString(pt, CompareSummary, "Clocks:\n%d x %d\nProdutividade:\n%.2f x %.2f")
	_ = message.SetString(pt, RequestFailed, "%s falhou: %v")
	_ = message.SetString(pt, EmptyResult, "%s não retornou ciclos")
	_ = message.SetString(pt, InvalidText, "o motor rejeitou o texto fonte")
}
