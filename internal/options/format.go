package options

import (
	"fmt"

	"fplot/internal/model"
)

// FormatContract renders one listing line in the fzf-friendly shape
// "TICKER STRIKE{C|P} DTEDTE ($price, return%)". Contracts that never
// traded show N/A for the return metric.
func FormatContract(r model.ContractRow) string {
	ret := "N/A"
	if r.Return.Valid {
		ret = fmt.Sprintf("%.2f%%", r.Return.Value*100)
	}
	return fmt.Sprintf("%s %.0f%s %dDTE ($%.2f, %s)",
		r.Ticker, r.Strike, r.Kind.Letter(), r.DTE, r.LastPrice, ret)
}
