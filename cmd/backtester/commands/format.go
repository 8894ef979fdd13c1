package commands

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/wonny/backtester/internal/backtest"
	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/marker"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a formatted command header
func PrintHeader(title string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", title)
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintResult prints one result with its per-metric classification
func PrintResult(r *contracts.BacktestResult, c marker.Classification) {
	fmt.Printf("  Result    : #%d\n", r.ID)
	fmt.Printf("  File      : #%d %s\n", r.SignalFileID, r.Filename)
	fmt.Println("───────────────────────────────────────────────────────────")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range contracts.AllMetrics {
		value, ok := r.MetricValue(m)
		fmt.Fprintf(w, "  %s\t%s\t%s\n", m, formatValue(value, ok), passMark(c.PerMetric[m]))
	}
	w.Flush()

	fmt.Println("───────────────────────────────────────────────────────────")
	fmt.Printf("  Overall   : %s\n", passMark(c.Overall))
}

// PrintDashboard prints one line per result
func PrintDashboard(rows []backtest.DashboardRow) {
	if len(rows) == 0 {
		fmt.Println("  (no results)")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "  ID\tFILE\tFILENAME")
	for _, m := range contracts.AllMetrics {
		fmt.Fprintf(w, "\t%s", m)
	}
	fmt.Fprintln(w, "\tPASS")

	for _, row := range rows {
		fmt.Fprintf(w, "  %d\t%d\t%s", row.ID, row.SignalFileID, row.Filename)
		for _, m := range contracts.AllMetrics {
			value, ok := row.MetricValue(m)
			fmt.Fprintf(w, "\t%s", formatValue(value, ok))
		}
		fmt.Fprintf(w, "\t%s\n", passMark(row.Classification.Overall))
	}
	w.Flush()
}

// PrintSymbolMetrics prints per-ticker metrics sorted by ticker
func PrintSymbolMetrics(metrics contracts.SymbolMetrics) {
	tickers := make([]string, 0, len(metrics))
	for ticker := range metrics {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "  TICKER")
	for _, m := range contracts.AllMetrics {
		fmt.Fprintf(w, "\t%s", m)
	}
	fmt.Fprintln(w)

	for _, ticker := range tickers {
		m := metrics[ticker]
		fmt.Fprintf(w, "  %s", ticker)
		for _, metric := range contracts.AllMetrics {
			value, ok := m.MetricValue(metric)
			fmt.Fprintf(w, "\t%s", formatValue(value, ok))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func formatValue(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func passMark(pass bool) string {
	if pass {
		return "✅"
	}
	return "❌"
}
