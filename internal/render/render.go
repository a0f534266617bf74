// Package render produces Markdown output from a score report.
package render

import (
	"strings"

	"github.com/dshills/zellascore/internal/score"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Markdown renders a report as a Markdown document.
func Markdown(r *score.Report) string {
	var b strings.Builder
	p := message.NewPrinter(language.English)
	s := r.Summary

	// Summary
	b.WriteString("# Zella Score Report\n\n")
	p.Fprintf(&b, "**Score:** %d / 100\n", s.Score)
	p.Fprintf(&b, "**Trades:** %d (%d closed, %d wins, %d losses)\n", r.Input.Trades, s.ClosedTrades, s.Wins, s.Losses)
	p.Fprintf(&b, "**Profile:** %s (%s partition)\n", r.Input.Profile, r.Input.Partition)
	p.Fprintf(&b, "**Source:** %s\n\n", r.Input.Source)

	if s.ClosedTrades == 0 {
		b.WriteString("No closed trades; the score is 0.\n\n")
	} else {
		renderSubScores(&b, p, s, r.Meta.Weights)
		renderPnL(&b, p, s)
	}

	if len(r.Groups) > 0 {
		p.Fprintf(&b, "## By %s\n\n", r.Input.GroupBy)
		b.WriteString("| Group | Trades | Closed | Net profit | Score |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, g := range r.Groups {
			p.Fprintf(&b, "| %s | %d | %d | %.2f | %d |\n",
				g.Key, g.Trades, g.Breakdown.ClosedTrades, g.Breakdown.NetProfit, g.Breakdown.Score)
		}
		b.WriteString("\n")
	}

	if len(r.Meta.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Meta.Warnings {
			p.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderSubScores(b *strings.Builder, p *message.Printer, s score.Breakdown, w score.Weights) {
	b.WriteString("## Sub-scores\n\n")
	b.WriteString("| Metric | Value | Score | Weight |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	p.Fprintf(b, "| Avg win/loss ratio | %.2f | %.1f | %.2f |\n", s.WinLossRatio, s.AvgWinLossScore, w.AvgWinLoss)
	p.Fprintf(b, "| Win rate | %.1f%% | %.1f | %.2f |\n", s.WinRate, s.WinRateScore, w.WinRate)
	p.Fprintf(b, "| Max drawdown | %.2f (peak %.2f) | %.1f | %.2f |\n", s.MaxDrawdown, s.Peak, s.MaxDrawdownScore, w.MaxDrawdown)
	p.Fprintf(b, "| Profit factor | %.2f | %.1f | %.2f |\n", s.ProfitFactor, s.ProfitFactorScore, w.ProfitFactor)
	p.Fprintf(b, "| Recovery factor | %.2f | %.1f | %.2f |\n", s.RecoveryFactor, s.RecoveryFactorScore, w.RecoveryFactor)
	p.Fprintf(b, "| Consistency ratio | %.2f | %.1f | %.2f |\n", s.ConsistencyRatio, s.ConsistencyScore, w.Consistency)
	b.WriteString("\n")
}

func renderPnL(b *strings.Builder, p *message.Printer, s score.Breakdown) {
	b.WriteString("## P&L\n\n")
	p.Fprintf(b, "- Gross profit: %.2f\n", s.GrossProfit)
	p.Fprintf(b, "- Gross loss: %.2f\n", s.GrossLoss)
	p.Fprintf(b, "- Net profit: %.2f\n", s.NetProfit)
	p.Fprintf(b, "- Average win / loss: %.2f / %.2f\n", s.AvgWin, s.AvgLoss)
	p.Fprintf(b, "- Trading days: %d (avg %.2f per day, std dev %.2f)\n", s.TradingDays, s.AvgDailyProfit, s.DailyStdDev)
	b.WriteString("\n")
}
