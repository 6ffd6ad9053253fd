package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"AMMSim/internal/model"
)

// FormatRunSummary formats a finished run into a Telegram HTML message.
func FormatRunSummary(sum *model.RunSummary) string {
	var b strings.Builder

	status := "✅"
	if sum.Err != "" {
		status = "❌"
	}
	b.WriteString(fmt.Sprintf("%s <b>AMM run</b> | %s\n\n", status, sum.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Run: <code>%s</code> (seed %d)\n", sum.RunID, sum.Seed))
	b.WriteString(fmt.Sprintf("Ticks: %s | Traders: %d (%d arbitrageurs)\n",
		humanize.Comma(int64(sum.Ticks)), sum.NumTraders, sum.NumArbitrageur))
	b.WriteString(fmt.Sprintf("Duration: %s\n\n", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond)))

	// Prices
	b.WriteString("📈 <b>Price</b>\n")
	b.WriteString(fmt.Sprintf("  start %s → end %s DAI/ETH\n", price(sum.InitialPrice), price(sum.FinalPrice)))
	b.WriteString(fmt.Sprintf("  range %s – %s | reference %s\n", price(sum.PriceLow), price(sum.PriceHigh), price(sum.BasePrice)))
	b.WriteString(fmt.Sprintf("  tracking error %s%% (max %s%%, closing %s%%)\n", percent(sum.TrackingError), percent(sum.MaxGap), percent(sum.SmoothedGap)))
	b.WriteString(fmt.Sprintf("  final price at %s%% of range\n\n", decimal.NewFromFloat(sum.RangePosition).Shift(2).StringFixed(0)))

	// Pool
	b.WriteString("💧 <b>Pool</b>\n")
	b.WriteString(fmt.Sprintf("  k %s → %s (drift %s%%)\n",
		humanize.SIWithDigits(sum.InitialK, 3, ""), humanize.SIWithDigits(sum.FinalK, 3, ""), percent(sum.KDrift())))
	b.WriteString(fmt.Sprintf("  trades %s executed, %s skipped\n",
		humanize.Comma(int64(sum.TradesExecuted)), humanize.Comma(int64(sum.TradesSkipped))))

	if sum.Err != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", sum.Err))
	}
	return b.String()
}

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(3)
}
