package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// FormatOpportunity renders an arbitrage opportunity as a short alert body.
func FormatOpportunity(opp domain.Opportunity) (title, message string) {
	title = fmt.Sprintf("Arb: %s %s +%s", strings.ToUpper(string(opp.League)), opp.Team, opp.Profit.StringFixed(4))
	message = fmt.Sprintf(
		"%s vs %s\ndirection: %s\nkalshi %s + polymarket %s = %s cost\nprofit %s per $1 contract",
		opp.KalshiTicker, opp.PolySlug,
		opp.Direction,
		opp.KalshiPrice.StringFixed(2), opp.PolyPrice.StringFixed(2), opp.Cost.StringFixed(2),
		opp.Profit.StringFixed(4),
	)
	return title, message
}

// FormatReport renders a scan report summary.
func FormatReport(report domain.ScanReport) (title, message string) {
	title = fmt.Sprintf("Scan finished: %d opportunities", len(report.Opportunities))
	message = fmt.Sprintf(
		"series: %s\nscanned %d, matched %d, no match %d, failed %d\ntook %s",
		strings.Join(report.Series, ", "),
		report.Scanned, report.Matched, report.NoMatch, report.Failed,
		report.FinishedAt.Sub(report.StartedAt).Truncate(time.Millisecond),
	)
	return title, message
}
