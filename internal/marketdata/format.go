package marketdata

import (
	"fmt"
	"strconv"
	"strings"

	"marketpulse/internal/domain"
)

// FormatContext renders a market data record as the plain-text block embedded
// in scoring prompts.
func FormatContext(md *domain.MarketData) string {
	if md == nil {
		return "No market data available."
	}

	company := md.CompanyName
	if company == "" {
		company = md.Symbol
	}

	var trend string
	switch {
	case md.PriceChangePct > 0:
		trend = fmt.Sprintf("up %.2f%%", md.PriceChangePct)
	case md.PriceChangePct < 0:
		trend = fmt.Sprintf("down %.2f%%", -md.PriceChangePct)
	default:
		trend = "flat"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "MARKET CONTEXT FOR %s (%s):\n\n", md.Symbol, company)
	fmt.Fprintf(&sb, "Recent Performance (%d days):\n", md.PeriodDays)
	fmt.Fprintf(&sb, "- Current Price: $%.2f\n", md.LatestPrice)
	fmt.Fprintf(&sb, "- Price Change: %s\n", trend)
	fmt.Fprintf(&sb, "- Period High: $%.2f\n", md.PeriodHigh)
	fmt.Fprintf(&sb, "- Period Low: $%.2f\n", md.PeriodLow)
	fmt.Fprintf(&sb, "- Average Daily Volume: %s\n", groupThousands(md.AvgVolume))
	sb.WriteString("\nCompany Information:\n")
	sector := md.Sector
	if sector == "" {
		sector = "Unknown"
	}
	fmt.Fprintf(&sb, "- Sector: %s\n", sector)
	if md.MarketCap > 0 {
		fmt.Fprintf(&sb, "- Market Cap: $%.2fB\n", md.MarketCap/1e9)
	}

	if len(md.DailyPrices) >= 7 {
		recent := md.DailyPrices[len(md.DailyPrices)-7:]
		sb.WriteString("\nRecent Daily Closes:\n")
		for _, day := range recent {
			fmt.Fprintf(&sb, "  %s: $%.2f\n", day.Date, day.Close)
		}
	}
	return strings.TrimSpace(sb.String())
}

func groupThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
