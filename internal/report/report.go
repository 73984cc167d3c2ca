// Package report renders a simulation summary as markdown, for the terminal
// (glamour) or the browser (goldmark).
package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/simulation"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultCurrency is used when no currency code is given.
const DefaultCurrency = "USD"

// Markdown renders the summary table, final holdings and a year-by-year table.
func Markdown(title string, res *simulation.Result, s analysis.Summary, currency string) string {
	if currency == "" || money.GetCurrency(currency) == nil {
		currency = DefaultCurrency
	}
	if title == "" {
		title = "Rebalance Simulation"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("| | |\n|---|---:|\n")
	row(&b, "Initial principal", Amount(s.Principal, currency))
	row(&b, "Total contributed", Amount(s.TotalContributed, currency))
	row(&b, "Final value", Amount(s.FinalValue, currency))
	row(&b, "Gain", Amount(s.Gain, currency))
	row(&b, "Annualized return", Percent(s.AnnualizedReturn))
	row(&b, "Max drawdown", Percent(s.MaxDrawdown))
	row(&b, "Months", fmt.Sprint(s.Months))
	row(&b, "Rebalances", fmt.Sprint(s.Rebalances))
	b.WriteString("\n")

	if len(s.Holdings) > 0 {
		b.WriteString("## Holdings\n\n")
		b.WriteString("| Method | Target | Final share | Final value |\n|---|---:|---:|---:|\n")
		for _, h := range s.Holdings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escape(h.Name), Percent(h.Target), Percent(h.Share), Amount(h.Value, currency))
		}
		b.WriteString("\n")
	}

	if res != nil && len(res.Timeline) > 0 {
		b.WriteString("## By year\n\n")
		b.WriteString("| Year | Total |")
		align := "|---:|---:|"
		for _, name := range res.Methods {
			fmt.Fprintf(&b, " %s |", escape(name))
			align += "---:|"
		}
		b.WriteString("\n" + align + "\n")
		for _, p := range res.Timeline {
			if p.Month%12 != 0 {
				continue
			}
			fmt.Fprintf(&b, "| %d | %s |", p.Month/12, Amount(p.Total, currency))
			for _, v := range p.Values {
				fmt.Fprintf(&b, " %s |", Amount(v, currency))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Amount formats a value in currency, rounded half away from zero to the
// currency's minor unit.
func Amount(v float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v %s", v, cur.Code)
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(v).Mul(factor).Round(0)
	if minor.GreaterThanOrEqual(minInt64) && minor.LessThanOrEqual(maxInt64) {
		return money.New(minor.IntPart(), cur.Code).Display()
	}
	return displayLarge(minor, cur)
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// displayLarge lays out minor units the way money.Formatter does, for
// amounts that do not fit in an int64.
func displayLarge(minor decimal.Decimal, cur *money.Currency) string {
	sa := minor.Abs().StringFixed(0)
	if len(sa) <= cur.Fraction {
		sa = strings.Repeat("0", cur.Fraction-len(sa)+1) + sa
	}
	if cur.Thousand != "" {
		for i := len(sa) - cur.Fraction - 3; i > 0; i -= 3 {
			sa = sa[:i] + cur.Thousand + sa[i:]
		}
	}
	if cur.Fraction > 0 {
		sa = sa[:len(sa)-cur.Fraction] + cur.Decimal + sa[len(sa)-cur.Fraction:]
	}
	sa = strings.Replace(cur.Template, "1", sa, 1)
	sa = strings.Replace(sa, "$", cur.Grapheme, 1)
	if minor.IsNegative() {
		sa = "-" + sa
	}
	return sa
}

// Percent formats a fraction as a percentage with two decimals.
func Percent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprintf("%v%%", f)
	}
	return decimal.NewFromFloat(f).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// Terminal renders markdown for an ANSI terminal.
func Terminal(md string) (string, error) {
	return glamour.Render(md, "dark")
}

// HTML renders markdown, tables included, to an HTML fragment.
func HTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", label, value)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
