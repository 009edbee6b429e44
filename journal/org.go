package journal

import (
	"bytes"
	"io"
	"os"
	"text/template"
	"time"
)

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "(all)"
		}
		return t.Format("2006-01-02")
	},
}

var runOrg = template.Must(template.New("backtest").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// WriteOrg renders run as an Org heading with its summary tables.
func WriteOrg(w io.Writer, run Run) error {
	return runOrg.Execute(w, run)
}

// SaveOrg writes the report to run.OrgPath.
func (run Run) SaveOrg() error {
	buf := new(bytes.Buffer)
	if err := WriteOrg(buf, run); err != nil {
		return err
	}
	return os.WriteFile(run.OrgPath, buf.Bytes(), 0644)
}

const RunOrgTemplate = `
* BACKTEST: {{.Strategy}} {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:DATASET:     {{.Dataset}}
:LEVELS:      {{.Levels}}
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:DAYS:        {{.Days}}
:SKIPPED:     {{.SkippedDays}}
:TRADES:      {{.Summary.Trades}}
:WINS:        {{.Summary.Wins}}
:LOSSES:      {{.Summary.Losses}}
:WIN_RATE:    {{printf "%.2f" .Summary.WinRate}}
:NET_PL:      {{printf "%.2f" .Summary.NetCurrency}}
:PROFIT_FAC:  {{if ne .Summary.ProfitFactor 0.0}}{{printf "%.2f" .Summary.ProfitFactor}}{{else}}(no losses){{end}}
:MAX_DD:      {{printf "%.2f" .Summary.MaxDrawdown}}
:MAX_DD_PCT:  {{printf "%.2f" .Summary.MaxDrawdownPct}}
:SHARPE:      {{printf "%.2f" .Summary.Sharpe}}
:SORTINO:     {{printf "%.2f" .Summary.Sortino}}
:CALMAR:      {{printf "%.2f" .Summary.Calmar}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Strategy Parameters
| Parameter           | Value |
|---------------------+-------|
| DOW filter          | {{.Config.DOWFilter}} |
{{- if .Config.IsContrarian }}
| Minimum prior range | {{.Config.Contra.MinRange}} |
| Stop points         | {{.Config.Contra.StopPoints}} |
| Target points       | {{.Config.Contra.TargetPoints}} |
{{- else }}
| Fixed stop          | {{.Config.UseFixedStop}} |
| Fixed stop currency | {{printf "%.2f" .Config.FixedStopCurrency}} |
| Trail points        | {{.Config.TrailPoints}} |
| Holding days        | {{.Config.HoldingDays}} |
{{- end }}
| Multiplier          | {{.Config.ContractMultiplier}} |

** Performance Summary
- Net P/L:          *{{printf "%.2f" .Summary.NetCurrency}}* ({{printf "%.2f" .Summary.NetPoints}} pts)
- Average trade:    *{{printf "%.2f" .Summary.AvgCurrency}}*
- Max Drawdown:     *{{printf "%.2f" .Summary.MaxDrawdown}}* ({{printf "%.2f" .Summary.MaxDrawdownPct}}%, {{.Summary.MaxDrawdownTrades}} trades)
- Annual return:    *{{printf "%.2f" .Summary.AnnualReturn}}* over {{.Summary.PeriodDays}} days
- Volatility:       *{{printf "%.2f" .Summary.Volatility}}*
- Sharpe / Sortino: *{{printf "%.2f" .Summary.Sharpe}}* / *{{printf "%.2f" .Summary.Sortino}}*
- Calmar:           *{{printf "%.2f" .Summary.Calmar}}*
- Win Rate:         *{{printf "%.2f" .Summary.WinRate}}%*
- Best / Worst:     *{{printf "%.2f" .Summary.Best}}* / *{{printf "%.2f" .Summary.Worst}}*
- Streaks:          *{{.Summary.MaxWinStreak}}* wins, *{{.Summary.MaxLossStreak}}* losses
- Time in market:   *{{printf "%.1f" .Summary.AvgDurationMinutes}}* min avg

** Exit Reasons
| Reason | Trades | Wins | P/L |
|--------+--------+------+-----|
{{- range $r := .Summary.Reasons }}
{{- with index $.Summary.ByReason $r }}
| {{$r}} | {{.Trades}} | {{.Wins}} | {{printf "%.2f" .PnLCurrency}} |
{{- end }}
{{- end }}

** Sides
| Side | Trades | Wins | P/L |
|------+--------+------+-----|
{{- range $s := .Summary.Sides }}
{{- with index $.Summary.BySide $s }}
| {{$s}} | {{.Trades}} | {{.Wins}} | {{printf "%.2f" .PnLCurrency}} |
{{- end }}
{{- end }}

{{- if .LedgerPath }}

** Ledger
[[file:{{.LedgerPath}}]]
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
