package journal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rangetrader/backtest"
)

func TestWriteOrg(t *testing.T) {
	t.Parallel()

	breakout := backtest.DefaultConfig()
	contra := backtest.DefaultConfig()
	contra.Kind = backtest.KindContrarian

	tests := []struct {
		name    string
		cfg     backtest.Config
		want    []string
		notWant []string
	}{
		{
			name: "breakout",
			cfg:  breakout,
			want: []string{
				"* BACKTEST: range_breakout bars.csv",
				"| Holding days        | 0 |",
			},
			notWant: []string{"Target points"},
		},
		{
			name: "contrarian",
			cfg:  contra,
			want: []string{
				"* BACKTEST: contrarian_volatility bars.csv",
				"| Minimum prior range | 100 |",
				"| Stop points         | 50 |",
				"| Target points       | 100 |",
			},
			notWant: []string{"Holding days", "Fixed stop"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := Run{
				RunID:    "r1",
				Strategy: tt.cfg.StrategyName(),
				Dataset:  "bars.csv",
				Config:   tt.cfg,
				Summary:  Summarize(sampleTrades()),
			}
			var buf bytes.Buffer
			require.NoError(t, WriteOrg(&buf, run))
			s := buf.String()

			for _, w := range append(tt.want,
				":MAX_DD_PCT:  75.00",
				":SHARPE:      0.43",
				":SORTINO:     2.55",
				":CALMAR:      273.75",
				"- Max Drawdown:     *75.00* (75.00%, 2 trades)",
				"- Annual return:    *20531.25* over 4 days",
				"- Volatility:       *103.68*",
			) {
				assert.Contains(t, s, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, s, w)
			}
		})
	}
}
