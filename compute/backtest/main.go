// backtest replays stored 1-minute bars for a date range through the
// signal engine, records the trades under a fresh run id and optionally
// exports the per-timeframe bar series to files.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"options-tracker/pkg/contract"
	"options-tracker/pkg/engine"
	"options-tracker/pkg/saver"
	"options-tracker/pkg/shared"
)

type Config struct {
	PG      shared.PostgresConfig
	Polygon shared.PolygonConfig

	From string `envconfig:"FROM" required:"true"` // 2006-01-02
	To   string `envconfig:"TO" required:"true"`

	// Symbols to replay. Empty means derive the tracked set from
	// UNDERLYING, REF_PRICE and FROM.
	Symbols  string `envconfig:"SYMBOLS"`
	RefPrice string `envconfig:"REF_PRICE"`

	SaveFormat string `envconfig:"SAVE_FORMAT"` // csv|json|parquet, empty disables export
	OutDir     string `envconfig:"OUT_DIR" default:"./out"`
}

const insertTrade = `
INSERT INTO trades (id, run_id, symbol, tf, entry_ts, exit_ts, entry_price, exit_price, pnl)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

func main() {
	var cfg Config
	envconfig.MustProcess("", &cfg)
	logger := shared.NewLogger("backtest")

	from, err := time.ParseInLocation("2006-01-02", cfg.From, time.UTC)
	if err != nil {
		logger.Fatalf("bad FROM: %v", err)
	}
	to, err := time.ParseInLocation("2006-01-02", cfg.To, time.UTC)
	if err != nil {
		logger.Fatalf("bad TO: %v", err)
	}
	toEnd := to.AddDate(0, 0, 1)

	symbols, err := resolveSymbols(cfg, from)
	if err != nil {
		logger.Fatalf("symbol resolution: %v", err)
	}

	var sv saver.Saver
	if cfg.SaveFormat != "" {
		if sv = saver.New(cfg.SaveFormat); sv == nil {
			logger.Fatalf("unsupported SAVE_FORMAT %q", cfg.SaveFormat)
		}
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			logger.Fatalf("out dir: %v", err)
		}
	}

	ctx := context.Background()
	db, err := shared.NewPgxPool(ctx, cfg.PG)
	if err != nil {
		logger.Fatalf("db init: %v", err)
	}
	defer db.Close()

	runID := uuid.New()
	logger.Printf("run %s: %d symbols, %s..%s", runID, len(symbols), cfg.From, cfg.To)

	var allTrades []shared.TradeRecord
	for _, symbol := range symbols {
		bars, err := loadBars(ctx, db, symbol, from.UnixMilli(), toEnd.UnixMilli())
		if err != nil {
			logger.Fatalf("load %s: %v", symbol, err)
		}
		if len(bars) == 0 {
			logger.Printf("%s: no bars in range", symbol)
			continue
		}
		ev := engine.Run(symbol, bars)
		logger.Printf("%s: %d source bars, %d bars across timeframes, %d trades",
			symbol, len(bars), len(ev.Bars), len(ev.Trades))

		if err := storeTrades(ctx, db, runID, ev.Trades); err != nil {
			logger.Fatalf("store trades %s: %v", symbol, err)
		}
		allTrades = append(allTrades, ev.Trades...)

		if sv != nil {
			if err := export(sv, cfg.OutDir, symbol, ev.Bars); err != nil {
				logger.Fatalf("export %s: %v", symbol, err)
			}
		}
	}

	s := engine.Summarize(allTrades)
	logger.Printf("run %s done: trades=%d wins=%d losses=%d win_rate=%.1f%% net_pnl=%s",
		runID, s.Trades, s.Wins, s.Losses, s.WinRate, s.NetPnL.String())
}

func resolveSymbols(cfg Config, from time.Time) ([]string, error) {
	if cfg.Symbols != "" {
		parts := strings.Split(cfg.Symbols, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}
	if cfg.RefPrice == "" {
		return nil, fmt.Errorf("set SYMBOLS or REF_PRICE")
	}
	ref, err := decimal.NewFromString(cfg.RefPrice)
	if err != nil {
		return nil, fmt.Errorf("bad REF_PRICE: %w", err)
	}
	contracts := contract.TrackedSet(cfg.Polygon.Underlying, ref, from)
	out := make([]string, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, c.Symbol())
	}
	return out, nil
}

func loadBars(ctx context.Context, db *shared.PgxDB, symbol string, fromMs, toMs int64) ([]shared.Bar, error) {
	rows, err := db.Query(ctx,
		`SELECT ts, o, h, l, c, vol FROM bars_1m WHERE symbol = $1 AND ts >= $2 AND ts < $3 ORDER BY ts`,
		symbol, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []shared.Bar
	for rows.Next() {
		b := shared.Bar{Symbol: symbol, TF: shared.TFLabel(shared.NativeTF)}
		if err := rows.Scan(&b.TS, &b.O, &b.H, &b.L, &b.C, &b.Vol); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func storeTrades(ctx context.Context, db *shared.PgxDB, runID uuid.UUID, trades []shared.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	conn, err := db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	batch := &pgx.Batch{}
	for _, tr := range trades {
		batch.Queue(insertTrade, uuid.New(), runID,
			tr.Symbol, tr.TF, tr.EntryTS, tr.ExitTS, tr.EntryPrice, tr.ExitPrice, tr.PnL)
	}
	return conn.SendBatch(ctx, batch).Close()
}

// export writes one file per (symbol, timeframe), bars sorted by timestamp.
func export(sv saver.Saver, dir, symbol string, bars []shared.Bar) error {
	byTF := make(map[string][]shared.Bar)
	for _, b := range bars {
		byTF[b.TF] = append(byTF[b.TF], b)
	}
	for tf, series := range byTF {
		sort.Slice(series, func(i, j int) bool { return series[i].TS < series[j].TS })
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", symbol, tf, sv.Extension()))
		if err := sv.Save(series, path); err != nil {
			return err
		}
	}
	return nil
}
