// option_bars resolves the day's tracked option contracts, pulls their
// 1-minute bars from Polygon, persists them and publishes them to Kafka.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"options-tracker/pkg/contract"
	"options-tracker/pkg/polygon"
	"options-tracker/pkg/shared"
)

type Config struct {
	Kafka   shared.KafkaConfig
	PG      shared.PostgresConfig
	Metrics shared.MetricsConfig
	Polygon shared.PolygonConfig

	OutTopic      string        `envconfig:"OUT_TOPIC" default:"bars.opt.1m"`
	LookbackDays  int           `envconfig:"LOOKBACK_DAYS" default:"7"`
	FetchInterval time.Duration `envconfig:"FETCH_INTERVAL" default:"60s"`
}

type metrics struct {
	fetches  prometheus.Counter
	fetchErr prometheus.Counter
	barsIn   *prometheus.CounterVec
	fetchDur prometheus.Histogram
}

func newMetrics() metrics {
	return metrics{
		fetches:  shared.NewCounter(prometheus.CounterOpts{Name: "optbars_fetch_total", Help: "Fetch cycles"}),
		fetchErr: shared.NewCounter(prometheus.CounterOpts{Name: "optbars_fetch_errors_total", Help: "Failed fetches"}),
		barsIn:   shared.NewCounterVec(prometheus.CounterOpts{Name: "optbars_bars_total", Help: "Bars ingested"}, []string{"symbol"}),
		fetchDur: shared.NewHist(prometheus.HistogramOpts{Name: "optbars_fetch_seconds", Help: "Fetch cycle duration", Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30}}),
	}
}

const upsertBar = `
INSERT INTO bars_1m (symbol, ts, o, h, l, c, vol)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (symbol, ts) DO UPDATE
SET o = excluded.o, h = excluded.h, l = excluded.l, c = excluded.c, vol = excluded.vol;
`

func main() {
	var cfg Config
	envconfig.MustProcess("", &cfg)
	logger := shared.NewLogger("option_bars")

	if cfg.Polygon.APIKey == "" {
		logger.Fatalf("POLYGON_API_KEY required")
	}

	m := newMetrics()
	shared.NewMetricsServer(cfg.Metrics.Port).Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := polygon.NewClient(cfg.Polygon)

	db, err := shared.NewPgxPool(ctx, cfg.PG)
	if err != nil {
		logger.Fatalf("db init: %v", err)
	}
	defer db.Close()

	producer, err := shared.NewProducer(cfg.Kafka)
	if err != nil {
		logger.Fatalf("producer init: %v", err)
	}
	defer producer.Close()

	contracts, err := resolveContracts(ctx, client, cfg.Polygon.Underlying, logger)
	if err != nil {
		logger.Fatalf("contract resolution: %v", err)
	}
	for _, c := range contracts {
		logger.Printf("tracking %s (strike=%s expiry=%s)", c.Symbol(), c.Strike.String(), c.Expiry.Format("2006-01-02"))
	}

	ticker := time.NewTicker(cfg.FetchInterval)
	defer ticker.Stop()

	fetchAll(ctx, cfg, client, db, producer, contracts, m, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Printf("shutting down")
			return
		case <-ticker.C:
			fetchAll(ctx, cfg, client, db, producer, contracts, m, logger)
		}
	}
}

// resolveContracts picks the tracked set from the underlying's daily open.
// On non-trading days open-close has no data, so walk back a few days to
// the last session.
func resolveContracts(ctx context.Context, client *polygon.Client, underlying string, logger shared.Logger) ([]contract.Contract, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	var refPrice decimal.Decimal
	var refDate time.Time
	var err error
	for back := 0; back < 5; back++ {
		refDate = today.AddDate(0, 0, -back)
		refPrice, err = client.DailyOpen(ctx, underlying, refDate)
		if err == nil {
			break
		}
		logger.Printf("no open for %s on %s: %v", underlying, refDate.Format("2006-01-02"), err)
	}
	if err != nil {
		return nil, err
	}
	return contract.TrackedSet(underlying, refPrice, today), nil
}

func fetchAll(ctx context.Context, cfg Config, client *polygon.Client, db *shared.PgxDB, prod shared.Producer, contracts []contract.Contract, m metrics, logger shared.Logger) {
	start := time.Now()
	m.fetches.Inc()
	for _, c := range contracts {
		if err := fetchOne(ctx, cfg, client, db, prod, c.Symbol(), m); err != nil {
			m.fetchErr.Inc()
			logger.Printf("fetch %s: %v", c.Symbol(), err)
		}
	}
	m.fetchDur.Observe(time.Since(start).Seconds())
}

// fetchOne pulls bars newer than what the DB already has, upserts them and
// publishes them in timestamp order.
func fetchOne(ctx context.Context, cfg Config, client *polygon.Client, db *shared.PgxDB, prod shared.Producer, symbol string, m metrics) error {
	since, err := lastSeen(ctx, db, symbol, cfg.LookbackDays)
	if err != nil {
		return err
	}
	now := time.Now().UTC().UnixMilli()
	bars, err := client.MinuteBars(ctx, symbol, since+1, now)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return nil
	}

	conn, err := db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	batch := &pgx.Batch{}
	records := make([]shared.Record, 0, len(bars))
	for _, b := range bars {
		batch.Queue(upsertBar, b.Symbol, b.TS, b.O, b.H, b.L, b.C, b.Vol)
		payload, err := json.Marshal(b)
		if err != nil {
			return err
		}
		records = append(records, shared.Record{Key: []byte(b.Symbol), Value: payload})
	}
	if err := conn.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	if err := prod.ProduceBatch(ctx, cfg.OutTopic, records); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	m.barsIn.WithLabelValues(symbol).Add(float64(len(bars)))
	return nil
}

func lastSeen(ctx context.Context, db *shared.PgxDB, symbol string, lookbackDays int) (int64, error) {
	floor := time.Now().UTC().AddDate(0, 0, -lookbackDays).UnixMilli()
	rows, err := db.Query(ctx, `SELECT COALESCE(MAX(ts), $2) FROM bars_1m WHERE symbol = $1`, symbol, floor)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var ts int64
	if rows.Next() {
		if err := rows.Scan(&ts); err != nil {
			return 0, err
		}
	}
	return ts, rows.Err()
}
