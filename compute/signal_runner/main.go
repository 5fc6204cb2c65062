// signal_runner consumes 1-minute option bars, derives the 5m/10m
// timeframes, evaluates the entry/exit rules per (contract, timeframe) and
// persists and publishes the resulting bars and trades.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"

	"options-tracker/pkg/engine"
	"options-tracker/pkg/notify"
	"options-tracker/pkg/shared"
)

type Config struct {
	Kafka   shared.KafkaConfig
	PG      shared.PostgresConfig
	Metrics shared.MetricsConfig
	SMTP    shared.SMTPConfig

	InTopic     string `envconfig:"IN_TOPIC" default:"bars.opt.1m"`
	BarTopicFmt string `envconfig:"BAR_TOPIC_FMT" default:"bars.opt.%s"`
	TradesTopic string `envconfig:"TRADES_TOPIC" default:"trades.v1"`
}

type metrics struct {
	barsIn  prometheus.Counter
	barsOut *prometheus.CounterVec
	trades  *prometheus.CounterVec
	open    prometheus.Gauge
	badMsgs prometheus.Counter
}

func newMetrics() metrics {
	return metrics{
		barsIn:  shared.NewCounter(prometheus.CounterOpts{Name: "sigrun_bars_in_total", Help: "1m bars consumed"}),
		barsOut: shared.NewCounterVec(prometheus.CounterOpts{Name: "sigrun_bars_out_total", Help: "Derived bars emitted"}, []string{"tf"}),
		trades:  shared.NewCounterVec(prometheus.CounterOpts{Name: "sigrun_trades_total", Help: "Completed trades"}, []string{"tf"}),
		open:    shared.NewGauge(prometheus.GaugeOpts{Name: "sigrun_open_positions", Help: "Open positions"}),
		badMsgs: shared.NewCounter(prometheus.CounterOpts{Name: "sigrun_bad_messages_total", Help: "Undecodable messages"}),
	}
}

const insertTrade = `
INSERT INTO trades (id, run_id, symbol, tf, entry_ts, exit_ts, entry_price, exit_price, pnl)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

const upsertDerivedTmpl = `
INSERT INTO bars_%s (symbol, ts, o, h, l, c, vol)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (symbol, ts) DO UPDATE
SET o = excluded.o, h = excluded.h, l = excluded.l, c = excluded.c, vol = excluded.vol;
`

func main() {
	var cfg Config
	envconfig.MustProcess("", &cfg)
	logger := shared.NewLogger("signal_runner")

	m := newMetrics()
	shared.NewMetricsServer(cfg.Metrics.Port).Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := shared.NewConsumer(cfg.Kafka, []string{cfg.InTopic})
	if err != nil {
		logger.Fatalf("consumer init: %v", err)
	}
	defer consumer.Close()

	producer, err := shared.NewProducer(cfg.Kafka)
	if err != nil {
		logger.Fatalf("producer init: %v", err)
	}
	defer producer.Close()

	db, err := shared.NewPgxPool(ctx, cfg.PG)
	if err != nil {
		logger.Fatalf("db init: %v", err)
	}
	defer db.Close()

	notifier := notify.New(cfg.SMTP, logger)
	tracker := engine.NewTracker()
	runID := uuid.New()
	logger.Printf("run %s consuming %s", runID, cfg.InTopic)

	for {
		msg, err := consumer.Poll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Printf("shutting down")
				return
			}
			continue
		}
		var bar shared.Bar
		if err := json.Unmarshal(msg.Value, &bar); err != nil {
			m.badMsgs.Inc()
			_ = shared.CommitSingle(consumer, msg)
			continue
		}
		m.barsIn.Inc()
		ev := tracker.Append(bar)
		if err := handleEvent(ctx, cfg, db, producer, notifier, runID, ev, m); err != nil {
			logger.Printf("event handling: %v", err)
		}
		m.open.Set(float64(tracker.OpenPositions()))
		_ = shared.CommitSingle(consumer, msg)
	}
}

func handleEvent(ctx context.Context, cfg Config, db *shared.PgxDB, prod shared.Producer, notifier notify.Notifier, runID uuid.UUID, ev engine.Event, m metrics) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	nativeTF := shared.TFLabel(shared.NativeTF)
	for _, b := range ev.Bars {
		if b.TF == nativeTF {
			continue // source bars are already persisted upstream
		}
		upsert := fmt.Sprintf(upsertDerivedTmpl, b.TF)
		if err := db.Exec(ctx, upsert, b.Symbol, b.TS, b.O, b.H, b.L, b.C, b.Vol); err != nil {
			return fmt.Errorf("upsert %s bar: %w", b.TF, err)
		}
		topic := fmt.Sprintf(cfg.BarTopicFmt, b.TF)
		if err := prod.ProduceJSON(ctx, topic, []byte(b.Symbol), b); err != nil {
			return fmt.Errorf("publish %s bar: %w", b.TF, err)
		}
		m.barsOut.WithLabelValues(b.TF).Inc()
	}

	for _, e := range ev.Entries {
		notifier.TradeOpened(e.Symbol, e.TF, e.Price.String(), e.TS)
	}
	for _, tr := range ev.Trades {
		id := uuid.New()
		if err := db.Exec(ctx, insertTrade, id, runID,
			tr.Symbol, tr.TF, tr.EntryTS, tr.ExitTS, tr.EntryPrice, tr.ExitPrice, tr.PnL); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
		if err := prod.ProduceJSON(ctx, cfg.TradesTopic, []byte(id.String()), tr); err != nil {
			return fmt.Errorf("publish trade: %w", err)
		}
		m.trades.WithLabelValues(tr.TF).Inc()
		notifier.TradeClosed(tr)
	}
	return nil
}
