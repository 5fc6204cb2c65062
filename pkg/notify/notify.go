// Package notify delivers trade alerts, either to the log or by email.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"options-tracker/pkg/shared"
)

// Notifier receives trade lifecycle events. Implementations must not block
// the caller for long; delivery failures are logged, not propagated.
type Notifier interface {
	TradeOpened(symbol, tf string, price string, ts int64)
	TradeClosed(tr shared.TradeRecord)
}

// New returns an SMTP notifier when email alerts are enabled, otherwise a
// log-only notifier.
func New(cfg shared.SMTPConfig, log shared.Logger) Notifier {
	if cfg.Enabled && cfg.Sender != "" && len(cfg.Recipients()) > 0 {
		return &SMTPNotifier{cfg: cfg, log: log}
	}
	return &LogNotifier{log: log}
}

// LogNotifier writes alerts to the service log.
type LogNotifier struct {
	log shared.Logger
}

func (n *LogNotifier) TradeOpened(symbol, tf string, price string, ts int64) {
	n.log.Printf("[alert] ENTER %s %s @ %s ts=%d", symbol, tf, price, ts)
}

func (n *LogNotifier) TradeClosed(tr shared.TradeRecord) {
	n.log.Printf("[alert] EXIT %s %s entry=%s exit=%s pnl=%s",
		tr.Symbol, tr.TF, tr.EntryPrice.String(), tr.ExitPrice.String(), tr.PnL.String())
}

// SMTPNotifier emails alerts via plain-auth SMTP.
type SMTPNotifier struct {
	cfg shared.SMTPConfig
	log shared.Logger
}

func (n *SMTPNotifier) TradeOpened(symbol, tf string, price string, ts int64) {
	subject := fmt.Sprintf("ENTER %s (%s)", symbol, tf)
	body := fmt.Sprintf("Entered %s on %s at %s (ts=%d).", symbol, tf, price, ts)
	n.send(subject, body)
}

func (n *SMTPNotifier) TradeClosed(tr shared.TradeRecord) {
	subject := fmt.Sprintf("EXIT %s (%s) pnl=%s", tr.Symbol, tr.TF, tr.PnL.String())
	body := fmt.Sprintf("Exited %s on %s.\nEntry: %s\nExit: %s\nPnL: %s",
		tr.Symbol, tr.TF, tr.EntryPrice.String(), tr.ExitPrice.String(), tr.PnL.String())
	n.send(subject, body)
}

func (n *SMTPNotifier) send(subject, body string) {
	to := n.cfg.Recipients()
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.cfg.Sender, strings.Join(to, ","), subject, body)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.Host)
	if err := smtp.SendMail(addr, auth, n.cfg.Sender, to, []byte(msg)); err != nil {
		n.log.Printf("smtp send failed: %v", err)
	}
}
