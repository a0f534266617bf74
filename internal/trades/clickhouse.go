package trades

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/dshills/zellascore/internal/score"
	"github.com/shopspring/decimal"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ClickHouseConfig locates a trades table. User, Password and Database
// override the values embedded in DSN when set.
type ClickHouseConfig struct {
	DSN      string
	Database string
	Table    string
	User     string
	Password string
	Account  string
	Since    time.Time
}

// ClickHouseSource reads closed and open trades from a ClickHouse table with columns
// pnl_amount Nullable(Decimal), close_price Nullable(Decimal),
// close_time Nullable(DateTime64), symbol String, strategy String, account String, id.
type ClickHouseSource struct {
	cfg ClickHouseConfig
}

func NewClickHouseSource(cfg ClickHouseConfig) (*ClickHouseSource, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("trades.NewClickHouseSource: dsn required")
	}
	if cfg.Table == "" {
		cfg.Table = "trades"
	}
	for _, ident := range []string{cfg.Database, cfg.Table} {
		if ident != "" && !identPattern.MatchString(ident) {
			return nil, fmt.Errorf("trades.NewClickHouseSource: invalid identifier %q", ident)
		}
	}
	return &ClickHouseSource{cfg: cfg}, nil
}

func (s *ClickHouseSource) Name() string { return "clickhouse" }

func (s *ClickHouseSource) options() (*clickhouse.Options, error) {
	opts, err := clickhouse.ParseDSN(s.cfg.DSN)
	if err != nil {
		return nil, err
	}
	if s.cfg.Database != "" {
		opts.Auth.Database = s.cfg.Database
	}
	if s.cfg.User != "" {
		opts.Auth.Username = s.cfg.User
	}
	if s.cfg.Password != "" {
		opts.Auth.Password = s.cfg.Password
	}
	return opts, nil
}

func (s *ClickHouseSource) table() string {
	if s.cfg.Database == "" {
		return s.cfg.Table
	}
	return s.cfg.Database + "." + s.cfg.Table
}

// query builds the select statement. Rows come back in close order so the
// drawdown walk sees them as they were realized.
func (s *ClickHouseSource) query() (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT pnl_amount, close_price, close_time, symbol, strategy FROM %s", s.table())

	var where []string
	var args []any
	if s.cfg.Account != "" {
		where = append(where, "account = ?")
		args = append(args, s.cfg.Account)
	}
	if !s.cfg.Since.IsZero() {
		where = append(where, "close_time >= ?")
		args = append(args, s.cfg.Since)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY close_time, id")
	return b.String(), args
}

func (s *ClickHouseSource) Fetch(ctx context.Context) (*Batch, error) {
	opts, err := s.options()
	if err != nil {
		return nil, fmt.Errorf("trades.ClickHouseSource: parse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("trades.ClickHouseSource: open: %w", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("trades.ClickHouseSource: ping: %w", err)
	}

	q, args := s.query()
	rows, err := conn.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("trades.ClickHouseSource: query: %w", err)
	}
	defer rows.Close()

	var trades []score.Trade
	for rows.Next() {
		var (
			pnl, price       *decimal.Decimal
			closeTime        *time.Time
			symbol, strategy string
		)
		if err := rows.Scan(&pnl, &price, &closeTime, &symbol, &strategy); err != nil {
			return nil, fmt.Errorf("trades.ClickHouseSource: scan: %w", err)
		}
		trades = append(trades, rowTrade(pnl, price, closeTime, symbol, strategy))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trades.ClickHouseSource: rows: %w", err)
	}

	hash, err := hashTrades(trades)
	if err != nil {
		return nil, fmt.Errorf("trades.ClickHouseSource: hash: %w", err)
	}
	return &Batch{
		Source: "clickhouse:" + s.table(),
		Hash:   hash,
		Trades: trades,
	}, nil
}

func rowTrade(pnl, price *decimal.Decimal, closeTime *time.Time, symbol, strategy string) score.Trade {
	t := score.Trade{
		RealizedPnL: toFloat(pnl),
		ClosePrice:  toFloat(price),
		Symbol:      symbol,
		Strategy:    strategy,
	}
	if closeTime != nil && !closeTime.IsZero() {
		t.CloseTime = closeTime.UTC().Format(time.RFC3339Nano)
	}
	return t
}
