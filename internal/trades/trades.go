// Package trades loads trade records from files and databases.
package trades

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/zellascore/internal/score"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Batch is a set of trades fetched from one source, in realization order.
type Batch struct {
	Source string
	Hash   string
	Trades []score.Trade
}

// record is the wire form of a trade. Amounts accept numbers or numeric
// strings; null or a missing key means absent.
type record struct {
	PnLAmount  *decimal.Decimal `json:"pnl_amount" yaml:"pnl_amount"`
	ClosePrice *decimal.Decimal `json:"close_price" yaml:"close_price"`
	CloseTime  string           `json:"close_time" yaml:"close_time"`
	Symbol     string           `json:"symbol" yaml:"symbol"`
	Strategy   string           `json:"strategy" yaml:"strategy"`
}

type envelope struct {
	Trades []record `json:"trades" yaml:"trades"`
}

// Load reads a JSON or YAML trade file and computes its SHA-256 hash.
// The file holds either a list of trades or an object with a "trades" list.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trades.Load: %w", err)
	}
	h := sha256.Sum256(data)

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("trades.Load: decode %s: %w", path, err)
	}

	var recs []record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		recs, err = decodeJSON(text)
	case ".yaml", ".yml":
		recs, err = decodeYAML(text)
	default:
		return nil, fmt.Errorf("trades.Load: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("trades.Load: parse %s: %w", path, err)
	}

	return &Batch{
		Source: filepath.Base(path),
		Hash:   fmt.Sprintf("sha256:%x", h),
		Trades: toTrades(recs),
	}, nil
}

// decodeText strips a UTF-8 BOM and converts UTF-16 exports to UTF-8.
func decodeText(data []byte) ([]byte, error) {
	r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	return io.ReadAll(r)
}

func decodeJSON(data []byte) ([]record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		return env.Trades, nil
	}
	var recs []record
	if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func decodeYAML(data []byte) ([]record, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.MappingNode {
		var env envelope
		if err := doc.Decode(&env); err != nil {
			return nil, err
		}
		return env.Trades, nil
	}
	var recs []record
	if err := doc.Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func toTrades(recs []record) []score.Trade {
	trades := make([]score.Trade, 0, len(recs))
	for _, r := range recs {
		trades = append(trades, score.Trade{
			RealizedPnL: toFloat(r.PnLAmount),
			ClosePrice:  toFloat(r.ClosePrice),
			CloseTime:   strings.TrimSpace(r.CloseTime),
			Symbol:      r.Symbol,
			Strategy:    r.Strategy,
		})
	}
	return trades
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// hashTrades fingerprints trades that did not come from a file.
func hashTrades(trades []score.Trade) (string, error) {
	data, err := json.Marshal(trades)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data)), nil
}
