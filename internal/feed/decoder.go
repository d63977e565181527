package feed

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"tradelab/internal/common"
	"tradelab/internal/util"
	"tradelab/pkg/models"
)

// MessageKind classifies one decoded inbound frame.
type MessageKind int

const (
	// MessageIgnored covers unknown type tags and trade frames with no data.
	MessageIgnored MessageKind = iota
	MessageTrades
	MessagePing
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Fields are pointers so a missing required field is distinguishable
// from a zero value.
type wireTrade struct {
	Symbol     *string  `json:"s"`
	Price      *float64 `json:"p"`
	Volume     *float64 `json:"v"`
	Timestamp  *int64   `json:"t"`
	Conditions []string `json:"c"`
}

// Decoder turns raw feed frames into typed trade events. A malformed
// frame yields an error naming the offending field and never stops the
// stream; the caller logs it and reads the next frame.
type Decoder struct {
	logger *util.Logger
}

func NewDecoder(logger *util.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode parses one inbound frame. It returns the decoded trades for a
// "trade" frame, MessagePing for a heartbeat, and MessageIgnored for
// unknown type tags and trade frames whose data list is empty or absent.
func (d *Decoder) Decode(raw []byte) (MessageKind, []models.Trade, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return MessageIgnored, nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case "trade":
		if len(env.Data) == 0 {
			d.logger.Warn(common.ErrCodeEmptyTradeData, common.ErrMsgEmptyTradeData, "Dropped trade message with no data")
			return MessageIgnored, nil, nil
		}

		var wire []wireTrade
		if err := json.Unmarshal(env.Data, &wire); err != nil {
			return MessageIgnored, nil, fmt.Errorf("decode trade data: %w", err)
		}
		if len(wire) == 0 {
			d.logger.Warn(common.ErrCodeEmptyTradeData, common.ErrMsgEmptyTradeData, "Dropped trade message with empty data")
			return MessageIgnored, nil, nil
		}

		trades := make([]models.Trade, 0, len(wire))
		for i, w := range wire {
			trade, err := w.toTrade()
			if err != nil {
				return MessageIgnored, nil, fmt.Errorf("trade %d: %w", i, err)
			}
			trades = append(trades, trade)
		}
		return MessageTrades, trades, nil

	case "ping":
		d.logger.Debug("Received feed ping")
		return MessagePing, nil, nil

	default:
		d.logger.Debug("Ignoring unknown feed message type", "type", env.Type)
		return MessageIgnored, nil, nil
	}
}

func (w wireTrade) toTrade() (models.Trade, error) {
	if w.Symbol == nil {
		return models.Trade{}, fmt.Errorf("missing field %q", "s")
	}
	if w.Price == nil {
		return models.Trade{}, fmt.Errorf("missing field %q", "p")
	}
	if *w.Price <= 0 {
		return models.Trade{}, fmt.Errorf("field %q must be positive, got %v", "p", *w.Price)
	}
	if w.Volume == nil {
		return models.Trade{}, fmt.Errorf("missing field %q", "v")
	}
	if *w.Volume < 0 {
		return models.Trade{}, fmt.Errorf("field %q must not be negative, got %v", "v", *w.Volume)
	}
	if w.Timestamp == nil {
		return models.Trade{}, fmt.Errorf("missing field %q", "t")
	}

	return models.Trade{
		Symbol:     *w.Symbol,
		Price:      *w.Price,
		Volume:     *w.Volume,
		Timestamp:  time.UnixMilli(*w.Timestamp),
		Conditions: w.Conditions,
	}, nil
}
