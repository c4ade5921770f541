package storage

import (
	"fmt"
	"strconv"
	"strings"

	"crypto-market-sentinel/internal/domain"
)

// Key layout mirrors the persisted record types:
//
//	market:{pair}:current
//	market:{pair}:history:{timestamp}
//	alerts:{pair}:{timestamp}
//	orders:{orderId}

func CurrentSnapshotKey(pair domain.Pair) string {
	return fmt.Sprintf("market:%s:current", pair)
}

func HistorySnapshotKey(pair domain.Pair, ts int64) string {
	return fmt.Sprintf("market:%s:history:%d", pair, ts)
}

func AlertKey(pair domain.Pair, ts int64) string {
	return fmt.Sprintf("alerts:%s:%d", pair, ts)
}

func AlertPrefix(pair domain.Pair) string {
	return fmt.Sprintf("alerts:%s:", pair)
}

func OrderKey(orderID string) string {
	return fmt.Sprintf("orders:%s", orderID)
}

const OrderPrefix = "orders:"

// AlertTimestamp extracts the millisecond timestamp from an alert key.
func AlertTimestamp(key string) (int64, bool) {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 {
		return 0, false
	}
	ts, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
