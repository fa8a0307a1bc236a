package main

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	numberPrinter = message.NewPrinter(language.English)
	titleCaser    = cases.Title(language.English)
)

// formatSats renders a satoshi amount with thousands separators.
func formatSats(sats int64) string {
	return numberPrinter.Sprintf("%d", sats)
}

// formatCount renders a count with thousands separators.
func formatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

func formatBTC(sats int64) string {
	return btcutil.Amount(sats).String()
}

func formatEventType(eventType string) string {
	if eventType == "" {
		return "-"
	}
	return titleCaser.String(eventType)
}

// shortTxID keeps both ends of a transaction id so it stays recognisable in
// narrow tables.
func shortTxID(txid string) string {
	const keep = 10
	if len(txid) <= keep*2+3 {
		return txid
	}
	return txid[:keep] + "..." + txid[len(txid)-keep:]
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
