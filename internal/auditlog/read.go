package auditlog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"feebump/internal/services"
)

// maxLineBytes bounds a single audit line; relay stderr can be long.
const maxLineBytes = 1024 * 1024

// ReadLast returns up to limit trailing lines of the log. A missing file
// yields no lines. A limit <= 0 returns every line.
func (l *Log) ReadLast(limit int) ([]string, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if limit <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read audit log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// ParseLine is the inverse of Entry.Line. Malformed lines return an error
// matching services.ErrValidation.
func ParseLine(line string) (Entry, error) {
	entry, err := parseLine(line)
	if err != nil {
		return Entry{}, services.Wrap(services.ErrValidation, "auditlog", "parse line", "", err)
	}
	return entry, nil
}

func parseLine(line string) (Entry, error) {
	var entry Entry
	const stampLen = len(timestampLayout)
	if len(line) < stampLen {
		return entry, fmt.Errorf("audit line too short: %q", line)
	}
	ts, err := time.Parse(timestampLayout, line[:stampLen])
	if err != nil {
		return entry, fmt.Errorf("audit line timestamp: %w", err)
	}
	entry.Time = ts.UTC()

	rest, ok := strings.CutPrefix(line[stampLen:], " UTC: ")
	if !ok {
		return entry, fmt.Errorf("audit line missing UTC marker: %q", line)
	}
	outcome, rest, ok := strings.Cut(rest, " - txid: ")
	if !ok {
		return entry, fmt.Errorf("audit line missing txid: %q", line)
	}
	switch Outcome(outcome) {
	case OutcomeSuccess, OutcomeFailed:
		entry.Outcome = Outcome(outcome)
	default:
		return entry, fmt.Errorf("audit line outcome %q unknown", outcome)
	}
	txid, rest, ok := strings.Cut(rest, ", fee_delta: ")
	if !ok {
		return entry, fmt.Errorf("audit line missing fee_delta: %q", line)
	}
	entry.TxID = txid

	delta := rest
	if entry.Outcome == OutcomeFailed {
		var detail string
		delta, detail, ok = strings.Cut(rest, ", error: ")
		if !ok {
			return entry, fmt.Errorf("audit line missing error detail: %q", line)
		}
		entry.Detail = detail
	}
	if entry.FeeDelta, err = strconv.ParseInt(delta, 10, 64); err != nil {
		return entry, fmt.Errorf("audit line fee_delta: %w", err)
	}
	return entry, nil
}
