package queue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Event types that mark a request as ready for fee prioritisation.
const (
	EventLegacy = "legacy"
	EventAdded  = "added"
)

// Request is a single fee-acceleration instruction.
type Request struct {
	TxID           *string
	FeeDelta       *int64
	EventType      string
	Pools          []uint32
	EffectiveVsize uint32
	EffectiveFee   uint32
	Added          *uint64
	LoggedAt       string

	// extra holds keys not modelled above, written back verbatim.
	extra map[string]json.RawMessage
}

// Queue is the ordered set of pending requests.
type Queue []Request

// Eligible reports whether the request should be sent to the relay this run.
func (r Request) Eligible() bool {
	if r.EventType != EventLegacy && r.EventType != EventAdded {
		return false
	}
	return r.TxID != nil && r.FeeDelta != nil
}

// TxIDValue returns the transaction ID or an empty string.
func (r Request) TxIDValue() string {
	if r.TxID == nil {
		return ""
	}
	return *r.TxID
}

// FeeDeltaValue returns the fee delta and whether it was present.
func (r Request) FeeDeltaValue() (int64, bool) {
	if r.FeeDelta == nil {
		return 0, false
	}
	return *r.FeeDelta, true
}

// ExtraKeys lists preserved keys that are not part of the known schema.
func (r Request) ExtraKeys() []string {
	keys := make([]string, 0, len(r.extra))
	for key := range r.extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Eligible counts requests the relay would be asked to prioritise.
func (q Queue) Eligible() int {
	count := 0
	for _, req := range q {
		if req.Eligible() {
			count++
		}
	}
	return count
}

// document is the on-disk envelope.
type document struct {
	Accelerations Queue `json:"accelerations"`
}

type wireRequest struct {
	TxID           *string  `json:"txid,omitempty"`
	FeeDelta       *int64   `json:"feeDelta,omitempty"`
	EventType      *string  `json:"eventType"`
	Pools          []uint32 `json:"pools"`
	EffectiveVsize uint32   `json:"effectiveVsize"`
	EffectiveFee   uint32   `json:"effectiveFee"`
	Added          *uint64  `json:"added,omitempty"`
	LoggedAt       *string  `json:"loggedAt"`
}

var knownKeys = map[string]struct{}{
	"txid": {}, "feeDelta": {}, "eventType": {}, "pools": {},
	"effectiveVsize": {}, "effectiveFee": {}, "added": {}, "loggedAt": {},
}

// UnmarshalJSON decodes a request, rejecting documents that omit eventType or
// loggedAt, and keeps unknown keys for re-encoding. Keys match exactly; a
// differently cased key such as "TXID" is treated as unknown.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("acceleration must be an object")
	}

	var req Request
	fields := []struct {
		key      string
		dst      any
		required bool
		nullable bool
	}{
		{key: "txid", dst: &req.TxID, nullable: true},
		{key: "feeDelta", dst: &req.FeeDelta, nullable: true},
		{key: "eventType", dst: &req.EventType, required: true},
		{key: "pools", dst: &req.Pools},
		{key: "effectiveVsize", dst: &req.EffectiveVsize},
		{key: "effectiveFee", dst: &req.EffectiveFee},
		{key: "added", dst: &req.Added, nullable: true},
		{key: "loggedAt", dst: &req.LoggedAt, required: true},
	}
	for _, field := range fields {
		value, ok := raw[field.key]
		if !ok {
			if field.required {
				return fmt.Errorf("acceleration missing field %s", field.key)
			}
			continue
		}
		// JSON null on an optional field decodes to nil, same as absent.
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) && !field.nullable {
			return fmt.Errorf("acceleration field %s must not be null", field.key)
		}
		if err := json.Unmarshal(value, field.dst); err != nil {
			return fmt.Errorf("acceleration field %s: %w", field.key, err)
		}
	}

	for key, value := range raw {
		if _, known := knownKeys[key]; known {
			continue
		}
		if req.extra == nil {
			req.extra = make(map[string]json.RawMessage)
		}
		req.extra[key] = append(json.RawMessage(nil), value...)
	}
	*r = req
	return nil
}

// MarshalJSON writes known fields in schema order followed by preserved
// unknown keys in sorted order.
func (r Request) MarshalJSON() ([]byte, error) {
	pools := r.Pools
	if pools == nil {
		pools = []uint32{}
	}
	eventType, loggedAt := r.EventType, r.LoggedAt
	known, err := marshalNoEscape(wireRequest{
		TxID:           r.TxID,
		FeeDelta:       r.FeeDelta,
		EventType:      &eventType,
		Pools:          pools,
		EffectiveVsize: r.EffectiveVsize,
		EffectiveFee:   r.EffectiveFee,
		Added:          r.Added,
		LoggedAt:       &loggedAt,
	})
	if err != nil {
		return nil, err
	}
	if len(r.extra) == 0 {
		return known, nil
	}

	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	for _, key := range r.ExtraKeys() {
		encodedKey, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(r.extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeDocument(data []byte) (Queue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode queue document: %w", err)
	}
	body, ok := raw["accelerations"]
	if !ok {
		return nil, errors.New("decode queue document: missing field accelerations")
	}
	var requests Queue
	if err := json.Unmarshal(body, &requests); err != nil {
		return nil, fmt.Errorf("decode accelerations: %w", err)
	}
	if requests == nil {
		return nil, errors.New("decode queue document: accelerations must be an array")
	}
	return requests, nil
}

func encodeDocument(q Queue) ([]byte, error) {
	if q == nil {
		q = Queue{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Accelerations: q}); err != nil {
		return nil, fmt.Errorf("encode queue document: %w", err)
	}
	return buf.Bytes(), nil
}
