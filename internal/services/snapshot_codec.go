package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"moneypaz/internal/core"
)

var (
	ErrMalformedSnapshot   = errors.New("malformed snapshot")
	ErrUnsupportedSnapshot = errors.New("snapshot version not supported")
)

// snapshotMigration upgrades a raw document by exactly one version.
type snapshotMigration func(doc map[string]any) error

// snapshotMigrations[i] upgrades a version i document to version i+1.
var snapshotMigrations = []snapshotMigration{
	migrateV0ToV1,
	migrateV1ToV2,
}

// EncodeSnapshot serializes a state at the current snapshot version.
func EncodeSnapshot(s core.FinanceState) ([]byte, error) {
	s = s.Clone()
	s.Version = core.SnapshotVersion
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a persisted document of any known version and
// returns it as a current FinanceState.
func DecodeSnapshot(data []byte) (core.FinanceState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return core.FinanceState{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc == nil {
		return core.FinanceState{}, fmt.Errorf("%w: not an object", ErrMalformedSnapshot)
	}

	doc, err := MigrateSnapshot(doc)
	if err != nil {
		return core.FinanceState{}, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return core.FinanceState{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	var s core.FinanceState
	if err := json.Unmarshal(raw, &s); err != nil {
		return core.FinanceState{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return s.Clone(), nil
}

// MigrateSnapshot runs every pending migration on a raw document, in order.
// A document without a version field is version 0.
func MigrateSnapshot(doc map[string]any) (map[string]any, error) {
	v, err := snapshotVersion(doc)
	if err != nil {
		return nil, err
	}
	if v > core.SnapshotVersion {
		return nil, fmt.Errorf("%w: %d > %d", ErrUnsupportedSnapshot, v, core.SnapshotVersion)
	}
	for ; v < core.SnapshotVersion; v++ {
		if err := snapshotMigrations[v](doc); err != nil {
			return nil, fmt.Errorf("migrate snapshot v%d to v%d: %w", v, v+1, err)
		}
		doc["version"] = v + 1
	}
	return doc, nil
}

func snapshotVersion(doc map[string]any) (int, error) {
	raw, ok := doc["version"]
	if !ok || raw == nil {
		return 0, nil
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: version is %T", ErrMalformedSnapshot, raw)
	}
	v, err := strconv.Atoi(n.String())
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: version %q", ErrMalformedSnapshot, n)
	}
	return v, nil
}

// migrateV0ToV1 back-fills the fields older snapshots may lack.
func migrateV0ToV1(doc map[string]any) error {
	defaults := map[string]func() any{
		"initialBalance":   func() any { return json.Number("0") },
		"movements":        func() any { return []any{} },
		"customCategories": func() any { return []any{} },
		"usedConcepts":     func() any { return []any{} },
		"userName":         func() any { return "" },
	}
	for key, def := range defaults {
		if v, ok := doc[key]; !ok || v == nil {
			doc[key] = def()
		}
	}
	for _, key := range []string{"movements", "customCategories", "usedConcepts"} {
		if _, ok := doc[key].([]any); !ok {
			return fmt.Errorf("%w: %s is not a list", ErrMalformedSnapshot, key)
		}
	}
	return nil
}

// migrateV1ToV2 turns string categories into tagged categories and fills in
// isRecurring and the date/timestamp pair on movements.
func migrateV1ToV2(doc map[string]any) error {
	customs := doc["customCategories"].([]any)
	for i, c := range customs {
		switch v := c.(type) {
		case string:
			customs[i] = categoryDoc(core.NewCustomCategory(v))
		case map[string]any:
		default:
			return fmt.Errorf("%w: custom category %d is %T", ErrMalformedSnapshot, i, c)
		}
	}

	movements := doc["movements"].([]any)
	for i, raw := range movements {
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: movement %d is %T", ErrMalformedSnapshot, i, raw)
		}
		switch v := m["category"].(type) {
		case string:
			m["category"] = categoryDoc(core.ResolveCategory(v))
		case map[string]any:
		case nil:
			m["category"] = categoryDoc(core.ResolveCategory(""))
		default:
			return fmt.Errorf("%w: movement %d category is %T", ErrMalformedSnapshot, i, v)
		}
		if v, ok := m["isRecurring"]; !ok || v == nil {
			m["isRecurring"] = false
		}
		if err := backfillMovementTime(m); err != nil {
			return fmt.Errorf("movement %d: %w", i, err)
		}
	}
	return nil
}

func backfillMovementTime(m map[string]any) error {
	date, _ := m["date"].(string)
	_, hasTS := m["timestamp"].(json.Number)
	switch {
	case hasTS && date == "":
		ms, err := m["timestamp"].(json.Number).Int64()
		if err != nil {
			return fmt.Errorf("%w: timestamp %v", ErrMalformedSnapshot, m["timestamp"])
		}
		m["date"] = core.FormatMovementDate(time.UnixMilli(ms))
	case !hasTS && date != "":
		t, err := core.ParseMovementDate(date)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		m["timestamp"] = json.Number(strconv.FormatInt(t.UnixMilli(), 10))
	case !hasTS && date == "":
		return fmt.Errorf("%w: movement has neither date nor timestamp", ErrMalformedSnapshot)
	}
	return nil
}

func categoryDoc(c core.Category) map[string]any {
	return map[string]any{
		"kind":         string(c.Kind),
		"id":           c.ID,
		"movementType": string(c.MovementType),
	}
}
