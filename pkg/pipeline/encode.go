package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	zio "github.com/matzehuels/zclosure/pkg/io"
)

type resultJSON struct {
	System   json.RawMessage `json:"system"`
	Warnings []string        `json:"warnings,omitempty"`
	Stats    Stats           `json:"stats"`
	CacheHit bool            `json:"cache_hit,omitempty"`
}

// MarshalJSON encodes the result with the system in the [zio.WriteSystem] format.
func (r *Result) MarshalJSON() ([]byte, error) {
	var sys bytes.Buffer
	if err := zio.WriteSystem(&sys, r.System, r.Taxa); err != nil {
		return nil, fmt.Errorf("system: %w", err)
	}
	return json.Marshal(resultJSON{
		System:   sys.Bytes(),
		Warnings: r.Warnings,
		Stats:    r.Stats,
		CacheHit: r.CacheHit,
	})
}

// UnmarshalJSON decodes a result written by [Result.MarshalJSON].
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sys, tx, err := zio.ReadSystem(bytes.NewReader(raw.System))
	if err != nil {
		return fmt.Errorf("system: %w", err)
	}
	*r = Result{
		System:   sys,
		Taxa:     tx,
		Warnings: raw.Warnings,
		Stats:    raw.Stats,
		CacheHit: raw.CacheHit,
	}
	return nil
}
