package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/store"
)

// SaveRun stores res as a new run and returns it. A ttl of zero uses
// [store.DefaultTTL].
func SaveRun(ctx context.Context, st store.Store, source string, opts Options, res *Result, ttl time.Duration) (*store.Run, error) {
	if ttl == 0 {
		ttl = store.DefaultTTL
	}
	optsData, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	resData, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	run := store.NewRun(source, ttl)
	run.Trees = res.Stats.Trees
	run.Taxa = res.Stats.Taxa
	run.Splits = res.Stats.Splits
	run.Options = optsData
	run.Result = resData
	if err := st.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}

// LoadRun decodes the result stored in run.
func LoadRun(run *store.Run) (*Result, error) {
	if len(run.Result) == 0 {
		return nil, zerrors.New(zerrors.ErrCodeNotFound, "run %s has no result", run.ID)
	}
	var res Result
	if err := json.Unmarshal(run.Result, &res); err != nil {
		return nil, zerrors.Wrap(zerrors.ErrCodeInvalidFormat, err, "run %s", run.ID)
	}
	return &res, nil
}
