package engine

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"

	"mcsim/internal/mcerrors"
)

// checkpointEnvelope is the self-describing archive format every engine's
// checkpoint is serialized as: the control-plane fields common to every
// engine, plus an opaque Extra payload the concrete engine (metropolis,
// wanglandau, multicanonical) supplies for its own state (histograms,
// schedule position, and so on).
type checkpointEnvelope struct {
	RNGState      []byte          `json:"rng_state"`
	DumpPath      string          `json:"dump_path"`
	StepsExecuted int64           `json:"steps_executed"`
	StepsRejected int64           `json:"steps_rejected"`
	Extra         json.RawMessage `json:"extra,omitempty"`
}

// SaveCheckpoint serializes the base's control-plane state plus extra (the
// concrete engine's own state, or nil) to path via
// github.com/segmentio/encoding/json, writing to "path+.tmp" and renaming
// into place so a concurrent reader never observes a truncated file.
func (b *Base[E, S]) SaveCheckpoint(path string, extra any) error {
	rngState, err := b.RNG.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: capturing RNG state: %v", mcerrors.ErrCheckpointIO, err)
	}

	var extraRaw json.RawMessage
	if extra != nil {
		raw, err := json.Marshal(extra)
		if err != nil {
			return fmt.Errorf("%w: marshaling extra state: %v", mcerrors.ErrCheckpointIO, err)
		}
		extraRaw = raw
	}

	env := checkpointEnvelope{
		RNGState:      rngState,
		DumpPath:      b.DumpPath,
		StepsExecuted: b.StepsExecuted,
		StepsRejected: b.StepsRejected,
		Extra:         extraRaw,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%w: marshaling checkpoint: %v", mcerrors.ErrCheckpointIO, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("%w: writing checkpoint: %v", mcerrors.ErrCheckpointIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: publishing checkpoint: %v", mcerrors.ErrCheckpointIO, err)
	}

	log.Info().Str("path", path).Int64("steps_executed", b.StepsExecuted).Msg("checkpoint saved")
	return nil
}

// LoadCheckpoint restores the base's control-plane state from path,
// resuming the RNG's exact future draw sequence, and unmarshals the
// archive's Extra payload into extra (a pointer) when extra is non-nil.
func (b *Base[E, S]) LoadCheckpoint(path string, extra any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
	}

	var env checkpointEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", mcerrors.ErrLoadFormat, err)
	}
	if err := b.RNG.UnmarshalBinary(env.RNGState); err != nil {
		return fmt.Errorf("%w: restoring RNG state: %v", mcerrors.ErrLoadFormat, err)
	}
	b.DumpPath = env.DumpPath
	b.StepsExecuted = env.StepsExecuted
	b.StepsRejected = env.StepsRejected

	if extra != nil && len(env.Extra) > 0 {
		if err := json.Unmarshal(env.Extra, extra); err != nil {
			return fmt.Errorf("%w: unmarshaling extra state: %v", mcerrors.ErrLoadFormat, err)
		}
	}

	log.Info().Str("path", path).Int64("steps_executed", b.StepsExecuted).Msg("checkpoint loaded")
	return nil
}
