package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/woomy144/Rimworld/internal/world"
)

// SnapshotVersion is bumped whenever the record layout changes in a way
// older binaries cannot read.
const SnapshotVersion = 1

var (
	// ErrNoSnapshot is returned by stores that hold no snapshot yet.
	ErrNoSnapshot = errors.New("no snapshot stored")
	// ErrSnapshotVersion means the blob was written by an incompatible build.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)

// Snapshot is one saved map plus the metadata needed to pick it back up.
type Snapshot struct {
	Version int              `json:"version"`
	Tick    int              `json:"tick"`
	SavedAt time.Time        `json:"saved_at"`
	Map     *world.MapRecord `json:"map"`
}

// Capture records m as it stands after the current tick.
func Capture(m *world.Map) (*Snapshot, error) {
	rec, err := m.Save()
	if err != nil {
		return nil, fmt.Errorf("capture map: %w", err)
	}
	return &Snapshot{
		Version: SnapshotVersion,
		Tick:    rec.Tick,
		SavedAt: time.Now().UTC(),
		Map:     rec,
	}, nil
}

// Encode writes snap as zstd-compressed JSON.
func Encode(snap *Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

// Decode reverses Encode and rejects snapshots of another version.
func Decode(blob []byte) (*Snapshot, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	if snap.Map == nil {
		return nil, errors.New("snapshot has no map")
	}
	return &snap, nil
}
