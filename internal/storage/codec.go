package storage

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// Boards are stored as zstd-compressed JSON. The encoder and decoder are
// safe for concurrent EncodeAll/DecodeAll calls.
var (
	boardEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	boardDecoder, _ = zstd.NewReader(nil)
)

func encodeBoard(b *core.Board) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot encode board: %w", err)
	}
	return boardEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func decodeBoard(data []byte) (*core.Board, error) {
	raw, err := boardDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot decompress board: %w", err)
	}
	var b core.Board
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("storage: cannot decode board: %w", err)
	}
	return &b, nil
}
