package sqlite

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"

	sqlitedriver "modernc.org/sqlite"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// Embeddings are stored as BLOBs of little-endian float32s.

func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	out := make([]byte, 0, 4*len(v))
	for _, f := range v {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

// decodeVector ignores a trailing partial value.
func decodeVector(blob []byte) []float32 {
	if len(blob) < 4 {
		return nil
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return out
}

// vecCosine is the SQL function vec_cosine(a, b). It yields NULL when
// either argument is not a BLOB or the vectors cannot be compared, so such
// rows sort last.
func vecCosine(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_cosine: expected 2 arguments, got %d", len(args))
	}
	a, okA := args[0].([]byte)
	b, okB := args[1].([]byte)
	if !okA || !okB {
		return nil, nil
	}
	score, err := domain.CosineSimilarity(decodeVector(a), decodeVector(b))
	if err != nil {
		return nil, nil //nolint:nilerr // incomparable rows rank as NULL
	}
	return score, nil
}
