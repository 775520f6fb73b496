package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/cinematch/vector"
	sqlite "modernc.org/sqlite"
)

// pairFunc scores two embeddings of equal length.
type pairFunc func(a, b []float32) (float64, error)

var vectorFunctions = map[string]pairFunc{
	"vec_dot": func(a, b []float32) (float64, error) {
		if len(a) != len(b) {
			return 0, fmt.Errorf("dim mismatch %d vs %d", len(a), len(b))
		}
		return vector.Dot(a, b), nil
	},
	"vec_cosine": vector.CosineSimilarity,
	"vec_l2":     vector.L2Distance,
}

var registerOnce sync.Once

// RegisterVectorFunctions makes vec_dot, vec_cosine and vec_l2 available to
// connections opened afterwards. Each takes two float32 BLOBs and yields
// NULL when either side is NULL.
func RegisterVectorFunctions() {
	registerOnce.Do(func() {
		for name, fn := range vectorFunctions {
			// duplicate names are rejected by the driver; Once keeps this idempotent
			_ = sqlite.RegisterDeterministicScalarFunction(name, 2, scalar(name, fn))
		}
	})
}

func scalar(name string, fn pairFunc) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: want 2 arguments, got %d", name, len(args))
		}
		a, err := decodeArg(name, args[0])
		if err != nil || a == nil {
			return nil, err
		}
		b, err := decodeArg(name, args[1])
		if err != nil || b == nil {
			return nil, err
		}
		score, err := fn(a, b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return score, nil
	}
}

func decodeArg(name string, arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("%s: argument of type %T is not an embedding BLOB", name, arg)
	}
}
