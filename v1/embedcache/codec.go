package embedcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
)

const (
	kindQuery    = "q"
	kindDocument = "d"
)

// settings are the client options that change the vector produced for a text.
type settings struct {
	queryPrefix    string
	documentPrefix string
	normalize      bool
}

func settingsOf(cfg embedding.Config) settings {
	return settings{
		queryPrefix:    cfg.QueryPrefix,
		documentPrefix: cfg.DocumentPrefix,
		normalize:      cfg.Normalize,
	}
}

// variant describes how texts of one kind are turned into vectors.
func (s settings) variant(kind string) string {
	prefix := s.documentPrefix
	if kind == kindQuery {
		prefix = s.queryPrefix
	}
	return fmt.Sprintf("prefix=%q normalize=%t", prefix, s.normalize)
}

// cacheKey identifies one text embedded by one model for one purpose under
// one variant of the client settings.
func cacheKey(prefix, model, kind, variant, text string) string {
	h := sha256.New()
	h.Write([]byte(variant))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return prefix + model + ":" + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// encodeVector stores float32 values little-endian.
func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedcache: corrupt vector of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
