package compression

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockPayload(t *testing.T) []byte {
	t.Helper()
	// Repetitive numeric-looking payload, similar to an indptr buffer.
	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, 32*1024)
	for i := range buf {
		buf[i] = byte(rng.Intn(16))
	}
	return buf
}

func TestRoundTripAllAlgorithms(t *testing.T) {
	payload := blockPayload(t)

	for _, alg := range []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate} {
		t.Run(string(alg), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			require.NoError(t, err)

			compressed, err := comp.Compress(payload)
			require.NoError(t, err)

			restored, err := comp.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, restored)

			if alg != None {
				assert.Less(t, len(compressed), len(payload),
					"repetitive payload must shrink under %s", alg)
			}
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	payload := blockPayload(t)

	for _, alg := range []Algorithm{Gzip, LZ4, Zstd} {
		t.Run(string(alg), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: alg, Level: Fastest})
			require.NoError(t, err)

			var compressed bytes.Buffer
			require.NoError(t, comp.CompressStream(&compressed, bytes.NewReader(payload)))

			var restored bytes.Buffer
			require.NoError(t, comp.DecompressStream(&restored, &compressed))
			assert.Equal(t, payload, restored.Bytes())
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("zstd")
	require.NoError(t, err)
	assert.Equal(t, Zstd, alg)

	alg, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, None, alg)

	_, err = ParseAlgorithm("brotli")
	assert.Error(t, err)
}

func TestUnknownAlgorithmRejected(t *testing.T) {
	_, err := NewCompressor(&Config{Algorithm: "bzip2"})
	assert.Error(t, err)
}

func TestDefaultConfigIsGzip(t *testing.T) {
	comp, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, Gzip, comp.Algorithm())
}
