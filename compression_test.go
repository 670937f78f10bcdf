package chsink

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestDecompressReader(t *testing.T) {
	t.Parallel()

	const payload = "date,value\n2024-03-01,1\n"

	compress := map[string]func(t *testing.T) []byte{
		"data.csv": func(t *testing.T) []byte {
			t.Helper()
			return []byte(payload)
		},
		"data.csv.gz": func(t *testing.T) []byte {
			t.Helper()
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			_, err := w.Write([]byte(payload))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"data.csv.zst": func(t *testing.T) []byte {
			t.Helper()
			var buf bytes.Buffer
			w, err := zstd.NewWriter(&buf)
			require.NoError(t, err)
			_, err = w.Write([]byte(payload))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"data.csv.xz": func(t *testing.T) []byte {
			t.Helper()
			var buf bytes.Buffer
			w, err := xz.NewWriter(&buf)
			require.NoError(t, err)
			_, err = w.Write([]byte(payload))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
	}

	for path, build := range compress {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			reader, closer, err := decompressReader(path, bytes.NewReader(build(t)))
			require.NoError(t, err)
			defer closer() //nolint:errcheck

			got, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}

	t.Run("corrupt gzip data", func(t *testing.T) {
		t.Parallel()

		_, _, err := decompressReader("data.csv.gz", bytes.NewReader([]byte("not gzip")))
		assert.Error(t, err)
	})
}
