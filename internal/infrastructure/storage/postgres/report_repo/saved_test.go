package report_repo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_ThresholdBoundary(t *testing.T) {
	repo, err := NewSavedReportRepo(nil)
	require.NoError(t, err)

	small := bytes.Repeat([]byte("a"), compressThreshold-1)
	stored, algo := repo.compress(small)
	assert.Equal(t, compressionNone, algo)
	assert.Equal(t, small, stored)

	// Exactly 10 KiB is compressed, not just strictly larger snapshots.
	exact := bytes.Repeat([]byte("a"), compressThreshold)
	stored, algo = repo.compress(exact)
	assert.Equal(t, compressionZstd, algo)

	decoded, err := repo.decoder.DecodeAll(stored, nil)
	require.NoError(t, err)
	assert.Equal(t, exact, decoded)
}
