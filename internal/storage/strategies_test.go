package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedUploader fails or succeeds per call, in order.
type scriptedUploader struct {
	results []scriptedResult
	calls   []*DealParams
}

type scriptedResult struct {
	cid string
	err error
}

func (u *scriptedUploader) Upload(ctx context.Context, file File, dealParams *DealParams, onProgress ProgressFunc) (string, error) {
	u.calls = append(u.calls, dealParams)
	if onProgress != nil {
		onProgress(42)
	}
	r := u.results[len(u.calls)-1]
	return r.cid, r.err
}

func TestUploadWithFallback_PrimarySucceeds(t *testing.T) {
	uploader := &scriptedUploader{results: []scriptedResult{{cid: "ipfs://QmPrimary"}}}
	params := &DealParams{NumOfCopies: 1}

	cid, err := UploadWithFallback(context.Background(), Strategies(uploader, params), testFile(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "ipfs://QmPrimary", cid)

	// Single attempt, with the deal parameters attached.
	require.Len(t, uploader.calls, 1)
	require.Equal(t, params, uploader.calls[0])
}

func TestUploadWithFallback_FallsBackOnce(t *testing.T) {
	uploader := &scriptedUploader{results: []scriptedResult{
		{err: transportError(500)},
		{cid: "ipfs://QmFallback"},
	}}

	var failed []string
	cid, err := UploadWithFallback(context.Background(), Strategies(uploader, &DealParams{}), testFile(), nil, func(strategy string, err error) {
		failed = append(failed, strategy)
	})
	require.NoError(t, err)
	require.Equal(t, "ipfs://QmFallback", cid)

	// Second attempt is the bare upload.
	require.Len(t, uploader.calls, 2)
	require.Nil(t, uploader.calls[1])
	require.Equal(t, []string{"deal-params"}, failed)
}

func TestUploadWithFallback_ReturnsLastError(t *testing.T) {
	primaryErr := networkError(nil)
	fallbackErr := transportError(500)
	uploader := &scriptedUploader{results: []scriptedResult{
		{err: primaryErr},
		{err: fallbackErr},
	}}

	_, err := UploadWithFallback(context.Background(), Strategies(uploader, &DealParams{}), testFile(), nil, nil)
	require.Error(t, err)

	// Exactly two attempts; the surfaced error is the fallback's.
	require.Len(t, uploader.calls, 2)
	require.Same(t, fallbackErr, err)
}

func TestUploadWithFallback_ProgressResetsPerAttempt(t *testing.T) {
	uploader := &scriptedUploader{results: []scriptedResult{
		{err: transportError(500)},
		{cid: "ipfs://QmFallback"},
	}}

	var seen []float64
	_, err := UploadWithFallback(context.Background(), Strategies(uploader, &DealParams{}), testFile(), func(p float64) {
		seen = append(seen, p)
	}, nil)
	require.NoError(t, err)

	// 0 at the start of each attempt, with the attempt's own progress between.
	require.Equal(t, []float64{0, 42, 0, 42}, seen)
}
