package storage

import "context"

// Uploader is one named way of pushing a file to the pinning service.
type Uploader interface {
	Upload(ctx context.Context, file File, dealParams *DealParams, onProgress ProgressFunc) (string, error)
}

// Strategy is a single upload attempt: a name for logging plus the attempt
// itself.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, file File, onProgress ProgressFunc) (string, error)
}

// Strategies returns the attempt order for one upload: first with the deal
// parameters attached, then the bare upload without them.
func Strategies(client Uploader, dealParams *DealParams) []Strategy {
	return []Strategy{
		{
			Name: "deal-params",
			Run: func(ctx context.Context, file File, onProgress ProgressFunc) (string, error) {
				return client.Upload(ctx, file, dealParams, onProgress)
			},
		},
		{
			Name: "basic",
			Run: func(ctx context.Context, file File, onProgress ProgressFunc) (string, error) {
				return client.Upload(ctx, file, nil, onProgress)
			},
		},
	}
}

// UploadWithFallback walks the strategy list in order until one attempt
// succeeds. Progress restarts from 0 for every attempt. On total failure the
// returned error is the last strategy's, and attemptErr reports each failure
// as it happens (may be nil).
func UploadWithFallback(ctx context.Context, strategies []Strategy, file File, onProgress ProgressFunc, attemptErr func(strategy string, err error)) (string, error) {
	var lastErr error
	for _, s := range strategies {
		if onProgress != nil {
			onProgress(0)
		}
		cid, err := s.Run(ctx, file, onProgress)
		if err == nil {
			return cid, nil
		}
		if attemptErr != nil {
			attemptErr(s.Name, err)
		}
		lastErr = err
	}
	return "", lastErr
}
