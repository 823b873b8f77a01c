package util

import "go.uber.org/zap"

// BestEffort runs fn and returns its value, substituting fallback when it
// fails. It is the single place the SDK's degrade-to-default policy lives:
// fields declared best-effort (spread estimates, referral rebates, snapshot
// enrichment) route through here, required reads return their errors
// normally at the call site.
func BestEffort[T any](logger *zap.Logger, what string, fallback T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		if logger != nil {
			logger.Debug("best-effort call degraded to fallback",
				zap.String("op", what), zap.Error(err))
		}
		return fallback
	}
	return v
}
