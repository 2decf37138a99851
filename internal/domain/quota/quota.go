package quota

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Tier is a subscription plan determining storage limits.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Limits is the static per-tier table. AllowedMimeTypes nil means
// unrestricted.
type Limits struct {
	MaxTotalStorage  int64
	MaxSingleFile    int64
	AllowedMimeTypes []string
}

var tierLimits = map[Tier]Limits{
	TierFree: {
		MaxTotalStorage: 200 * 1024 * 1024, // 200MB
		MaxSingleFile:   100 * 1024 * 1024,
	},
	TierPro: {
		MaxTotalStorage: 10 * 1024 * 1024 * 1024, // 10GB
		MaxSingleFile:   2 * 1024 * 1024 * 1024,
	},
	TierPremium: {
		MaxTotalStorage: 100 * 1024 * 1024 * 1024, // 100GB
		MaxSingleFile:   10 * 1024 * 1024 * 1024,
	},
}

// LimitsFor returns the limits for a tier. Unknown tiers fall back to free,
// so a corrupted subscription value never grants unlimited storage.
func LimitsFor(t Tier) Limits {
	if l, ok := tierLimits[t]; ok {
		return l
	}
	return tierLimits[TierFree]
}

// UsageReader reports a user's consumed storage. Implemented by the file
// metadata repository.
type UsageReader interface {
	TotalSizeByUser(ctx context.Context, userID string) (int64, error)
}

// Evaluator decides whether a prospective write is allowed under a tier's
// limits. Usage is recomputed per call; there is no cache and no reservation
// step, so two concurrent uploads can each pass against a snapshot that does
// not reflect the other.
type Evaluator struct {
	usage UsageReader
}

func NewEvaluator(usage UsageReader) *Evaluator {
	return &Evaluator{usage: usage}
}

// UsedStorage sums the stored size over the user's file records.
func (e *Evaluator) UsedStorage(ctx context.Context, userID string) (int64, error) {
	used, err := e.usage.TotalSizeByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("compute used storage: %w", err)
	}
	return used, nil
}

// Check validates a prospective upload against the tier table. A file landing
// exactly on the total-storage boundary is allowed; only strictly exceeding
// requests are denied.
func (e *Evaluator) Check(tier Tier, size int64, mimeType string, used int64) error {
	limits := LimitsFor(tier)

	if size > limits.MaxSingleFile {
		return &DenialError{
			Reason: ReasonFileTooLarge,
			Message: fmt.Sprintf("file exceeds the %s single-file limit on the %s plan",
				humanize.IBytes(uint64(limits.MaxSingleFile)), tier),
		}
	}

	if limits.AllowedMimeTypes != nil && !contains(limits.AllowedMimeTypes, mimeType) {
		return &DenialError{
			Reason:  ReasonMimeNotAllowed,
			Message: fmt.Sprintf("file type %q is not allowed on the %s plan", mimeType, tier),
		}
	}

	if used+size > limits.MaxTotalStorage {
		remaining := limits.MaxTotalStorage - used
		if remaining < 0 {
			remaining = 0
		}
		return &DenialError{
			Reason: ReasonQuotaExceeded,
			Message: fmt.Sprintf("storage limit exceeded: %s remaining on the %s plan. Please upgrade your subscription or delete some files",
				humanize.IBytes(uint64(remaining)), tier),
		}
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
