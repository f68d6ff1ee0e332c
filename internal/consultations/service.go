package consultations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"consult-backend/internal/matching"
	"consult-backend/internal/shared/cache"
	"consult-backend/internal/shared/metrics"
	"consult-backend/internal/shared/telemetry"
	"consult-backend/internal/shared/util"
)

// Cache statuses reported to the request log.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheBypassed = "bypass"
)

const defaultCacheTTL = 10 * time.Minute

// Service runs the matching engine for the HTTP layer and persists results.
type Service struct {
	Engine   *matching.Engine
	Repo     Repo
	Cache    cache.Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

// Result is one engine run plus how the cache served it.
type Result struct {
	Output      matching.RecommendationOutput
	CacheStatus string
}

// Preview runs the engine without persisting anything.
func (s *Service) Preview(ctx context.Context, in matching.RecommendInputs) (Result, error) {
	return s.recommend(ctx, s.normalize(in))
}

// Create runs the engine and stores the consultation for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, isGuest bool, in matching.RecommendInputs) (Consultation, Result, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Consultation{}, Result{}, ErrOwnerRequired
	}
	in = s.normalize(in)
	res, err := s.recommend(ctx, in)
	if err != nil {
		return Consultation{}, Result{}, err
	}

	consultation := Consultation{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		IsGuest:        isGuest,
		CatalogVersion: s.Engine.Catalog().Version(),
		BudgetRangeID:  in.BudgetRangeID,
		TotalPriceKRW:  res.Output.TotalPriceKRW,
		Inputs:         in,
		Output:         res.Output,
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Create(ctx, consultation); err != nil {
		return Consultation{}, Result{}, fmt.Errorf("store consultation: %w", err)
	}
	metrics.IncConsultationSaved()
	telemetry.Info("consultation.created", map[string]any{
		"consultation_id": consultation.ID,
		"owner_id":        ownerID,
		"budget_range_id": in.BudgetRangeID,
		"recommended":     len(res.Output.Recommendations),
		"total_krw":       res.Output.TotalPriceKRW,
	})
	return consultation, res, nil
}

// Get returns the owner's consultation.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Consultation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Consultation{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, ownerID, id)
}

// List returns the owner's consultation history, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Consultation, error) {
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// normalize maps legacy past-treatment answers onto current ids so stored
// inputs and cache keys share one vocabulary.
func (s *Service) normalize(in matching.RecommendInputs) matching.RecommendInputs {
	in.PastTreatments = s.Engine.Rules().NormalizePastTreatments(in.PastTreatments)
	return in
}

func (s *Service) recommend(ctx context.Context, in matching.RecommendInputs) (Result, error) {
	key, keyErr := s.cacheKey(in)
	if s.Cache != nil && keyErr == nil {
		if out, ok := s.cached(ctx, key); ok {
			metrics.IncCacheHit()
			return Result{Output: out, CacheStatus: CacheHit}, nil
		}
		metrics.IncCacheMiss()
	}

	start := time.Now()
	out, err := s.Engine.Recommend(in)
	if err != nil {
		metrics.IncRecommendationFailed()
		return Result{}, fmt.Errorf("%w: %v", ErrRecommendation, err)
	}
	metrics.ObserveRecommendation(float64(time.Since(start).Microseconds())/1000.0, len(out.Recommendations), exclusionKinds(out))

	if s.Cache == nil || keyErr != nil {
		return Result{Output: out, CacheStatus: CacheBypassed}, nil
	}
	if payload, err := json.Marshal(out); err == nil {
		if err := s.Cache.Set(ctx, key, payload, s.ttl()); err != nil {
			telemetry.Warn("consultation.cache_set_failed", map[string]any{"error": err})
		}
	}
	return Result{Output: out, CacheStatus: CacheMiss}, nil
}

func (s *Service) cached(ctx context.Context, key string) (matching.RecommendationOutput, bool) {
	payload, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		telemetry.Warn("consultation.cache_get_failed", map[string]any{"error": err})
		return matching.RecommendationOutput{}, false
	}
	if !ok {
		return matching.RecommendationOutput{}, false
	}
	var out matching.RecommendationOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		telemetry.Warn("consultation.cache_decode_failed", map[string]any{"error": err})
		return matching.RecommendationOutput{}, false
	}
	return out, true
}

// cacheKey hashes the catalog version with the normalized inputs.
func (s *Service) cacheKey(in matching.RecommendInputs) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return util.HashKey([]byte(s.Engine.Catalog().Version()), payload), nil
}

func (s *Service) ttl() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return defaultCacheTTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func exclusionKinds(out matching.RecommendationOutput) []string {
	kinds := make([]string, 0, len(out.Excluded))
	for _, item := range out.Excluded {
		kinds = append(kinds, string(item.Kind))
	}
	return kinds
}
