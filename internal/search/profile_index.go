package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sentinel-service/internal/client"
	"sentinel-service/internal/models"
	"sentinel-service/internal/util"
)

// ProfileIndex mirrors computed spy profiles into Elasticsearch so analysts
// can run free-text queries over evidence and risk factors.
type ProfileIndex struct {
	es    *client.ESClient
	index string
}

func NewProfileIndex(es *client.ESClient, index string) *ProfileIndex {
	return &ProfileIndex{es: es, index: index}
}

type indexedProfile struct {
	User             string    `json:"user"`
	EmployeeName     string    `json:"employee_name"`
	Department       string    `json:"department,omitempty"`
	SpyScore         float64   `json:"spy_score"`
	OverallRiskScore float64   `json:"overall_risk_score"`
	Suspiciousness   string    `json:"suspiciousness"`
	IsSuspect        bool      `json:"is_suspect"`
	Evidence         []string  `json:"evidence"`
	CSVRiskFactors   []string  `json:"csv_risk_factors"`
	AccessFactors    []string  `json:"access_risk_factors"`
	IndexedAt        time.Time `json:"indexed_at"`
}

// IndexProfile upserts one profile document keyed by employee id.
func (p *ProfileIndex) IndexProfile(ctx context.Context, profile *models.UnifiedSpyProfile) error {
	doc := indexedProfile{
		User:             profile.User,
		EmployeeName:     profile.EmployeeName,
		Department:       profile.Department,
		SpyScore:         profile.SpyScore,
		OverallRiskScore: profile.OverallRiskScore,
		Suspiciousness:   string(profile.Suspiciousness),
		IsSuspect:        profile.IsSuspect,
		Evidence:         profile.Evidence,
		CSVRiskFactors:   profile.CSVRiskFactors,
		AccessFactors:    profile.AccessRiskFactors,
		IndexedAt:        time.Now().UTC(),
	}

	res, err := p.es.IndexDocument(ctx, p.index, profile.User, doc)
	if err != nil {
		return fmt.Errorf("failed to index profile: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch rejected profile document: %s", res.String())
	}

	util.Debug("Profile indexed",
		zap.String("user", profile.User),
		zap.Float64("spy_score", profile.SpyScore))
	return nil
}

// IndexProfiles indexes a whole population, logging per-document failures
// but only failing if every document was rejected.
func (p *ProfileIndex) IndexProfiles(ctx context.Context, profiles []models.UnifiedSpyProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	var failed int
	for i := range profiles {
		if err := p.IndexProfile(ctx, &profiles[i]); err != nil {
			failed++
			util.Warn("Failed to index profile",
				zap.String("user", profiles[i].User),
				zap.Error(err))
		}
	}

	if failed == len(profiles) {
		return fmt.Errorf("failed to index all %d profiles", failed)
	}

	util.Info("Profiles indexed",
		zap.Int("indexed", len(profiles)-failed),
		zap.Int("failed", failed))
	return nil
}

// EvidenceHit is one search result with its relevance score.
type EvidenceHit struct {
	User           string   `json:"user"`
	EmployeeName   string   `json:"employee_name"`
	SpyScore       float64  `json:"spy_score"`
	Suspiciousness string   `json:"suspiciousness"`
	Evidence       []string `json:"evidence"`
	Score          float64  `json:"relevance"`
}

// SearchEvidence runs a free-text query over evidence, risk factors and
// identities, returning the top matches by relevance.
func (p *ProfileIndex) SearchEvidence(ctx context.Context, queryText string, limit int) ([]EvidenceHit, error) {
	if limit <= 0 {
		limit = 20
	}

	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query": strings.TrimSpace(queryText),
				"fields": []string{
					"evidence^2", "csv_risk_factors", "access_risk_factors",
					"employee_name", "user", "department",
				},
				"fuzziness": "AUTO",
			},
		},
	}

	res, err := p.es.Search(ctx, p.index, query)
	if err != nil {
		return nil, fmt.Errorf("evidence search failed: %w", err)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64        `json:"_score"`
				Source indexedProfile `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := p.es.ParseResponse(res, &parsed); err != nil {
		return nil, err
	}

	hits := make([]EvidenceHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, EvidenceHit{
			User:           h.Source.User,
			EmployeeName:   h.Source.EmployeeName,
			SpyScore:       h.Source.SpyScore,
			Suspiciousness: h.Source.Suspiciousness,
			Evidence:       h.Source.Evidence,
			Score:          h.Score,
		})
	}

	return hits, nil
}
