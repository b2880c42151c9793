package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sentinel-service/internal/client"
	"sentinel-service/internal/models"
	"sentinel-service/internal/util"
)

// Publisher emits risk alerts onto Kafka for downstream consumers (SOC
// tooling, case management). Publishing is best-effort; a broker outage
// never blocks an analysis run.
type Publisher struct {
	producer     *client.KafkaProducer
	topic        string
	pseudonymize func(string) string
}

// NewPublisher wires the producer. pseudonymize replaces raw employee ids in
// published alerts with stable export tokens; nil disables the substitution.
func NewPublisher(producer *client.KafkaProducer, topic string, pseudonymize func(string) string) *Publisher {
	return &Publisher{producer: producer, topic: topic, pseudonymize: pseudonymize}
}

// RiskAlert is the wire format published for high-risk findings. Alerts
// cross the service boundary, so the subject is identified by export token
// rather than by name.
type RiskAlert struct {
	AlertID        string    `json:"alert_id"`
	Subject        string    `json:"subject"`
	SpyScore       float64   `json:"spy_score"`
	RiskLevel      string    `json:"risk_level"`
	Suspiciousness string    `json:"suspiciousness"`
	Evidence       []string  `json:"evidence,omitempty"`
	EmittedAt      time.Time `json:"emitted_at"`
}

// PublishProfileAlert emits one alert for a suspect profile.
func (p *Publisher) PublishProfileAlert(ctx context.Context, profile *models.UnifiedSpyProfile) error {
	if p == nil || p.producer == nil {
		return nil
	}

	subject := profile.User
	if p.pseudonymize != nil {
		subject = p.pseudonymize(profile.User)
	}

	alert := RiskAlert{
		AlertID:        uuid.New().String(),
		Subject:        subject,
		SpyScore:       profile.SpyScore,
		RiskLevel:      string(profile.RiskLevel),
		Suspiciousness: string(profile.Suspiciousness),
		Evidence:       profile.Evidence,
		EmittedAt:      time.Now().UTC(),
	}

	value, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode risk alert: %w", err)
	}

	headers := map[string]string{
		"alert_type": "spy_profile",
		"risk_level": string(profile.RiskLevel),
	}

	if err := p.producer.ProduceMessage(ctx, p.topic, []byte(subject), value, headers); err != nil {
		return fmt.Errorf("failed to publish risk alert: %w", err)
	}

	util.Info("Risk alert published",
		zap.String("user", profile.User),
		zap.Float64("spy_score", profile.SpyScore),
		zap.String("suspiciousness", string(profile.Suspiciousness)))
	return nil
}

// PublishSuspects emits alerts for every suspect in a report, logging but
// not propagating per-message failures.
func (p *Publisher) PublishSuspects(ctx context.Context, report *models.ThreatReport) {
	if p == nil || p.producer == nil || report == nil {
		return
	}

	groups := [][]models.UnifiedSpyProfile{
		report.CriticalThreats,
		report.HighThreats,
	}
	for _, group := range groups {
		for i := range group {
			if err := p.PublishProfileAlert(ctx, &group[i]); err != nil {
				util.Warn("Alert publish failed",
					zap.String("user", group[i].User),
					zap.Error(err))
			}
		}
	}
}
