// Package fixtures generates synthetic monitoring data for demos and local
// development. Generation is fully seedable so demo environments are
// reproducible. Nothing in the scoring path depends on this package.
package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"sentinel-service/internal/models"
)

var (
	firstNames  = []string{"Alice", "Bob", "Carol", "David", "Elena", "Frank", "Grace", "Hassan", "Irene", "Jonas", "Kavya", "Liam", "Mina", "Noah", "Priya", "Quinn", "Rosa", "Sanjay", "Tara", "Victor"}
	lastNames   = []string{"Morgan", "Reyes", "Diaz", "Khan", "Novak", "Okafor", "Petrov", "Sato", "Mehta", "Lund", "Weber", "Iyer", "Costa", "Haas", "Zhou"}
	departments = []string{"Engineering", "Finance", "Human Resources", "Sales", "Research", "Operations", "Legal"}
	jobTitles   = []string{"Analyst", "Engineer", "Manager", "Specialist", "Director", "Coordinator"}
	systems     = []string{"ERP", "CRM", "SharePoint", "GitLab", "DataWarehouse", "HR-Portal"}
	locations   = []string{"Server Room", "Main Entrance", "R&D Lab", "Records Archive", "Executive Floor"}
	fileNames   = []string{"q3_forecast.xlsx", "customer_list.csv", "design_spec.pdf", "salaries.xlsx", "source_backup.zip", "contract_draft.docx", "prototype_notes.md"}
)

// Generator produces deterministic synthetic populations from a seed.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Employees generates n behavioral records. Roughly one in eight employees
// is shaped as a plausible insider (heavy file activity, night logins,
// anomaly label set).
func (g *Generator) Employees(n int) []*models.BehavioralRecord {
	records := make([]*models.BehavioralRecord, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s",
			firstNames[g.rng.Intn(len(firstNames))],
			lastNames[g.rng.Intn(len(lastNames))])

		rec := &models.BehavioralRecord{
			User:         fmt.Sprintf("EMP%04d", i+1),
			EmployeeName: name,
			Department:   departments[g.rng.Intn(len(departments))],
			JobTitle:     jobTitles[g.rng.Intn(len(jobTitles))],
			Date:         time.Now().UTC().AddDate(0, 0, -g.rng.Intn(30)).Format("2006-01-02"),

			LoginCount:        float64(40 + g.rng.Intn(160)),
			NightLogins:       float64(g.rng.Intn(4)),
			UniquePCs:         float64(1 + g.rng.Intn(3)),
			FileActivityCount: float64(50 + g.rng.Intn(300)),
			USBCount:          float64(g.rng.Intn(10)),
			EmailsSent:        float64(20 + g.rng.Intn(120)),
			ExternalMails:     float64(g.rng.Intn(25)),
			HTTPRequests:      float64(100 + g.rng.Intn(900)),

			DatabaseSessionDuration: float64(g.rng.Intn(200)),
			DatabaseQueryCount:      float64(g.rng.Intn(800)),
			DatabaseWriteOps:        float64(g.rng.Intn(100)),

			RiskScore:    float64(10 + g.rng.Intn(40)),
			AnomalyLabel: 1,

			TraitOpenness:          float64(30 + g.rng.Intn(50)),
			TraitConscientiousness: float64(30 + g.rng.Intn(50)),
			TraitExtraversion:      float64(30 + g.rng.Intn(50)),
			TraitAgreeableness:     float64(30 + g.rng.Intn(50)),
			TraitNeuroticism:       float64(30 + g.rng.Intn(50)),
			TraitsProvided:         true,
		}

		if g.rng.Intn(8) == 0 {
			g.shapeInsider(rec)
		}

		records = append(records, rec)
	}
	return records
}

// shapeInsider turns a normal record into a high-risk one.
func (g *Generator) shapeInsider(rec *models.BehavioralRecord) {
	rec.FileActivityCount = float64(600 + g.rng.Intn(600))
	rec.NightLogins = float64(6 + g.rng.Intn(15))
	rec.USBCount = float64(20 + g.rng.Intn(40))
	rec.ExternalMails = float64(50 + g.rng.Intn(100))
	rec.DatabaseWriteOps = float64(300 + g.rng.Intn(400))
	rec.RiskScore = float64(55 + g.rng.Intn(35))
	rec.AnomalyLabel = -1
	rec.TraitNeuroticism = float64(70 + g.rng.Intn(30))
	rec.TraitConscientiousness = float64(g.rng.Intn(30))
}

// Activities generates activity-log entries for the given records over the
// past week. Insider-shaped records get extra anomalous entries.
func (g *Generator) Activities(records []*models.BehavioralRecord, perEmployee int) []models.ActivityLogEntry {
	types := []models.ActivityType{
		models.ActivityFileOpened, models.ActivityFileCopied,
		models.ActivityFileDeleted, models.ActivityFileDownloaded,
		models.ActivityUSBConnected, models.ActivityEmailSent,
		models.ActivityLogin, models.ActivityLogout,
		models.ActivityHTTPRequest,
	}

	now := time.Now().UTC()
	var entries []models.ActivityLogEntry
	for _, rec := range records {
		count := perEmployee
		anomalous := rec.AnomalyLabel == -1
		if anomalous {
			count += perEmployee / 2
		}

		for i := 0; i < count; i++ {
			at := types[g.rng.Intn(len(types))]
			entry := models.ActivityLogEntry{
				ID:           uuid.New().String(),
				UserID:       rec.User,
				Timestamp:    now.Add(-time.Duration(g.rng.Intn(7*24*60)) * time.Minute),
				ActivityType: at,
				Duration:     float64(g.rng.Intn(600)),
				Severity:     models.SeverityLow,
			}

			switch at {
			case models.ActivityFileOpened, models.ActivityFileCopied,
				models.ActivityFileDeleted, models.ActivityFileDownloaded:
				entry.Details = models.ActivityDetails{
					FileName:    fileNames[g.rng.Intn(len(fileNames))],
					FileSize:    int64(g.rng.Intn(20_000_000)),
					System:      systems[g.rng.Intn(len(systems))],
					IsSensitive: g.rng.Intn(5) == 0,
					Operation:   string(at),
				}
			case models.ActivityEmailSent:
				entry.Details = models.ActivityDetails{
					EmailRecipients: 1 + g.rng.Intn(6),
				}
			case models.ActivityUSBConnected:
				entry.Details = models.ActivityDetails{
					USBName: fmt.Sprintf("Kingston-%02d", g.rng.Intn(90)),
				}
			}

			if anomalous && g.rng.Intn(4) == 0 {
				entry.IsAnomalous = true
				entry.Severity = models.SeverityHigh
			} else if entry.Details.IsSensitive {
				entry.Severity = models.SeverityMedium
			}

			entries = append(entries, entry)
		}
	}
	return entries
}

// AccessLog generates one synthetic footage log covering the population.
// Insider-shaped employees occasionally appear unauthorized and at night.
func (g *Generator) AccessLog(records []*models.BehavioralRecord) *models.AccessLog {
	now := time.Now().UTC()
	log := &models.AccessLog{
		VideoID:     uuid.New().String(),
		UploadedAt:  now,
		TotalFrames: 18000,
		Duration:    600,
	}

	for _, rec := range records {
		log.AuthorizedEmployees = append(log.AuthorizedEmployees, rec.User)

		eventCount := 1 + g.rng.Intn(3)
		insider := rec.AnomalyLabel == -1
		if insider {
			eventCount += 2
		}

		for i := 0; i < eventCount; i++ {
			hour := 8 + g.rng.Intn(10)
			if insider && g.rng.Intn(2) == 0 {
				hour = 22 + g.rng.Intn(2)
			}

			ev := models.AccessEvent{
				ID:                 uuid.New().String(),
				DetectedPersonID:   rec.User,
				DetectedPersonName: rec.EmployeeName,
				Timestamp: time.Date(now.Year(), now.Month(), now.Day(),
					hour, g.rng.Intn(60), 0, 0, time.UTC).AddDate(0, 0, -g.rng.Intn(5)),
				Confidence:  0.75 + g.rng.Float64()*0.25,
				Authorized:  true,
				Location:    locations[g.rng.Intn(len(locations))],
				Duration:    float64(1 + g.rng.Intn(30)),
				FrameNumber: g.rng.Intn(18000),
			}

			if insider && g.rng.Intn(3) == 0 {
				ev.Authorized = false
				ev.Confidence = 0.35 + g.rng.Float64()*0.3
			}

			log.Events = append(log.Events, ev)
		}
	}

	return log
}
