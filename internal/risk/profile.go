package risk

import (
	"math"

	"sentinel-service/internal/models"
)

// Blend weights: behavioral counters are indirect evidence, physical access
// is direct evidence.
const (
	behavioralWeight = 0.6
	accessWeight     = 0.4
)

// Convergence thresholds: both signal families flagging independently is
// stronger evidence than either alone.
const (
	convergenceCSVThreshold    = 60
	convergenceAccessThreshold = 30
)

// BuildSpyProfile combines one employee's behavioral risk with their
// access-control risk into a unified insider-threat profile. The activity
// log parameter is accepted for interface symmetry with BuildAssessment but
// does not enter the blend. Pure and deterministic; any CCTV simulation is
// the caller's concern.
func BuildSpyProfile(rec *models.BehavioralRecord, accessLog *models.AccessLog, _ []models.ActivityLogEntry) models.UnifiedSpyProfile {
	csvScore := Score(rec)

	var csvFactors []string
	if rec.FileActivityCount > 500 {
		csvFactors = append(csvFactors, "Excessive file operations")
	}
	if rec.NightLogins > 5 {
		csvFactors = append(csvFactors, "Frequent night-time logins")
	}
	if rec.USBCount > 20 {
		csvFactors = append(csvFactors, "High USB device usage")
	}
	if rec.ExternalMails > 50 {
		csvFactors = append(csvFactors, "Excessive external email communication")
	}
	if rec.AnomalyLabel == -1 {
		csvFactors = append(csvFactors, "Upstream model anomaly detection flag")
	}

	accessRisk := AccessRisk(rec, accessLog)
	combined := csvScore*behavioralWeight + accessRisk.Score*accessWeight

	unauthorized := accessRisk.UnauthorizedCount > 0
	converged := csvScore >= convergenceCSVThreshold && accessRisk.Score >= convergenceAccessThreshold

	// Any confirmed unauthorized physical access is definitive regardless
	// of the blended score.
	suspiciousness := models.SuspicionLow
	switch {
	case unauthorized:
		suspiciousness = models.SuspicionCritical
	case combined >= 80:
		suspiciousness = models.SuspicionCritical
	case combined >= 60:
		suspiciousness = models.SuspicionHigh
	case combined >= 40:
		suspiciousness = models.SuspicionMedium
	}

	spyScore := combined
	if unauthorized {
		spyScore = math.Max(95, spyScore)
		spyScore = math.Min(100, spyScore*1.5)
	} else if converged {
		spyScore = math.Min(100, spyScore*1.3)
	}

	evidence := make([]string, 0, len(csvFactors)+len(accessRisk.Factors))
	for _, f := range csvFactors {
		evidence = append(evidence, "BEHAVIOR: "+f)
	}
	for _, f := range accessRisk.Factors {
		evidence = append(evidence, "ACCESS: "+f)
	}

	var recommendations []string
	if unauthorized {
		recommendations = append(recommendations,
			"CRITICAL ALERT: Unauthorized access detected",
			"IMMEDIATE ACTION: Suspend all access credentials and badges",
			"URGENT: Review complete CCTV footage for breach timeline",
			"SECURITY: Contact security team and law enforcement immediately",
			"FORENSICS: Preserve all digital evidence, logs, and access records",
		)
	}
	if csvScore >= 70 {
		recommendations = append(recommendations,
			"Escalate to management: Behavioral pattern matches insider threat profile")
	}
	if accessRisk.Score >= 60 {
		recommendations = append(recommendations,
			"Review CCTV logs: Multiple suspicious access patterns detected")
	}
	if converged {
		recommendations = append(recommendations,
			"HIGH PRIORITY: Convergent evidence from behavioral and physical access - full investigation required")
	}
	recommendations = append(recommendations,
		"Preserve all digital evidence: logs, emails, file access history",
		"Interview supervisor and colleagues about any suspicious behavior",
	)

	riskLevel := models.RiskLow
	switch suspiciousness {
	case models.SuspicionCritical, models.SuspicionHigh:
		riskLevel = models.RiskHigh
	case models.SuspicionMedium:
		riskLevel = models.RiskMedium
	}

	return models.UnifiedSpyProfile{
		User:                    rec.User,
		EmployeeName:            rec.DisplayName(),
		Department:              rec.Department,
		OverallRiskScore:        round2(combined),
		RiskLevel:               riskLevel,
		CSVRiskScore:            round2(csvScore),
		CSVRiskFactors:          csvFactors,
		AccessRiskScore:         round2(accessRisk.Score),
		UnauthorizedAccessCount: accessRisk.UnauthorizedCount,
		UnauthorizedAccessTimes: accessRisk.Times,
		AccessRiskFactors:       accessRisk.Factors,
		IsSuspect:               converged || unauthorized,
		Suspiciousness:          suspiciousness,
		SpyScore:                round2(spyScore),
		Evidence:                evidence,
		Recommendations:         recommendations,
	}
}

// ProfilePopulation builds a spy profile for every record, pairing each with
// its access log by user id when one exists.
func ProfilePopulation(records []*models.BehavioralRecord, accessLogs map[string]*models.AccessLog) []models.UnifiedSpyProfile {
	profiles := make([]models.UnifiedSpyProfile, 0, len(records))
	for _, rec := range records {
		profiles = append(profiles, BuildSpyProfile(rec, accessLogs[rec.User], nil))
	}
	return profiles
}
