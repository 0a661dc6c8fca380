package report

// Risk levels, ordered.
const (
	RiskSafe     = "SAFE"
	RiskLow      = "LOW"
	RiskModerate = "MODERATE"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// Engagement levels.
const (
	EngagementLow      = "LOW"
	EngagementModerate = "MODERATE"
	EngagementHigh     = "HIGH"
	EngagementVeryHigh = "VERY_HIGH"
)

// Scam categories in evaluation precedence.
const (
	CategoryBenign       = "Likely Benign"
	CategoryPhishing     = "Phishing/Malware"
	CategoryFinancial    = "Financial Fraud"
	CategoryEmployment   = "Employment Scam"
	CategoryLottery      = "Lottery/Baiting"
	CategoryExtortion    = "Impersonation/Extortion"
	CategorySocial       = "Social Engineering"
	CategoryUnclassified = "Unclassified"
)

// ExtractedIntelligence is the IOC-only slice of the session intelligence
// that leaves the system in the final payload. No tactics, no metadata.
type ExtractedIntelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

type BehavioralIndicators struct {
	SocialEngineeringTactics []string `json:"socialEngineeringTactics"`
	FalseExpertise           bool     `json:"falseExpertise"`
	PressureLanguageDetected bool     `json:"pressureLanguageDetected"`
	OTPHarvestingAttempt     bool     `json:"otpHarvestingAttempt"`
	PersistentEngagement     bool     `json:"persistentEngagement"`
}

type EngagementMetrics struct {
	AgentMessages             int     `json:"agentMessages"`
	ScammerMessages           int     `json:"scammerMessages"`
	AvgResponseTimeSec        float64 `json:"avgResponseTimeSec"`
	TotalConversationDuration int64   `json:"totalConversationDurationSec"`
	EngagementLevel           string  `json:"engagementLevel"`
}

type IntelligenceMetrics struct {
	UniqueIndicatorsExtracted int     `json:"uniqueIndicatorsExtracted"`
	IntelligenceQualityScore  float64 `json:"intelligenceQualityScore"` // 0..1
	ExtractionAccuracyScore   float64 `json:"extractionAccuracyScore"`
}

type ScammerProfile struct {
	PersonaType           string `json:"personaType"`
	LikelyRegion          string `json:"likelyRegion"`
	LanguageDetected      string `json:"languageDetected"`
	RepeatPatternDetected bool   `json:"repeatPatternDetected"`
}

type CostAnalysis struct {
	TimeWastedMinutes       float64 `json:"timeWastedMinutes"`
	EstimatedScammerCostUSD float64 `json:"estimatedScammerCostUSD"`
}

type AgentPerformance struct {
	HumanLikeScore          int  `json:"humanLikeScore"`
	ConversationNaturalness int  `json:"conversationNaturalnessScore"`
	SelfCorrections         int  `json:"selfCorrections"`
	StealthModeMaintained   bool `json:"stealthModeMaintained"`
}

type SystemMetrics struct {
	DetectionModelVersion string `json:"detectionModelVersion"`
	SystemLatencyMs       int    `json:"systemLatencyMs"`
	ProcessingTimeMs      int    `json:"processingTimeMs"`
	SystemHealth          string `json:"systemHealth"`
}

// FinalReport is the consolidated read-only session report. Every scalar is
// a pure function of the snapshot it was computed from.
type FinalReport struct {
	SessionID              string                `json:"sessionId"`
	ScamDetected           bool                  `json:"scamDetected"`
	TotalMessagesExchanged int                   `json:"totalMessagesExchanged"`
	ExtractedIntelligence  ExtractedIntelligence `json:"extractedIntelligence"`
	AgentNotes             string                `json:"agentNotes"`
	ConfidenceScore        float64               `json:"confidenceScore"` // normalized 0..1
	RiskLevel              string                `json:"riskLevel"`
	ScamCategory           string                `json:"scamCategory"`
	ThreatScore            float64               `json:"threatScore"`
	BehavioralIndicators   BehavioralIndicators  `json:"behavioralIndicators"`
	EngagementMetrics      EngagementMetrics     `json:"engagementMetrics"`
	IntelligenceMetrics    IntelligenceMetrics   `json:"intelligenceMetrics"`
	ScammerProfile         ScammerProfile        `json:"scammerProfile"`
	CostAnalysis           CostAnalysis          `json:"costAnalysis"`
	AgentPerformance       AgentPerformance      `json:"agentPerformance"`
	SystemMetrics          SystemMetrics         `json:"systemMetrics"`
}
