package backend

import "time"

// Alert is a flagged transaction scored by the audit backend.
type Alert struct {
	TransactionID string    `json:"transaction_id"`
	VendorID      string    `json:"vendor_id"`
	Vendor        string    `json:"vendor,omitempty"`
	DepartmentID  string    `json:"department_id"`
	Department    string    `json:"department,omitempty"`
	Amount        float64   `json:"amount"`
	RiskScore     float64   `json:"risk_score"`
	Status        string    `json:"status"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// alertsResponse is the wire envelope for GET /api/alerts.
type alertsResponse struct {
	Total  int     `json:"total"`
	Alerts []Alert `json:"alerts"`
}

// Entity is a server-computed vendor-level aggregate.
type Entity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Verdict     string    `json:"verdict"` // CRITICAL / HIGH / MEDIUM / LOW
	TotalAmount float64   `json:"total_amount"`
	FlagCount   int       `json:"flag_count"`
	RiskScore   float64   `json:"risk_score"`
	TopReasons  []string  `json:"top_reasons"`
	History     []float64 `json:"history"` // trend samples
	Departments []string  `json:"departments"`
}

// Department is a server-computed departmental aggregate.
type Department struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	FlagCount   int     `json:"flag_count"`
	TotalAmount float64 `json:"total_amount"`
	AvgScore    float64 `json:"avg_score"`
	VendorCount int     `json:"vendor_count"`
	RiskIndex   float64 `json:"risk_index"`
}

// Stats is the backend's dashboard summary.
type Stats struct {
	TotalAlerts        int     `json:"total_alerts"`
	CriticalAlerts     int     `json:"critical_alerts"`
	HighRiskAlerts     int     `json:"high_risk_alerts"`
	MediumRiskAlerts   int     `json:"medium_risk_alerts"`
	TotalFlaggedAmount float64 `json:"total_flagged_amount"`
	MonthlyCounts      []int   `json:"monthly_counts"` // 12 buckets, Jan..Dec
}

// GraphNode is a node in the vendor/department relationship graph.
type GraphNode struct {
	ID    string  `json:"id"`
	Group int     `json:"group"` // 1=vendor, 2=department, 3=project
	Type  string  `json:"type"`
	Val   float64 `json:"val"`
	Risk  float64 `json:"risk"`
}

// GraphLink is an edge in the relationship graph.
type GraphLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  int     `json:"value"`  // transaction count
	Amount float64 `json:"amount"` // total amount
}

// NetworkGraph is the payload of GET /api/network/graph.
type NetworkGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// BenfordDigit is the observed vs expected frequency of one leading digit.
type BenfordDigit struct {
	Digit    int     `json:"digit"`
	Actual   float64 `json:"actual"`   // observed percentage
	Expected float64 `json:"expected"` // Benford percentage
	Count    int     `json:"count"`
}

// BenfordStats summarises the chi-square test over the distribution.
type BenfordStats struct {
	ChiSquare   float64 `json:"chi_square"`
	PValue      float64 `json:"p_value"`
	IsAnomalous bool    `json:"is_anomalous"`
	Conclusion  string  `json:"conclusion"`
}

// Benford is the payload of GET /api/benford.
type Benford struct {
	Valid             bool           `json:"valid"`
	Error             string         `json:"error,omitempty"`
	TotalTransactions int            `json:"total_transactions"`
	Distribution      []BenfordDigit `json:"distribution"`
	Stats             BenfordStats   `json:"stats"`
}

// RiskCell is one cell of the district/department risk heatmap.
type RiskCell struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	FlagCount  int     `json:"flag_count"`
	TotalValue float64 `json:"total_value"`
	AvgScore   float64 `json:"avg_score"`
	RiskIndex  float64 `json:"risk_index"`
}

// User is the authenticated account resolved from /api/users/me.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Transaction is the input to POST /api/predict.
type Transaction struct {
	TransactionID  string  `json:"transaction_id"`
	Amount         float64 `json:"amount"`
	DepartmentID   string  `json:"department_id"`
	VendorID       string  `json:"vendor_id"`
	VendorCategory string  `json:"vendor_category,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
	Description    string  `json:"description,omitempty"`
	ProjectID      string  `json:"project_id,omitempty"`
}

// Prediction is the scored result for a single transaction.
type Prediction struct {
	TransactionID string   `json:"transaction_id"`
	IsFraud       bool     `json:"is_fraud"`
	RiskScore     float64  `json:"risk_score"`
	RiskLevel     string   `json:"risk_level"`
	Reasons       []string `json:"reasons"`
	Amount        float64  `json:"amount"`
	DepartmentID  string   `json:"department_id"`
	VendorID      string   `json:"vendor_id"`
}

// UploadResult summarises a CSV batch analysis.
type UploadResult struct {
	Success                bool         `json:"success"`
	Filename               string       `json:"filename"`
	TotalTransactions      int          `json:"total_transactions"`
	FraudulentTransactions int          `json:"fraudulent_transactions"`
	HighRiskCount          int          `json:"high_risk_count"`
	DetectionRate          float64      `json:"detection_rate"`
	Results                []Prediction `json:"results"`
}

// ChatReply is the policy assistant's answer.
type ChatReply struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources,omitempty"`
}

// HealthStatus is the backend connectivity probe result.
type HealthStatus struct {
	Status      string `json:"status"` // "healthy", "unhealthy", "offline"
	ModelLoaded bool   `json:"model_loaded"`
	Database    string `json:"database,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// Up reports whether the backend is reachable and serving.
func (h HealthStatus) Up() bool {
	return h.Status == "healthy"
}
