// Package aggregate derives presentation metrics from raw alert data:
// risk tiers, vendor and department rollups, monthly trend buckets, and
// the headline KPI block.
package aggregate

import (
	"sort"
	"time"

	"github.com/openaudit/auditlens/internal/backend"
)

// Tier labels, ordered from least to most severe.
const (
	TierLow      = "LOW"
	TierMedium   = "MEDIUM"
	TierHigh     = "HIGH"
	TierCritical = "CRITICAL"
)

// Thresholds are the tier boundary minimums. The one tier switch lives
// here; everything that labels a score goes through Thresholds.Tier so
// retuned boundaries change every view at once.
type Thresholds struct {
	Critical float64
	High     float64
	Medium   float64
}

// DefaultThresholds returns the out-of-the-box tier boundaries:
// [0, 0.4) LOW, [0.4, 0.6) MEDIUM, [0.6, 0.8) HIGH, [0.8, 1] CRITICAL.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 0.8, High: 0.6, Medium: 0.4}
}

// Tier maps a risk score to its tier label. Boundaries are half-open.
func (t Thresholds) Tier(score float64) string {
	switch {
	case score >= t.Critical:
		return TierCritical
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// VendorGroup is the client-side rollup of one vendor's alerts.
type VendorGroup struct {
	VendorID    string
	Vendor      string
	AlertCount  int
	TotalAmount float64
	MaxScore    float64
	MeanScore   float64
	Tier        string
}

// GroupByVendor rolls alerts up per vendor, sorted by max score descending,
// ties broken by total amount descending.
func GroupByVendor(alerts []backend.Alert, t Thresholds) []VendorGroup {
	byVendor := make(map[string]*VendorGroup)
	for _, a := range alerts {
		g, ok := byVendor[a.VendorID]
		if !ok {
			g = &VendorGroup{VendorID: a.VendorID, Vendor: a.Vendor}
			byVendor[a.VendorID] = g
		}
		g.AlertCount++
		g.TotalAmount += a.Amount
		g.MeanScore += a.RiskScore
		if a.RiskScore > g.MaxScore {
			g.MaxScore = a.RiskScore
		}
		if g.Vendor == "" {
			g.Vendor = a.Vendor
		}
	}

	out := make([]VendorGroup, 0, len(byVendor))
	for _, g := range byVendor {
		g.MeanScore /= float64(g.AlertCount)
		g.Tier = t.Tier(g.MaxScore)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MaxScore != out[j].MaxScore {
			return out[i].MaxScore > out[j].MaxScore
		}
		return out[i].TotalAmount > out[j].TotalAmount
	})
	return out
}

// DepartmentGroup is the client-side rollup of one department's alerts.
type DepartmentGroup struct {
	DepartmentID string
	Department   string
	AlertCount   int
	TotalAmount  float64
	MeanScore    float64
	VendorCount  int
	Tier         string
}

// GroupByDepartment rolls alerts up per department, sorted by mean score
// descending.
func GroupByDepartment(alerts []backend.Alert, t Thresholds) []DepartmentGroup {
	type acc struct {
		group   DepartmentGroup
		vendors map[string]struct{}
	}
	byDept := make(map[string]*acc)
	for _, a := range alerts {
		d, ok := byDept[a.DepartmentID]
		if !ok {
			d = &acc{
				group:   DepartmentGroup{DepartmentID: a.DepartmentID, Department: a.Department},
				vendors: make(map[string]struct{}),
			}
			byDept[a.DepartmentID] = d
		}
		d.group.AlertCount++
		d.group.TotalAmount += a.Amount
		d.group.MeanScore += a.RiskScore
		d.vendors[a.VendorID] = struct{}{}
		if d.group.Department == "" {
			d.group.Department = a.Department
		}
	}

	out := make([]DepartmentGroup, 0, len(byDept))
	for _, d := range byDept {
		d.group.MeanScore /= float64(d.group.AlertCount)
		d.group.VendorCount = len(d.vendors)
		d.group.Tier = t.Tier(d.group.MeanScore)
		out = append(out, d.group)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MeanScore > out[j].MeanScore
	})
	return out
}

// MonthlyCounts buckets alerts into 12 calendar-month slots (Jan..Dec) for
// the trend chart. Alerts with a zero CreatedAt are skipped.
func MonthlyCounts(alerts []backend.Alert) [12]int {
	var buckets [12]int
	for _, a := range alerts {
		if a.CreatedAt.IsZero() {
			continue
		}
		buckets[int(a.CreatedAt.Month())-1]++
	}
	return buckets
}

// KPIs is the headline block on the dashboard page.
type KPIs struct {
	TotalAlerts   int
	CriticalCount int
	HighCount     int
	MediumCount   int
	LowCount      int
	TotalAmount   float64
	MeanScore     float64
	MaxScore      float64
}

// ComputeKPIs derives the headline metrics from a snapshot of alerts,
// bucketing counts with the given tier boundaries so the headline tiles
// agree with the per-row labels. An empty slice yields the zero value,
// which renders as an empty state.
func ComputeKPIs(alerts []backend.Alert, t Thresholds) KPIs {
	var k KPIs
	k.TotalAlerts = len(alerts)
	for _, a := range alerts {
		k.TotalAmount += a.Amount
		k.MeanScore += a.RiskScore
		if a.RiskScore > k.MaxScore {
			k.MaxScore = a.RiskScore
		}
		switch t.Tier(a.RiskScore) {
		case TierCritical:
			k.CriticalCount++
		case TierHigh:
			k.HighCount++
		case TierMedium:
			k.MediumCount++
		default:
			k.LowCount++
		}
	}
	if k.TotalAlerts > 0 {
		k.MeanScore /= float64(k.TotalAlerts)
	}
	return k
}

// TopAlerts returns the n highest-risk alerts without mutating the input.
func TopAlerts(alerts []backend.Alert, n int) []backend.Alert {
	sorted := make([]backend.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RiskScore > sorted[j].RiskScore
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// now is overridable in tests.
var now = time.Now
