// Package personalization filters insights down to what a viewer is allowed
// to see and orders the remainder by relevance. It is read-only: records are
// selected and ordered, never mutated.
package personalization

import (
	"sort"

	"github.com/hasiripi/insight-engine/internal/models"
)

// Context is the viewer's identity as far as audience gating is concerned.
type Context struct {
	Role            models.RoleKey
	OperationalRole models.OperationalRole
	Department      string
	Tags            []string
}

// Options tune selection. A Limit of zero or less returns everything.
type Options struct {
	Limit int
}

var severityOrder = []models.InsightSeverity{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
	models.SeverityInfo,
}

// severityRank scores severities so that critical ranks highest.
func severityRank(severity models.InsightSeverity) float64 {
	for i, s := range severityOrder {
		if s == severity {
			return float64(len(severityOrder) - i)
		}
	}
	return 0
}

// matchesAudience reports whether the viewer satisfies every audience
// constraint on the insight. Absent constraints mean no restriction; tag
// constraints only apply when the viewer carries tags at all.
func matchesAudience(insight models.InsightRecord, ctx Context) bool {
	audience := insight.Audience
	if audience == nil {
		return true
	}

	if audience.MinRole != "" && !models.IsRoleAtLeast(ctx.Role, audience.MinRole) {
		return false
	}

	if len(audience.Roles) > 0 && ctx.Role != "" && !containsRole(audience.Roles, ctx.Role) {
		return false
	}

	if len(audience.OperationalRoles) > 0 {
		if ctx.OperationalRole == "" || !containsOperationalRole(audience.OperationalRoles, ctx.OperationalRole) {
			return false
		}
	}

	if len(audience.Departments) > 0 {
		if ctx.Department == "" || !containsString(audience.Departments, ctx.Department) {
			return false
		}
	}

	if len(audience.Tags) > 0 && len(ctx.Tags) > 0 && !intersects(audience.Tags, ctx.Tags) {
		return false
	}

	return true
}

// relevance blends severity, score, confidence and a small bonus for tag
// overlap with the viewer.
func relevance(insight models.InsightRecord, ctx Context) float64 {
	value := severityRank(insight.Severity)
	value += insight.Score * 10
	value += insight.Confidence * 5
	if intersects(insight.Tags, ctx.Tags) {
		value += 2
	}
	return value
}

// SelectForAudience returns the insights the viewer may see, ordered by
// descending relevance. Ties keep their input order so repeated runs over the
// same data rank identically.
func SelectForAudience(insights []models.InsightRecord, ctx Context, opts Options) []models.InsightRecord {
	filtered := make([]models.InsightRecord, 0, len(insights))
	for _, insight := range insights {
		if matchesAudience(insight, ctx) {
			filtered = append(filtered, insight)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return relevance(filtered[i], ctx) > relevance(filtered[j], ctx)
	})

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered
}

// GroupByCategory buckets insights per category, preserving input order
// within each bucket.
func GroupByCategory(insights []models.InsightRecord) map[models.InsightCategory][]models.InsightRecord {
	groups := make(map[models.InsightCategory][]models.InsightRecord)
	for _, insight := range insights {
		groups[insight.Category] = append(groups[insight.Category], insight)
	}
	return groups
}

// TopBySeverity returns the insights at exactly the given severity, ordered
// by raw score descending.
func TopBySeverity(insights []models.InsightRecord, severity models.InsightSeverity, opts Options) []models.InsightRecord {
	filtered := make([]models.InsightRecord, 0, len(insights))
	for _, insight := range insights {
		if insight.Severity == severity {
			filtered = append(filtered, insight)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered
}

func containsRole(list []models.RoleKey, role models.RoleKey) bool {
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}

func containsOperationalRole(list []models.OperationalRole, role models.OperationalRole) bool {
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}

func containsString(list []string, value string) bool {
	for _, s := range list {
		if s == value {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
