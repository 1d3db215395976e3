package personalization

import (
	"testing"

	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insight(id string, severity models.InsightSeverity, score float64, audience *models.InsightAudience) models.InsightRecord {
	return models.InsightRecord{
		ID:         id,
		Category:   models.CategoryFinance,
		Severity:   severity,
		Score:      score,
		Confidence: 0.7,
		Audience:   audience,
	}
}

func TestMinRoleGating(t *testing.T) {
	financeOnly := insight("fin", models.SeverityHigh, 0.8, &models.InsightAudience{MinRole: models.RoleFinance})

	user := Context{Role: models.RoleUser}
	admin := Context{Role: models.RoleAdmin}
	finance := Context{Role: models.RoleFinance}
	manager := Context{Role: models.RoleManager}

	assert.Empty(t, SelectForAudience([]models.InsightRecord{financeOnly}, user, Options{}))
	assert.Len(t, SelectForAudience([]models.InsightRecord{financeOnly}, admin, Options{}), 1)
	assert.Len(t, SelectForAudience([]models.InsightRecord{financeOnly}, finance, Options{}), 1)
	// Manager shares finance's rank but not its branch.
	assert.Empty(t, SelectForAudience([]models.InsightRecord{financeOnly}, manager, Options{}))
}

func TestOperationalRoleGating(t *testing.T) {
	gated := insight("ops", models.SeverityMedium, 0.5, &models.InsightAudience{
		OperationalRoles: []models.OperationalRole{models.OpsFinance, models.OpsAdmin},
	})

	match := Context{Role: models.RoleAdmin, OperationalRole: models.OpsFinance}
	mismatch := Context{Role: models.RoleAdmin, OperationalRole: models.OpsProduct}
	missing := Context{Role: models.RoleAdmin}

	assert.Len(t, SelectForAudience([]models.InsightRecord{gated}, match, Options{}), 1)
	assert.Empty(t, SelectForAudience([]models.InsightRecord{gated}, mismatch, Options{}))
	// A viewer with no operational role fails a non-empty constraint.
	assert.Empty(t, SelectForAudience([]models.InsightRecord{gated}, missing, Options{}))
}

func TestDepartmentGating(t *testing.T) {
	gated := insight("dep", models.SeverityMedium, 0.5, &models.InsightAudience{Departments: []string{"ops"}})

	assert.Len(t, SelectForAudience([]models.InsightRecord{gated}, Context{Role: models.RoleAdmin, Department: "ops"}, Options{}), 1)
	assert.Empty(t, SelectForAudience([]models.InsightRecord{gated}, Context{Role: models.RoleAdmin, Department: "hr"}, Options{}))
	assert.Empty(t, SelectForAudience([]models.InsightRecord{gated}, Context{Role: models.RoleAdmin}, Options{}))
}

func TestTagGatingOnlyWithViewerTags(t *testing.T) {
	gated := insight("tagged", models.SeverityMedium, 0.5, &models.InsightAudience{Tags: []string{"finance"}})

	// No viewer tags: the tag constraint does not filter.
	assert.Len(t, SelectForAudience([]models.InsightRecord{gated}, Context{Role: models.RoleAdmin}, Options{}), 1)
	// Viewer tags present but disjoint: filtered.
	assert.Empty(t, SelectForAudience([]models.InsightRecord{gated}, Context{Role: models.RoleAdmin, Tags: []string{"ops"}}, Options{}))
	// Overlapping tag: visible.
	assert.Len(t, SelectForAudience([]models.InsightRecord{gated}, Context{Role: models.RoleAdmin, Tags: []string{"finance"}}, Options{}), 1)
}

func TestNilAudienceVisibleToAnyone(t *testing.T) {
	open := insight("open", models.SeverityLow, 0.1, nil)
	assert.Len(t, SelectForAudience([]models.InsightRecord{open}, Context{}, Options{}), 1)
}

func TestRankingBySeverityThenScore(t *testing.T) {
	ctx := Context{Role: models.RoleAdmin}
	insights := []models.InsightRecord{
		insight("low-sev", models.SeverityLow, 0.9, nil),
		insight("high-score", models.SeverityHigh, 0.8, nil),
		insight("high-critical", models.SeverityCritical, 0.2, nil),
		insight("high-low-score", models.SeverityHigh, 0.3, nil),
	}

	ranked := SelectForAudience(insights, ctx, Options{})
	require.Len(t, ranked, 4)
	// Severity is worth one point per level while score is worth ten per unit,
	// so a large score gap outweighs a severity gap.
	assert.Equal(t, "high-score", ranked[0].ID)   // 4 + 8
	assert.Equal(t, "low-sev", ranked[1].ID)      // 2 + 9
	assert.Equal(t, "high-critical", ranked[2].ID) // 5 + 2, ties with the next, input order kept
	assert.Equal(t, "high-low-score", ranked[3].ID)
}

func TestEqualSeverityHigherScoreFirst(t *testing.T) {
	ctx := Context{Role: models.RoleAdmin}
	insights := []models.InsightRecord{
		insight("b", models.SeverityHigh, 0.5, nil),
		insight("a", models.SeverityHigh, 0.9, nil),
	}
	ranked := SelectForAudience(insights, ctx, Options{})
	assert.Equal(t, "a", ranked[0].ID)
	assert.Equal(t, "b", ranked[1].ID)
}

func TestStableOrderForTies(t *testing.T) {
	ctx := Context{Role: models.RoleAdmin}
	insights := []models.InsightRecord{
		insight("first", models.SeverityHigh, 0.5, nil),
		insight("second", models.SeverityHigh, 0.5, nil),
		insight("third", models.SeverityHigh, 0.5, nil),
	}
	ranked := SelectForAudience(insights, ctx, Options{})
	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].ID)
	assert.Equal(t, "second", ranked[1].ID)
	assert.Equal(t, "third", ranked[2].ID)
}

func TestViewerTagBonus(t *testing.T) {
	ctx := Context{Role: models.RoleAdmin, Tags: []string{"finance"}}
	tagged := insight("tagged", models.SeverityHigh, 0.5, nil)
	tagged.Tags = []string{"finance"}
	plain := insight("plain", models.SeverityHigh, 0.6, nil)

	// The +2 tag bonus outweighs the 0.1 score edge (worth 1 point).
	ranked := SelectForAudience([]models.InsightRecord{plain, tagged}, ctx, Options{})
	assert.Equal(t, "tagged", ranked[0].ID)
}

func TestLimit(t *testing.T) {
	ctx := Context{Role: models.RoleAdmin}
	insights := []models.InsightRecord{
		insight("a", models.SeverityHigh, 0.9, nil),
		insight("b", models.SeverityHigh, 0.8, nil),
		insight("c", models.SeverityHigh, 0.7, nil),
	}
	ranked := SelectForAudience(insights, ctx, Options{Limit: 2})
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ID)
}

func TestGroupByCategory(t *testing.T) {
	a := insight("a", models.SeverityHigh, 0.9, nil)
	a.Category = models.CategoryFinance
	b := insight("b", models.SeverityLow, 0.1, nil)
	b.Category = models.CategoryCustomer
	c := insight("c", models.SeverityLow, 0.2, nil)
	c.Category = models.CategoryFinance

	groups := GroupByCategory([]models.InsightRecord{a, b, c})
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[models.CategoryFinance][0].ID)
	assert.Equal(t, "c", groups[models.CategoryFinance][1].ID)
	assert.Equal(t, "b", groups[models.CategoryCustomer][0].ID)
}

func TestTopBySeverity(t *testing.T) {
	insights := []models.InsightRecord{
		insight("low", models.SeverityLow, 0.9, nil),
		insight("h1", models.SeverityHigh, 0.4, nil),
		insight("h2", models.SeverityHigh, 0.8, nil),
	}

	top := TopBySeverity(insights, models.SeverityHigh, Options{})
	require.Len(t, top, 2)
	assert.Equal(t, "h2", top[0].ID)
	assert.Equal(t, "h1", top[1].ID)

	limited := TopBySeverity(insights, models.SeverityHigh, Options{Limit: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, "h2", limited[0].ID)
}
