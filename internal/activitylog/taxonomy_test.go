package activitylog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func categoryValues(categories []Category) []string {
	values := make([]string, 0, len(categories))
	for _, category := range categories {
		values = append(values, category.Value)
	}
	return values
}

func typeValues(types []ActivityType) []string {
	values := make([]string, 0, len(types))
	for _, activityType := range types {
		values = append(values, activityType.Value)
	}
	return values
}

func TestResolveCategoriesHonoursPermissions(t *testing.T) {
	visible := ResolveCategories(DefaultCategories, Permissions{PermissionFood: false, PermissionUtility: true})
	values := categoryValues(visible)

	require.Contains(t, values, "payment")
	require.Contains(t, values, "utility")
	require.NotContains(t, values, "food")
	require.NotContains(t, values, "issue", "missing permission keys hide the category")
}

func TestResolveTypesHidesTypesOfHiddenCategories(t *testing.T) {
	visible := ResolveCategories(DefaultCategories, Permissions{PermissionFood: false})
	types := typeValues(ResolveTypes(DefaultActivityTypes, visible))

	require.NotContains(t, types, "expense_create")
	require.NotContains(t, types, "food_order_create")
	require.Contains(t, types, "login")
	require.Contains(t, types, "create", "generic types are always visible")
	require.Contains(t, types, "export")
}

func TestResolveTypesWithEveryPermission(t *testing.T) {
	taxonomy := NewTaxonomy(Permissions{PermissionFood: true, PermissionUtility: true, PermissionIssue: true})

	require.Len(t, taxonomy.Categories, len(DefaultCategories))
	require.Len(t, taxonomy.Types, len(DefaultActivityTypes))
	require.True(t, taxonomy.HasType("expense_create"))
}

func TestTaxonomyPruneClearsHiddenSelections(t *testing.T) {
	taxonomy := NewTaxonomy(Permissions{})
	buf := EditBuffer{ActivityCategory: "food", ActivityType: "expense_create", UserType: "admin"}

	cleared := taxonomy.Prune(&buf)

	require.ElementsMatch(t, []string{FacetActivityCategory, FacetActivityType}, cleared)
	require.Empty(t, buf.ActivityCategory)
	require.Empty(t, buf.ActivityType)
	require.Equal(t, "admin", buf.UserType)
}

func TestTaxonomyPruneKeepsVisibleSelections(t *testing.T) {
	taxonomy := NewTaxonomy(Permissions{})
	buf := EditBuffer{ActivityCategory: "payment", ActivityType: "update"}

	require.Empty(t, taxonomy.Prune(&buf))
	require.Equal(t, "payment", buf.ActivityCategory)
	require.Equal(t, "update", buf.ActivityType)
}

func TestEngineSetPermissionsPrunesDraftOnly(t *testing.T) {
	source := &fakeSource{page: pageOf(1, 1)}
	engine := New(source, WithPermissions(Permissions{PermissionFood: true}))

	cleared := engine.SetDraft(EditBuffer{ActivityCategory: "food", ActivityType: "expense_create"})
	require.Empty(t, cleared)

	require.NoError(t, engine.ApplyDraft(t.Context()))
	require.Equal(t, "food", engine.Snapshot().Filters.ActivityCategory)

	engine.SetDraft(EditBuffer{ActivityCategory: "food", ActivityType: "expense_create"})
	cleared = engine.SetPermissions(Permissions{PermissionFood: false})
	require.ElementsMatch(t, []string{FacetActivityCategory, FacetActivityType}, cleared)

	snap := engine.Snapshot()
	require.Empty(t, snap.Draft.ActivityCategory)
	require.Empty(t, snap.Draft.ActivityType)
	require.Equal(t, "food", snap.Filters.ActivityCategory, "committed filters change only on the next apply")
	require.False(t, snap.Taxonomy.HasCategory("food"))
}

func TestKnownCatalogValues(t *testing.T) {
	require.True(t, KnownCategory("food"))
	require.True(t, KnownType("expense_create"))
	require.False(t, KnownCategory("archive"))
	require.False(t, KnownType("legacy_import"))
	require.False(t, KnownType(""))
}

func TestTaxonomyHiddenNamesInvisibleFacets(t *testing.T) {
	taxonomy := NewTaxonomy(Permissions{PermissionFood: false})

	require.Equal(t, []string{FacetActivityCategory, FacetActivityType},
		taxonomy.Hidden(Facets{ActivityCategory: "food", ActivityType: "expense_create"}))
	require.Empty(t, taxonomy.Hidden(Facets{ActivityCategory: "payment", ActivityType: "login"}))
}
