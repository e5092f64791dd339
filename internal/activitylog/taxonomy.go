package activitylog

// Permissions maps feature flags (for example "is_food_enabled") to whether the caller holds them.
type Permissions map[string]bool

// Category is one activity category of the taxonomy.
type Category struct {
	Value              string `json:"value"`
	Label              string `json:"label"`
	RequiredPermission string `json:"required_permission,omitempty"`
}

// ActivityType is one activity type of the taxonomy. Types without a category are generic.
type ActivityType struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
}

// Feature permission keys gating optional modules of the residence platform.
const (
	PermissionUtility = "is_utility_enabled"
	PermissionIssue   = "is_issue_enabled"
	PermissionFood    = "is_food_enabled"
)

// DefaultCategories is the built-in category catalog.
var DefaultCategories = []Category{
	{Value: "authentication", Label: "Authentication"},
	{Value: "customer", Label: "Customer"},
	{Value: "room", Label: "Room"},
	{Value: "payment", Label: "Payment"},
	{Value: "utility", Label: "Utility", RequiredPermission: PermissionUtility},
	{Value: "issue", Label: "Issue", RequiredPermission: PermissionIssue},
	{Value: "food", Label: "Food & Expense", RequiredPermission: PermissionFood},
	{Value: "admin", Label: "Admin Management"},
	{Value: "system", Label: "System"},
}

// DefaultActivityTypes is the built-in activity type catalog.
var DefaultActivityTypes = []ActivityType{
	{Value: "create", Label: "Create"},
	{Value: "update", Label: "Update"},
	{Value: "delete", Label: "Delete"},
	{Value: "view", Label: "View"},
	{Value: "export", Label: "Export"},

	{Value: "login", Label: "Login", Category: "authentication"},
	{Value: "logout", Label: "Logout", Category: "authentication"},
	{Value: "password_change", Label: "Password Change", Category: "authentication"},

	{Value: "customer_register", Label: "Customer Register", Category: "customer"},
	{Value: "customer_update", Label: "Customer Update", Category: "customer"},

	{Value: "room_assign", Label: "Room Assign", Category: "room"},
	{Value: "room_vacate", Label: "Room Vacate", Category: "room"},

	{Value: "payment_create", Label: "Payment Create", Category: "payment"},
	{Value: "payment_verify", Label: "Payment Verify", Category: "payment"},
	{Value: "payment_refund", Label: "Payment Refund", Category: "payment"},

	{Value: "utility_reading_create", Label: "Utility Reading", Category: "utility"},
	{Value: "utility_bill_generate", Label: "Utility Bill Generate", Category: "utility"},

	{Value: "issue_report", Label: "Issue Report", Category: "issue"},
	{Value: "issue_resolve", Label: "Issue Resolve", Category: "issue"},

	{Value: "food_order_create", Label: "Food Order", Category: "food"},
	{Value: "expense_create", Label: "Expense Create", Category: "food"},

	{Value: "admin_create", Label: "Admin Create", Category: "admin"},
	{Value: "role_change", Label: "Role Change", Category: "admin"},

	{Value: "logs_purge", Label: "Logs Purge", Category: "system"},
}

// ResolveCategories returns the categories visible under perms, preserving catalog order.
func ResolveCategories(catalog []Category, perms Permissions) []Category {
	visible := make([]Category, 0, len(catalog))
	for _, category := range catalog {
		if category.RequiredPermission == "" || perms[category.RequiredPermission] {
			visible = append(visible, category)
		}
	}
	return visible
}

// ResolveTypes returns the activity types whose owning category is visible. Generic types are always kept.
func ResolveTypes(catalog []ActivityType, visible []Category) []ActivityType {
	allowed := make(map[string]struct{}, len(visible))
	for _, category := range visible {
		allowed[category.Value] = struct{}{}
	}

	types := make([]ActivityType, 0, len(catalog))
	for _, activityType := range catalog {
		if activityType.Category == "" {
			types = append(types, activityType)
			continue
		}
		if _, ok := allowed[activityType.Category]; ok {
			types = append(types, activityType)
		}
	}
	return types
}

// KnownCategory reports whether value is in the built-in category catalog.
func KnownCategory(value string) bool {
	for _, category := range DefaultCategories {
		if category.Value == value {
			return true
		}
	}
	return false
}

// KnownType reports whether value is in the built-in activity type catalog.
func KnownType(value string) bool {
	for _, activityType := range DefaultActivityTypes {
		if activityType.Value == value {
			return true
		}
	}
	return false
}

// Taxonomy is the permission-filtered view of the category and type catalogs.
type Taxonomy struct {
	Categories []Category
	Types      []ActivityType
}

// NewTaxonomy resolves the built-in catalogs against perms.
func NewTaxonomy(perms Permissions) Taxonomy {
	return ResolveTaxonomy(DefaultCategories, DefaultActivityTypes, perms)
}

// ResolveTaxonomy resolves arbitrary catalogs against perms.
func ResolveTaxonomy(categories []Category, types []ActivityType, perms Permissions) Taxonomy {
	visible := ResolveCategories(categories, perms)
	return Taxonomy{
		Categories: visible,
		Types:      ResolveTypes(types, visible),
	}
}

// HasCategory reports whether value is a visible category.
func (t Taxonomy) HasCategory(value string) bool {
	for _, category := range t.Categories {
		if category.Value == value {
			return true
		}
	}
	return false
}

// HasType reports whether value is a visible activity type.
func (t Taxonomy) HasType(value string) bool {
	for _, activityType := range t.Types {
		if activityType.Value == value {
			return true
		}
	}
	return false
}

// Hidden names the category and type facets of f that are not visible.
func (t Taxonomy) Hidden(f Facets) []string {
	var hidden []string
	if f.ActivityCategory != "" && !t.HasCategory(f.ActivityCategory) {
		hidden = append(hidden, FacetActivityCategory)
	}
	if f.ActivityType != "" && !t.HasType(f.ActivityType) {
		hidden = append(hidden, FacetActivityType)
	}
	return hidden
}

// Prune clears from buf any selected category or type that is no longer visible and
// returns the names of the cleared facets.
func (t Taxonomy) Prune(buf *EditBuffer) []string {
	if buf == nil {
		return nil
	}

	var cleared []string
	if buf.ActivityCategory != "" && !t.HasCategory(buf.ActivityCategory) {
		buf.ActivityCategory = ""
		cleared = append(cleared, FacetActivityCategory)
	}
	if buf.ActivityType != "" && !t.HasType(buf.ActivityType) {
		buf.ActivityType = ""
		cleared = append(cleared, FacetActivityType)
	}
	return cleared
}
