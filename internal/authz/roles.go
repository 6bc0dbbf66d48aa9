package authz

import "strings"

// RoleClass is the canonical classification of a free-text role label.
type RoleClass string

const (
	RoleSuperAdmin     RoleClass = "super_admin"
	RoleAdmin          RoleClass = "admin"
	RoleFinanceManager RoleClass = "finance_manager"
	RoleFinance        RoleClass = "finance"
	RoleOpsManager     RoleClass = "ops_manager"
	RoleSupport        RoleClass = "support"
	RoleViewer         RoleClass = "viewer"
)

// Portal types scoping which permission keys are meaningful.
const (
	PortalAdmin    = "admin"
	PortalCustomer = "customer"
	PortalVendor   = "vendor"
)

// Permission keys. The view_* keys are the analytics/read grants implied
// by PermViewAllAnalytics; the rest are write-style and never implied.
const (
	PermLicensesIssue      = "licensesIssue"
	PermLicensesRevoke     = "licensesRevoke"
	PermCustomerOrgsManage = "customerOrgsManage"
	PermVendorOrgsManage   = "vendorOrgsManage"
	PermOnboardingReview   = "onboardingReview"
	PermUsersManage        = "usersManage"
	PermRolesManage        = "rolesManage"
	PermVesselsManage      = "vesselsManage"
	PermRFQsManage         = "rfqsManage"
	PermViewAllAnalytics   = "viewAllAnalytics"

	PermViewCustomerMetrics = "view_customer_metrics"
	PermViewVendorMetrics   = "view_vendor_metrics"
	PermViewRevenueMetrics  = "view_revenue_metrics"
	PermViewUsageMetrics    = "view_usage_metrics"
)

// viewPermissions is the closed set of read-style grants implied by
// PermViewAllAnalytics.
var viewPermissions = map[string]bool{
	PermViewCustomerMetrics: true,
	PermViewVendorMetrics:   true,
	PermViewRevenueMetrics:  true,
	PermViewUsageMetrics:    true,
}

type resolutionRule struct {
	matches func(label string) bool
	class   RoleClass
}

func containsAll(substrs ...string) func(string) bool {
	return func(label string) bool {
		for _, s := range substrs {
			if !strings.Contains(label, s) {
				return false
			}
		}
		return true
	}
}

// resolutionOrder is evaluated top to bottom; the order is part of the
// contract. A label matching "finance" and "manager" must classify as
// finance-manager, never bare finance, so the compound rule sits first.
var resolutionOrder = []resolutionRule{
	{containsAll("super"), RoleSuperAdmin},
	{containsAll("finance", "manager"), RoleFinanceManager},
	{containsAll("finance"), RoleFinance},
	{containsAll("admin"), RoleAdmin},
	{containsAll("operation"), RoleOpsManager},
	{containsAll("ops"), RoleOpsManager},
	{containsAll("manager"), RoleOpsManager},
	{containsAll("support"), RoleSupport},
}

// grantSets holds the static grants per class. Sets may be empty but are
// never nil.
var grantSets = map[RoleClass]map[string]bool{
	RoleSuperAdmin: {
		PermLicensesIssue:      true,
		PermLicensesRevoke:     true,
		PermCustomerOrgsManage: true,
		PermVendorOrgsManage:   true,
		PermOnboardingReview:   true,
		PermUsersManage:        true,
		PermRolesManage:        true,
		PermVesselsManage:      true,
		PermRFQsManage:         true,
		PermViewAllAnalytics:   true,
	},
	RoleAdmin: {
		PermLicensesIssue:       true,
		PermLicensesRevoke:      true,
		PermCustomerOrgsManage:  true,
		PermVendorOrgsManage:    true,
		PermOnboardingReview:    true,
		PermUsersManage:         true,
		PermViewCustomerMetrics: true,
		PermViewVendorMetrics:   true,
		PermViewUsageMetrics:    true,
	},
	RoleFinanceManager: {
		PermLicensesIssue:      true,
		PermOnboardingReview:   true,
		PermCustomerOrgsManage: true,
		PermVendorOrgsManage:   true,
		PermViewRevenueMetrics: true,
		PermViewUsageMetrics:   true,
	},
	RoleFinance: {
		PermViewRevenueMetrics: true,
		PermViewUsageMetrics:   true,
	},
	RoleOpsManager: {
		PermOnboardingReview: true,
		PermUsersManage:      true,
		PermVesselsManage:    true,
		PermRFQsManage:       true,
		PermViewUsageMetrics: true,
	},
	RoleSupport: {
		PermViewCustomerMetrics: true,
		PermViewVendorMetrics:   true,
	},
	RoleViewer: {},
}

// portalVocabulary is the closed permission vocabulary per portal.
var portalVocabulary = map[string]map[string]bool{
	PortalAdmin: {
		PermLicensesIssue:       true,
		PermLicensesRevoke:      true,
		PermCustomerOrgsManage:  true,
		PermVendorOrgsManage:    true,
		PermOnboardingReview:    true,
		PermUsersManage:         true,
		PermRolesManage:         true,
		PermViewAllAnalytics:    true,
		PermViewCustomerMetrics: true,
		PermViewVendorMetrics:   true,
		PermViewRevenueMetrics:  true,
		PermViewUsageMetrics:    true,
	},
	PortalCustomer: {
		PermUsersManage:        true,
		PermVesselsManage:      true,
		PermRFQsManage:         true,
		PermViewRevenueMetrics: true,
		PermViewUsageMetrics:   true,
	},
	PortalVendor: {
		PermUsersManage:      true,
		PermRFQsManage:       true,
		PermViewUsageMetrics: true,
	},
}

func normalize(label string) string {
	label = strings.ToLower(label)
	label = strings.ReplaceAll(label, " ", "")
	label = strings.ReplaceAll(label, "-", "")
	label = strings.ReplaceAll(label, "_", "")
	return strings.TrimSpace(label)
}

// ResolveRole classifies a free-text role label. Unknown labels never
// error; they fall through to the least-privileged class.
func ResolveRole(rawLabel string) RoleClass {
	label := normalize(rawLabel)
	for _, rule := range resolutionOrder {
		if rule.matches(label) {
			return rule.class
		}
	}
	return RoleViewer
}

// Grants returns the static grant set for a class. The result is never
// nil, even for unknown classes.
func Grants(class RoleClass) map[string]bool {
	grants, ok := grantSets[class]
	if !ok {
		return map[string]bool{}
	}
	return grants
}

// GrantedPermissions returns the grant set as a stable-order slice for
// API responses.
func GrantedPermissions(class RoleClass) []string {
	grants := Grants(class)
	perms := make([]string, 0, len(grants))
	for _, p := range []string{
		PermLicensesIssue, PermLicensesRevoke, PermCustomerOrgsManage,
		PermVendorOrgsManage, PermOnboardingReview, PermUsersManage,
		PermRolesManage, PermVesselsManage, PermRFQsManage,
		PermViewAllAnalytics, PermViewCustomerMetrics, PermViewVendorMetrics,
		PermViewRevenueMetrics, PermViewUsageMetrics,
	} {
		if grants[p] {
			perms = append(perms, p)
		}
	}
	return perms
}

// HasGrant evaluates a permission against an explicit grant set. A set
// holding PermViewAllAnalytics implicitly holds every view_* grant, but
// never any write-style permission. Unknown keys answer false.
func HasGrant(grants map[string]bool, permission string) bool {
	if grants[permission] {
		return true
	}
	if grants[PermViewAllAnalytics] && viewPermissions[permission] {
		return true
	}
	return false
}

// HasPermission reports whether the class grants the permission.
func HasPermission(class RoleClass, permission string) bool {
	return HasGrant(Grants(class), permission)
}

// HasAnyPermission short-circuits on the first granted permission.
func HasAnyPermission(class RoleClass, permissions ...string) bool {
	for _, p := range permissions {
		if HasPermission(class, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions short-circuits on the first missing permission.
func HasAllPermissions(class RoleClass, permissions ...string) bool {
	for _, p := range permissions {
		if !HasPermission(class, p) {
			return false
		}
	}
	return true
}

// PermissionInPortal reports whether the key is part of the portal's
// closed vocabulary.
func PermissionInPortal(portal, permission string) bool {
	vocab, ok := portalVocabulary[portal]
	if !ok {
		return false
	}
	return vocab[permission]
}

// OrgManagePermission maps an organization type to the grant required to
// administer organizations of that type.
func OrgManagePermission(orgType string) string {
	if orgType == "vendor" {
		return PermVendorOrgsManage
	}
	return PermCustomerOrgsManage
}
