package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole_Precedence(t *testing.T) {
	tests := []struct {
		label    string
		expected RoleClass
	}{
		{"Super Admin", RoleSuperAdmin},
		{"superuser", RoleSuperAdmin},
		{"Finance Manager", RoleFinanceManager},
		{"finance-manager", RoleFinanceManager},
		{"Senior Manager, Finance", RoleFinanceManager},
		{"Finance", RoleFinance},
		{"Finance Analyst", RoleFinance},
		{"Admin", RoleAdmin},
		{"Platform Administrator", RoleAdmin},
		{"Operations Lead", RoleOpsManager},
		{"Ops", RoleOpsManager},
		{"Fleet Manager", RoleOpsManager},
		{"Customer Support", RoleSupport},
		{"unknown-title", RoleViewer},
		{"", RoleViewer},
		{"   ", RoleViewer},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ResolveRole(tt.label), "label %q", tt.label)
	}
}

func TestResolveRole_SuperBeatsAdmin(t *testing.T) {
	// A label carrying both tokens must take the more specific class.
	assert.Equal(t, RoleSuperAdmin, ResolveRole("Super Administrator"))
}

func TestResolveRole_FinanceManagerBeatsFinance(t *testing.T) {
	// Word order must not matter, only containment and rule order.
	assert.Equal(t, RoleFinanceManager, ResolveRole("Manager of Finance"))
	assert.Equal(t, RoleFinanceManager, ResolveRole("FINANCE MANAGER"))
}

func TestHasPermission_StaticGrants(t *testing.T) {
	assert.True(t, HasPermission(RoleSuperAdmin, PermLicensesIssue))
	assert.True(t, HasPermission(RoleFinanceManager, PermLicensesIssue))
	assert.False(t, HasPermission(RoleFinance, PermLicensesIssue))
	assert.False(t, HasPermission(RoleViewer, PermLicensesIssue))
}

func TestHasPermission_ViewAllImpliesReadsOnly(t *testing.T) {
	// Super-admin holds only the umbrella analytics grant, not the
	// individual view_* keys, yet must answer true for all of them.
	assert.True(t, HasPermission(RoleSuperAdmin, PermViewCustomerMetrics))
	assert.True(t, HasPermission(RoleSuperAdmin, PermViewVendorMetrics))
	assert.True(t, HasPermission(RoleSuperAdmin, PermViewRevenueMetrics))
	assert.True(t, HasPermission(RoleSuperAdmin, PermViewUsageMetrics))
}

func TestHasGrant_ViewAllOnlyRole(t *testing.T) {
	// A role granted nothing but the umbrella analytics key reads all
	// metrics yet holds no write permission whatsoever.
	grants := map[string]bool{PermViewAllAnalytics: true}
	assert.True(t, HasGrant(grants, PermViewCustomerMetrics))
	assert.True(t, HasGrant(grants, PermViewUsageMetrics))
	assert.False(t, HasGrant(grants, PermLicensesIssue))
	assert.False(t, HasGrant(grants, PermLicensesRevoke))
	assert.False(t, HasGrant(grants, PermUsersManage))
}

func TestHasPermission_UnknownKeyIsFalse(t *testing.T) {
	assert.False(t, HasPermission(RoleSuperAdmin, "no_such_permission"))
	assert.False(t, HasPermission(RoleViewer, "no_such_permission"))
}

func TestHasPermission_UnknownClassHasNoGrants(t *testing.T) {
	assert.False(t, HasPermission(RoleClass("ghost"), PermViewUsageMetrics))
	assert.NotNil(t, Grants(RoleClass("ghost")))
	assert.Empty(t, Grants(RoleClass("ghost")))
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	assert.True(t, HasAnyPermission(RoleFinance, PermLicensesIssue, PermViewRevenueMetrics))
	assert.False(t, HasAnyPermission(RoleFinance, PermLicensesIssue, PermRolesManage))
	assert.True(t, HasAllPermissions(RoleFinanceManager, PermLicensesIssue, PermOnboardingReview))
	assert.False(t, HasAllPermissions(RoleFinanceManager, PermLicensesIssue, PermRolesManage))
}

func TestPermissionInPortal(t *testing.T) {
	assert.True(t, PermissionInPortal(PortalAdmin, PermLicensesIssue))
	assert.False(t, PermissionInPortal(PortalCustomer, PermLicensesIssue))
	assert.True(t, PermissionInPortal(PortalCustomer, PermVesselsManage))
	assert.False(t, PermissionInPortal(PortalVendor, PermVesselsManage))
	assert.False(t, PermissionInPortal("no-such-portal", PermLicensesIssue))
}

func TestGrantedPermissions_StableAndNeverNil(t *testing.T) {
	assert.NotNil(t, GrantedPermissions(RoleViewer))
	first := GrantedPermissions(RoleAdmin)
	second := GrantedPermissions(RoleAdmin)
	assert.Equal(t, first, second)
	assert.Contains(t, first, PermLicensesIssue)
}
