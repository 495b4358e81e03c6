package auth

import "testing"

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name     string
		metaRole string
		topRole  string
		want     Role
	}{
		{"admin via app_metadata", "admin", "", RoleAdmin},
		{"user via app_metadata", "user", "", RoleUser},
		{"app_metadata wins over top-level", "user", "admin", RoleUser},
		{"legacy top-level admin", "", "admin", RoleAdmin},
		{"legacy top-level user", "", "user", RoleUser},
		{"no role claims", "", "", RoleUser},
		{"unknown app_metadata falls through to top-level", "superuser", "admin", RoleAdmin},
		{"unknown claims default to user", "superuser", "wizard", RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims tokenClaims
			claims.Role = tt.topRole
			claims.AppMetadata.Role = tt.metaRole

			got := resolveRole(claims)
			if got != tt.want {
				t.Errorf("resolveRole(meta=%q, top=%q) = %q, want %q", tt.metaRole, tt.topRole, got, tt.want)
			}
		})
	}
}
