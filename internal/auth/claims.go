package auth

// tokenClaims carries the role-bearing claims inspected during verification.
// app_metadata is assigned server-side and cannot be edited by the user;
// the top-level role claim is user-editable and survives only as a
// transitional fallback.
type tokenClaims struct {
	Role        string `json:"role"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

// resolveRole derives the caller's role from token claims, preferring the
// protected app_metadata claim over the legacy top-level claim.
//
// TODO: drop the legacy top-level fallback once existing admin accounts have
// their app_metadata.role claim backfilled.
func resolveRole(claims tokenClaims) Role {
	switch Role(claims.AppMetadata.Role) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	}

	if Role(claims.Role) == RoleAdmin {
		return RoleAdmin
	}

	return RoleUser
}
