package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
//
// There is deliberately no hidden or override role: compliance preconditions
// (consent gate, draft isolation) are not bypassable by any role, so the
// role set stays small and fully visible.
const (
	RoleClient     = "client"
	RoleReader     = "reader"
	RoleSupport    = "support"
	RoleSuperAdmin = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }
