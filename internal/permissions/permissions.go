// Package permissions resolves a user's role to the set of permissions it
// grants.
package permissions

import (
	"sort"

	"github.com/fleetdeck/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permission names an action a user is allowed to perform.
type Permission string

const (
	OrganizationsManage Permission = "organizations:manage"
	RolesManage         Permission = "roles:manage"
	VehiclesRead        Permission = "vehicles:read"
	VehiclesWrite       Permission = "vehicles:write"
	DriversRead         Permission = "drivers:read"
	DriversWrite        Permission = "drivers:write"
	TripsRead           Permission = "trips:read"
	TripsWrite          Permission = "trips:write"
	MaintenanceRead     Permission = "maintenance:read"
	MaintenanceWrite    Permission = "maintenance:write"
	FinanceRead         Permission = "finance:read"
	FinanceWrite        Permission = "finance:write"
	CategoriesRead      Permission = "categories:read"
	CategoriesWrite     Permission = "categories:write"
)

// All returns every defined permission.
func All() []Permission {
	return []Permission{
		OrganizationsManage,
		RolesManage,
		VehiclesRead, VehiclesWrite,
		DriversRead, DriversWrite,
		TripsRead, TripsWrite,
		MaintenanceRead, MaintenanceWrite,
		FinanceRead, FinanceWrite,
		CategoriesRead, CategoriesWrite,
	}
}

// SuperAdmin is the role value that grants the union of all built-in
// permissions.
const SuperAdmin = "superadmin"

// builtinRoles maps the built-in role names to their permission lists.
var builtinRoles = map[string][]Permission{
	"admin": {
		RolesManage,
		VehiclesRead, VehiclesWrite,
		DriversRead, DriversWrite,
		TripsRead, TripsWrite,
		MaintenanceRead, MaintenanceWrite,
		FinanceRead, FinanceWrite,
		CategoriesRead, CategoriesWrite,
	},
	"manager": {
		VehiclesRead, VehiclesWrite,
		DriversRead, DriversWrite,
		TripsRead, TripsWrite,
		MaintenanceRead, MaintenanceWrite,
		CategoriesRead,
	},
	"finance": {
		FinanceRead, FinanceWrite,
		CategoriesRead, CategoriesWrite,
		TripsRead,
	},
	"operator": {
		TripsRead, TripsWrite,
		VehiclesRead,
		DriversRead,
	},
	"viewer": {
		VehiclesRead,
		DriversRead,
		TripsRead,
		MaintenanceRead,
		FinanceRead,
		CategoriesRead,
	},
}

// Set is a resolved permission set.
type Set map[Permission]bool

// NewSet builds a Set from a permission list.
func NewSet(permissions []Permission) Set {
	set := make(Set, len(permissions))
	for _, p := range permissions {
		set[p] = true
	}

	return set
}

// Has reports whether the set contains the permission.
func (s Set) Has(permission Permission) bool {
	return s[permission]
}

// Slice returns the permissions of the set in sorted order.
func (s Set) Slice() []Permission {
	permissions := make([]Permission, 0, len(s))
	for p := range s {
		permissions = append(permissions, p)
	}

	sort.Slice(permissions, func(i, j int) bool { return permissions[i] < permissions[j] })
	return permissions
}

// Resolve returns the permission set for a role value.
//
//   - SuperAdmin resolves to the union of all built-in permissions.
//   - A built-in role name resolves to its fixed permission list.
//   - A UUID resolves to the organization's custom role with that ID.
//
// Everything else, including a custom role that does not exist, resolves to
// the empty set. Resolution fails closed and never returns an error to the
// caller.
func Resolve(db *gorm.DB, organizationID uuid.UUID, role string) Set {
	if role == SuperAdmin {
		all := Set{}
		all[OrganizationsManage] = true
		for _, permissions := range builtinRoles {
			for _, p := range permissions {
				all[p] = true
			}
		}

		return all
	}

	if permissions, ok := builtinRoles[role]; ok {
		return NewSet(permissions)
	}

	id, err := uuid.Parse(role)
	if err != nil {
		return Set{}
	}

	var customRole models.CustomRole
	err = db.
		Where(&models.CustomRole{OrganizationID: organizationID}).
		First(&customRole, id).Error
	if err != nil {
		return Set{}
	}

	permissions := make([]Permission, 0, len(customRole.Permissions))
	for _, p := range customRole.Permissions {
		permissions = append(permissions, Permission(p))
	}

	return NewSet(permissions)
}
