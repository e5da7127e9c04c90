package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, ADMIN, CLERK
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleClerk       = "CLERK"
)

var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Catalog, contacts, documents and reports; no user management",
	},
	{
		Code:        RoleClerk,
		Name:        "Counter Clerk",
		Description: "Sells over the counter and looks up the catalog",
	},
}

// clerkPrivileges is the fixed privilege set of the CLERK role
var clerkPrivileges = map[string]bool{
	"product:view":       true,
	"contact:view":       true,
	"contact:create":     true,
	"transaction:view":   true,
	"transaction:create": true,
	"dashboard:view":     true,
}

// ClerkPrivileges filters all down to the CLERK privilege set
func ClerkPrivileges(all []Privilege) []Privilege {
	out := make([]Privilege, 0, len(clerkPrivileges))
	for _, p := range all {
		if clerkPrivileges[p.Code] {
			out = append(out, p)
		}
	}
	return out
}
