package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	{Code: "category:create", Name: "Create Category"},
	{Code: "category:update", Name: "Update Category"},
	{Code: "category:delete", Name: "Delete Category"},
	// Customers and vendors
	{Code: "contact:view", Name: "View Contact"},
	{Code: "contact:create", Name: "Create Contact"},
	{Code: "contact:update", Name: "Update Contact"},
	{Code: "contact:delete", Name: "Delete Contact"},
	// Purchases and sales
	{Code: "transaction:view", Name: "View Transaction"},
	{Code: "transaction:create", Name: "Create Transaction"},
	{Code: "transaction:update", Name: "Update Transaction"},
	{Code: "transaction:delete", Name: "Delete Transaction"},
	// Dashboard and exports
	{Code: "dashboard:view", Name: "View Dashboard"},
	{Code: "report:export", Name: "Export Reports"},
}

// adminExcluded are the privileges the ADMIN role does not receive
var adminExcluded = map[string]bool{
	"user:create":           true,
	"user:update":           true,
	"user:delete":           true,
	"user:update_privilege": true,
}

// AdminPrivileges filters out user management privileges
func AdminPrivileges(all []Privilege) []Privilege {
	out := make([]Privilege, 0, len(all))
	for _, p := range all {
		if !adminExcluded[p.Code] {
			out = append(out, p)
		}
	}
	return out
}
