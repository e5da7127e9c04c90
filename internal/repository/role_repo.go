package repository

import (
	"errors"

	"autoparts-inventory/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByID(id uint) (*model.Role, error)
	FindByCode(code string) (*model.Role, error)
	Create(role *model.Role) error
	SeedDefaults() error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.Preload("Privileges").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	if err := r.db.Preload("Privileges").Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) Create(role *model.Role) error {
	return r.db.Create(role).Error
}

// SeedDefaults creates the default roles and (re)attaches their privilege
// sets. Privileges must be seeded first.
func (r *roleRepo) SeedDefaults() error {
	var all []model.Privilege
	if err := r.db.Find(&all).Error; err != nil {
		return err
	}

	grants := map[string][]model.Privilege{
		model.RoleMasterAdmin: all,
		model.RoleAdmin:       model.AdminPrivileges(all),
		model.RoleClerk:       model.ClerkPrivileges(all),
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, def := range model.DefaultRoles {
			var role model.Role
			err := tx.Where("code = ?", def.Code).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = def
				if err := tx.Create(&role).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			if err := tx.Model(&role).Association("Privileges").Replace(grants[def.Code]); err != nil {
				return err
			}
		}
		return nil
	})
}
