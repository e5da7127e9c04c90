package repository

import (
	"autoparts-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(contact *model.Contact) error
	FindAll(contactType model.ContactType) ([]model.Contact, error)
	FindByID(id uuid.UUID) (*model.Contact, error)
	Update(contact *model.Contact) error
	Delete(id uuid.UUID) error
	CountByType() (map[model.ContactType]int64, error)
}

type contactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db}
}

func (r *contactRepo) Create(contact *model.Contact) error {
	return r.db.Create(contact).Error
}

// FindAll lists contacts of contactType, or every contact when it is empty
func (r *contactRepo) FindAll(contactType model.ContactType) ([]model.Contact, error) {
	var contacts []model.Contact
	q := r.db.Order("name ASC")
	if contactType != "" {
		q = q.Where("type = ?", contactType)
	}
	err := q.Find(&contacts).Error
	return contacts, err
}

func (r *contactRepo) FindByID(id uuid.UUID) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) Update(contact *model.Contact) error {
	return r.db.Save(contact).Error
}

func (r *contactRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Contact{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contactRepo) CountByType() (map[model.ContactType]int64, error) {
	var rows []struct {
		Type  model.ContactType
		Count int64
	}
	err := r.db.Model(&model.Contact{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := map[model.ContactType]int64{model.ContactCustomer: 0, model.ContactVendor: 0}
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}
