package service

import (
	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContactService interface {
	GetContacts(contactType model.ContactType) ([]model.Contact, error)
	GetContact(id uuid.UUID) (*model.Contact, error)
	CreateContact(req *ContactRequest, actor Actor) (*model.Contact, error)
	UpdateContact(id uuid.UUID, req *ContactRequest, actor Actor) (*model.Contact, error)
	DeleteContact(id uuid.UUID, actor Actor) error
}

type ContactRequest struct {
	Type      model.ContactType `json:"type" validate:"required,oneof=CUSTOMER VENDOR"`
	Name      string            `json:"name" validate:"required,max=255"`
	Email     string            `json:"email" validate:"omitempty,email"`
	Phone     string            `json:"phone" validate:"max=30"`
	Address   string            `json:"address"`
	TaxNumber string            `json:"tax_number" validate:"max=50"`
}

type contactService struct {
	contactRepo repository.ContactRepository
	log         *zap.Logger
}

func NewContactService(repo repository.ContactRepository, log *zap.Logger) ContactService {
	return &contactService{contactRepo: repo, log: log}
}

func (s *contactService) GetContacts(contactType model.ContactType) ([]model.Contact, error) {
	return s.contactRepo.FindAll(contactType)
}

func (s *contactService) GetContact(id uuid.UUID) (*model.Contact, error) {
	contact, err := s.contactRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrContactNotFound)
	}
	return contact, nil
}

func (s *contactService) CreateContact(req *ContactRequest, actor Actor) (*model.Contact, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	contact := &model.Contact{}
	req.apply(contact)
	contact.CreatedBy = actor.ID
	contact.UpdatedBy = actor.ID

	if err := s.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	s.log.Info("contact created", zap.String("type", string(contact.Type)), zap.String("name", contact.Name))
	return contact, nil
}

func (s *contactService) UpdateContact(id uuid.UUID, req *ContactRequest, actor Actor) (*model.Contact, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	contact, err := s.contactRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrContactNotFound)
	}
	req.apply(contact)
	contact.UpdatedBy = actor.ID

	if err := s.contactRepo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact soft deletes, so documents issued to the contact still show it
func (s *contactService) DeleteContact(id uuid.UUID, actor Actor) error {
	if err := s.contactRepo.Delete(id); err != nil {
		return notFound(err, ErrContactNotFound)
	}
	s.log.Info("contact deleted", zap.String("id", id.String()), zap.String("by", actor.ID))
	return nil
}

func (r *ContactRequest) apply(c *model.Contact) {
	c.Type = r.Type
	c.Name = r.Name
	c.Email = r.Email
	c.Phone = r.Phone
	c.Address = r.Address
	c.TaxNumber = r.TaxNumber
}
