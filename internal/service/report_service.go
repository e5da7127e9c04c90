package service

import (
	"io"

	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/report"
	"autoparts-inventory/internal/repository"
)

type ReportService interface {
	ExportProducts(w io.Writer) error
	ExportContacts(w io.Writer, contactType model.ContactType) error
	ExportTransactions(w io.Writer, filter repository.TransactionFilter) error
}

type reportService struct {
	productRepo repository.ProductRepository
	contactRepo repository.ContactRepository
	txRepo      repository.TransactionRepository
	opts        []report.Option
}

func NewReportService(
	productRepo repository.ProductRepository,
	contactRepo repository.ContactRepository,
	txRepo repository.TransactionRepository,
	opts ...report.Option,
) ReportService {
	return &reportService{
		productRepo: productRepo,
		contactRepo: contactRepo,
		txRepo:      txRepo,
		opts:        opts,
	}
}

func (s *reportService) ExportProducts(w io.Writer) error {
	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return err
	}
	return report.NewWriter(w, s.opts...).Products(products)
}

func (s *reportService) ExportContacts(w io.Writer, contactType model.ContactType) error {
	contacts, err := s.contactRepo.FindAll(contactType)
	if err != nil {
		return err
	}
	return report.NewWriter(w, s.opts...).Contacts(contacts)
}

func (s *reportService) ExportTransactions(w io.Writer, filter repository.TransactionFilter) error {
	transactions, err := s.txRepo.FindAll(filter)
	if err != nil {
		return err
	}
	return report.NewWriter(w, s.opts...).Transactions(transactions)
}
