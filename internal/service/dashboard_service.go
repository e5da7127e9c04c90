package service

import (
	"time"

	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
)

type DashboardService interface {
	GetStockMovement(rangeKey string) ([]repository.StockMovementData, error)
	GetDashboardStats(rangeKey string) (*DashboardStats, error)
}

// DashboardStats combines the catalog overview with the money flow of a range
type DashboardStats struct {
	Range     string                       `json:"range"`
	From      time.Time                    `json:"from"`
	To        time.Time                    `json:"to"`
	Inventory *repository.DashboardStats   `json:"inventory"`
	Financial *repository.FinancialSummary `json:"financial"`
	Customers int64                        `json:"customers"`
	Vendors   int64                        `json:"vendors"`
}

// Ranges the dashboard filter offers. The default is 7d.
var ranges = map[string]func(time.Time) time.Time{
	"7d":  func(t time.Time) time.Time { return t.AddDate(0, 0, -7) },
	"1m":  func(t time.Time) time.Time { return t.AddDate(0, -1, 0) },
	"3m":  func(t time.Time) time.Time { return t.AddDate(0, -3, 0) },
	"6m":  func(t time.Time) time.Time { return t.AddDate(0, -6, 0) },
	"12m": func(t time.Time) time.Time { return t.AddDate(-1, 0, 0) },
}

// RangeStart returns the start of the range ending at now
func RangeStart(key string, now time.Time) (time.Time, error) {
	if key == "" {
		key = "7d"
	}
	start, ok := ranges[key]
	if !ok {
		return time.Time{}, ErrInvalidRange
	}
	return start(now), nil
}

type dashboardService struct {
	txRepo            repository.TransactionRepository
	contactRepo       repository.ContactRepository
	lowStockThreshold int
	now               func() time.Time
}

func NewDashboardService(txRepo repository.TransactionRepository, contactRepo repository.ContactRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{
		txRepo:            txRepo,
		contactRepo:       contactRepo,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

func (s *dashboardService) GetStockMovement(rangeKey string) ([]repository.StockMovementData, error) {
	endDate := s.now()
	startDate, err := RangeStart(rangeKey, endDate)
	if err != nil {
		return nil, err
	}
	return s.txRepo.GetStockMovement(startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(rangeKey string) (*DashboardStats, error) {
	endDate := s.now()
	startDate, err := RangeStart(rangeKey, endDate)
	if err != nil {
		return nil, err
	}
	if rangeKey == "" {
		rangeKey = "7d"
	}

	inventory, err := s.txRepo.GetDashboardStats(s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	financial, err := s.txRepo.GetFinancialSummary(startDate, endDate)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.CountByType()
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Range:     rangeKey,
		From:      startDate,
		To:        endDate,
		Inventory: inventory,
		Financial: financial,
		Customers: contacts[model.ContactCustomer],
		Vendors:   contacts[model.ContactVendor],
	}, nil
}
