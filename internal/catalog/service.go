package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lumiforge/cutroom-backend/internal/config"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	"gopkg.in/yaml.v3"
)

// Service реализует бизнес-логику для каталога пакетов
type Service struct {
	db             ydb.Database
	feePercent     int
	advancePercent int
}

// NewService создает новый catalog сервис
func NewService(db ydb.Database, cfg *config.Config) *Service {
	return &Service{
		db:             db,
		feePercent:     cfg.EditorFeePercent,
		advancePercent: cfg.AdvancePercent,
	}
}

// catalogFile формат YAML-файла с пакетами
type catalogFile struct {
	Packages []*ydb.Package `yaml:"packages"`
}

// DefaultPackages пакеты, которыми заполняется пустой каталог
func DefaultPackages() []*ydb.Package {
	return []*ydb.Package{
		{PackageType: models.PackageBasic, Name: "Basic", BasePrice: 1999, MaxRevisions: 2, EstimatedDeliveryDays: 3, IsActive: true},
		{PackageType: models.PackageAdvanced, Name: "Advanced", BasePrice: 4999, MaxRevisions: 4, EstimatedDeliveryDays: 5, IsActive: true},
		{PackageType: models.PackageCustom, Name: "Custom", BasePrice: 9999, MaxRevisions: models.UnlimitedRevisions, EstimatedDeliveryDays: 7, IsActive: true},
	}
}

// EditorFee доля монтажера, округление вниз
func EditorFee(total int64, percent int) int64 {
	return total * int64(percent) / 100
}

// AdvanceAmount размер авансового платежа, округление вниз
func AdvanceAmount(total int64, percent int) int64 {
	return total * int64(percent) / 100
}

// EditorFee доля монтажера по настройкам сервиса
func (s *Service) EditorFee(total int64) int64 {
	return EditorFee(total, s.feePercent)
}

// AdvanceAmount размер аванса по настройкам сервиса
func (s *Service) AdvanceAmount(total int64) int64 {
	return AdvanceAmount(total, s.advancePercent)
}

// List возвращает пакеты каталога
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*ydb.Package, error) {
	packages, err := s.db.ListPackages(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packages, nil
}

// Get возвращает пакет по типу
func (s *Service) Get(ctx context.Context, packageType models.PackageType) (*ydb.Package, error) {
	if !packageType.Valid() {
		return nil, app_errors.Validation("unknown package type %q", packageType)
	}
	return s.db.GetPackage(ctx, packageType)
}

// GetActive возвращает пакет, доступный для новых проектов
func (s *Service) GetActive(ctx context.Context, packageType models.PackageType) (*ydb.Package, error) {
	pkg, err := s.Get(ctx, packageType)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, app_errors.InvalidState("package %s is not available", packageType)
	}
	return pkg, nil
}

// Upsert создает или обновляет пакет
func (s *Service) Upsert(ctx context.Context, pkg *ydb.Package) error {
	if err := validatePackage(pkg); err != nil {
		return err
	}
	if err := s.db.UpsertPackage(ctx, pkg); err != nil {
		return fmt.Errorf("failed to upsert package: %w", err)
	}
	return nil
}

// Quote расчет стоимости, гонорара и аванса для пакета
func (s *Service) Quote(ctx context.Context, packageType models.PackageType) (*models.PackageQuote, error) {
	pkg, err := s.GetActive(ctx, packageType)
	if err != nil {
		return nil, err
	}
	return &models.PackageQuote{
		PackageType:   pkg.PackageType,
		TotalAmount:   pkg.BasePrice,
		EditorFee:     s.EditorFee(pkg.BasePrice),
		AdvanceAmount: s.AdvanceAmount(pkg.BasePrice),
		MaxRevisions:  pkg.MaxRevisions,
		DeliveryDays:  pkg.EstimatedDeliveryDays,
	}, nil
}

// LoadFile читает пакеты из YAML-файла
func LoadFile(path string) ([]*ydb.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	for _, pkg := range file.Packages {
		if err := validatePackage(pkg); err != nil {
			return nil, fmt.Errorf("invalid package in %s: %w", path, err)
		}
	}
	return file.Packages, nil
}

// SeedFromFile заполняет каталог из файла, а при пустом path значениями по умолчанию
func (s *Service) SeedFromFile(ctx context.Context, path string) (int, error) {
	packages := DefaultPackages()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return 0, err
		}
		packages = loaded
	}
	for _, pkg := range packages {
		if err := s.db.UpsertPackage(ctx, pkg); err != nil {
			return 0, fmt.Errorf("failed to seed package %s: %w", pkg.PackageType, err)
		}
	}
	return len(packages), nil
}

func validatePackage(pkg *ydb.Package) error {
	if pkg == nil {
		return app_errors.Validation("package is required")
	}
	if !pkg.PackageType.Valid() {
		return app_errors.Validation("unknown package type %q", pkg.PackageType)
	}
	if strings.TrimSpace(pkg.Name) == "" {
		return app_errors.Validation("package name is required")
	}
	if pkg.BasePrice <= 0 {
		return app_errors.Validation("base_price must be positive")
	}
	if pkg.MaxRevisions < 0 && pkg.MaxRevisions != models.UnlimitedRevisions {
		return app_errors.Validation("max_revisions must be non-negative or %d for unlimited", models.UnlimitedRevisions)
	}
	if pkg.EstimatedDeliveryDays <= 0 {
		return app_errors.Validation("estimated_delivery_days must be positive")
	}
	return nil
}
