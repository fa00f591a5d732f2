package ydb

import (
	"context"
	"fmt"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
)

const packageColumns = `package_type, name, description, base_price, max_revisions, estimated_delivery_days, features, is_active, created_at, updated_at`

func scanPackage(res result.Result) (*Package, error) {
	var (
		pkg         Package
		packageType string
		features    *string
	)
	err := res.ScanNamed(
		named.Required("package_type", &packageType),
		named.OptionalWithDefault("name", &pkg.Name),
		named.OptionalWithDefault("description", &pkg.Description),
		named.OptionalWithDefault("base_price", &pkg.BasePrice),
		named.OptionalWithDefault("max_revisions", &pkg.MaxRevisions),
		named.OptionalWithDefault("estimated_delivery_days", &pkg.EstimatedDeliveryDays),
		named.Optional("features", &features),
		named.OptionalWithDefault("is_active", &pkg.IsActive),
		named.OptionalWithDefault("created_at", &pkg.CreatedAt),
		named.OptionalWithDefault("updated_at", &pkg.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	pkg.PackageType = models.PackageType(packageType)
	if err := decodeJSON(features, &pkg.Features); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// UpsertPackage создает или обновляет пакет каталога
func (c *YDBClient) UpsertPackage(ctx context.Context, pkg *Package) error {
	now := time.Now()
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = now
	}
	pkg.UpdatedAt = now

	features, err := jsonValue(pkg.Features)
	if err != nil {
		return err
	}

	return c.execute(ctx, `
		DECLARE $package_type AS Text;
		DECLARE $name AS Text;
		DECLARE $description AS Text;
		DECLARE $base_price AS Int64;
		DECLARE $max_revisions AS Int32;
		DECLARE $estimated_delivery_days AS Int32;
		DECLARE $features AS Optional<Json>;
		DECLARE $is_active AS Bool;
		DECLARE $created_at AS Timestamp;
		DECLARE $updated_at AS Timestamp;

		UPSERT INTO packages (`+packageColumns+`)
		VALUES ($package_type, $name, $description, $base_price, $max_revisions,
			$estimated_delivery_days, $features, $is_active, $created_at, $updated_at);
	`, table.NewQueryParameters(
		table.ValueParam("$package_type", types.TextValue(string(pkg.PackageType))),
		table.ValueParam("$name", types.TextValue(pkg.Name)),
		table.ValueParam("$description", types.TextValue(pkg.Description)),
		table.ValueParam("$base_price", types.Int64Value(pkg.BasePrice)),
		table.ValueParam("$max_revisions", types.Int32Value(pkg.MaxRevisions)),
		table.ValueParam("$estimated_delivery_days", types.Int32Value(pkg.EstimatedDeliveryDays)),
		table.ValueParam("$features", features),
		table.ValueParam("$is_active", types.BoolValue(pkg.IsActive)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(pkg.CreatedAt)),
		table.ValueParam("$updated_at", types.TimestampValueFromTime(pkg.UpdatedAt)),
	))
}

// GetPackage получает пакет по типу
func (c *YDBClient) GetPackage(ctx context.Context, packageType models.PackageType) (*Package, error) {
	var pkg *Package
	err := c.rows(ctx, `
		DECLARE $package_type AS Text;
		SELECT `+packageColumns+` FROM packages WHERE package_type = $package_type;
	`, table.NewQueryParameters(table.ValueParam("$package_type", types.TextValue(string(packageType)))),
		nil,
		func(res result.Result) (err error) {
			pkg, err = scanPackage(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, app_errors.ErrPackageNotFound
	}
	return pkg, nil
}

// ListPackages возвращает пакеты каталога, упорядоченные по цене
func (c *YDBClient) ListPackages(ctx context.Context, activeOnly bool) ([]*Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY base_price;`

	var packages []*Package
	err := c.rows(ctx, query, table.NewQueryParameters(),
		func() { packages = nil },
		func(res result.Result) error {
			pkg, err := scanPackage(res)
			if err != nil {
				return err
			}
			packages = append(packages, pkg)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return packages, nil
}
