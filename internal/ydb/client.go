package ydb

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/lumiforge/cutroom-backend/internal/config"
	"github.com/ydb-platform/ydb-go-sdk/v3"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result"
	yc "github.com/ydb-platform/ydb-go-yc"
)

// YDBClient реализация интерфейса Database
type YDBClient struct {
	driver       *ydb.Driver
	databasePath string
}

// NewYDBClient создает новый клиент YDB
func NewYDBClient(ctx context.Context, cfg *config.Config) (*YDBClient, error) {
	endpoint := cfg.CRYDBEndpoint
	database := cfg.CRYDBDatabasePath

	if endpoint == "" || database == "" {
		return nil, fmt.Errorf("YDB credentials not provided. Please set CR_YDB_ENDPOINT and CR_YDB_DATABASE_PATH environment variables")
	}

	driver, err := ydb.Open(ctx, endpoint,
		ydb.WithDatabase(database),
		yc.WithMetadataCredentials(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to YDB: %w", err)
	}

	log.Println("Successfully connected to YDB")

	client := &YDBClient{
		driver:       driver,
		databasePath: database,
	}

	// Создаём таблицы только если флаг установлен
	if cfg.CRYDBAutoCreateTables > 0 {
		log.Println("CR_YDB_AUTO_CREATE_TABLES is enabled, checking and creating tables...")
		err = client.createTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return client, nil
}

// Close закрывает соединение с базой данных
func (c *YDBClient) Close() error {
	if c.driver != nil {
		return c.driver.Close(context.Background())
	}
	return nil
}

// tableExists checks if a table exists in the database
func (c *YDBClient) tableExists(ctx context.Context, tableName string) (bool, error) {
	fullPath := path.Join(c.databasePath, tableName)
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, err := session.DescribeTable(ctx, fullPath)
		return err
	})

	if err != nil {
		// YDB returns SchemeError with "Path not found" usually, code 400070 is SCHEME_ERROR
		msg := err.Error()
		if strings.Contains(msg, "not found") ||
			strings.Contains(msg, "does not exist") ||
			strings.Contains(msg, "Path not found") ||
			strings.Contains(msg, "code = 400070") {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// executeSchemeQuery выполняет DDL запрос
func (c *YDBClient) executeSchemeQuery(ctx context.Context, query string) error {
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		return session.ExecuteSchemeQuery(ctx, query)
	})
}

// execute выполняет запрос на изменение вне явной транзакции
func (c *YDBClient) execute(ctx context.Context, query string, params *table.QueryParameters) error {
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, _, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		return err
	})
}

// doTx выполняет операцию в serializable-транзакции. При конфликте блокировок
// YDB откатывает транзакцию и SDK повторяет операцию целиком, поэтому
// все проверки ожидаемого состояния должны делаться внутри op.
func (c *YDBClient) doTx(ctx context.Context, op func(ctx context.Context, tx table.TransactionActor) error) error {
	return c.driver.Table().DoTx(ctx, op, table.WithIdempotent())
}

// txRows выполняет запрос внутри транзакции и вызывает scan для каждой строки
func txRows(ctx context.Context, tx table.TransactionActor, query string, params *table.QueryParameters, scan func(res result.Result) error) error {
	res, err := tx.Execute(ctx, query, params)
	if err != nil {
		return err
	}
	defer res.Close()

	for res.NextResultSet(ctx) {
		for res.NextRow() {
			if err := scan(res); err != nil {
				return err
			}
		}
	}
	return res.Err()
}

// rows выполняет читающий запрос вне явной транзакции
func (c *YDBClient) rows(ctx context.Context, query string, params *table.QueryParameters, reset func(), scan func(res result.Result) error) error {
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		if reset != nil {
			reset()
		}
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				if err := scan(res); err != nil {
					return err
				}
			}
		}
		return res.Err()
	})
}
