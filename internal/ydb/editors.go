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

const editorSelect = `
	SELECT e.editor_id AS editor_id, u.full_name AS full_name, u.email AS email,
		e.specializations AS specializations, e.bio AS bio, e.portfolio_url AS portfolio_url,
		e.application_status AS application_status, e.rejection_reason AS rejection_reason,
		e.approved_by AS approved_by, e.approved_at AS approved_at,
		e.is_verified AS is_verified, e.is_available AS is_available,
		e.max_concurrent_projects AS max_concurrent_projects, e.current_workload AS current_workload,
		e.average_rating AS average_rating, e.total_reviews AS total_reviews,
		e.total_earnings AS total_earnings, e.pending_earnings AS pending_earnings,
		e.payout_method AS payout_method, e.payout_details AS payout_details,
		e.created_at AS created_at, e.updated_at AS updated_at
	FROM editors AS e
	LEFT JOIN users AS u ON e.editor_id = u.user_id
`

func scanEditor(res result.Result) (*Editor, error) {
	var (
		e               Editor
		appStatus       string
		payoutMethod    *string
		specializations *string
		payoutDetails   *string
	)
	err := res.ScanNamed(
		named.Required("editor_id", &e.EditorID),
		named.OptionalWithDefault("full_name", &e.FullName),
		named.OptionalWithDefault("email", &e.Email),
		named.Optional("specializations", &specializations),
		named.OptionalWithDefault("bio", &e.Bio),
		named.OptionalWithDefault("portfolio_url", &e.PortfolioURL),
		named.OptionalWithDefault("application_status", &appStatus),
		named.Optional("rejection_reason", &e.RejectionReason),
		named.Optional("approved_by", &e.ApprovedBy),
		named.Optional("approved_at", &e.ApprovedAt),
		named.OptionalWithDefault("is_verified", &e.IsVerified),
		named.OptionalWithDefault("is_available", &e.IsAvailable),
		named.OptionalWithDefault("max_concurrent_projects", &e.MaxConcurrentProjects),
		named.OptionalWithDefault("current_workload", &e.CurrentWorkload),
		named.OptionalWithDefault("average_rating", &e.AverageRating),
		named.OptionalWithDefault("total_reviews", &e.TotalReviews),
		named.OptionalWithDefault("total_earnings", &e.TotalEarnings),
		named.OptionalWithDefault("pending_earnings", &e.PendingEarnings),
		named.Optional("payout_method", &payoutMethod),
		named.Optional("payout_details", &payoutDetails),
		named.OptionalWithDefault("created_at", &e.CreatedAt),
		named.OptionalWithDefault("updated_at", &e.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	e.ApplicationStatus = models.ApplicationStatus(appStatus)
	if payoutMethod != nil && *payoutMethod != "" {
		m := models.PayoutMethod(*payoutMethod)
		e.PayoutMethod = &m
	}
	if err := decodeJSON(specializations, &e.Specializations); err != nil {
		return nil, err
	}
	if err := decodeJSON(payoutDetails, &e.PayoutDetails); err != nil {
		return nil, err
	}
	return &e, nil
}

// RegisterEditorTx создает пользователя и заявку монтажера одной транзакцией
func (c *YDBClient) RegisterEditorTx(ctx context.Context, user *User, editor *Editor) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	editor.EditorID = user.UserID
	editor.CreatedAt, editor.UpdatedAt = now, now

	specializations, err := jsonValue(editor.Specializations)
	if err != nil {
		return err
	}

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		if err := ensureEmailFree(ctx, tx, user.Email); err != nil {
			return err
		}
		if _, err := tx.Execute(ctx, upsertUserQuery, userParams(user)); err != nil {
			return err
		}
		_, err := tx.Execute(ctx, `
			DECLARE $editor_id AS Text;
			DECLARE $specializations AS Optional<Json>;
			DECLARE $bio AS Text;
			DECLARE $portfolio_url AS Text;
			DECLARE $application_status AS Text;
			DECLARE $max_concurrent_projects AS Int32;
			DECLARE $created_at AS Timestamp;

			UPSERT INTO editors (
				editor_id, specializations, bio, portfolio_url, application_status,
				is_verified, is_available, max_concurrent_projects, current_workload,
				average_rating, total_reviews, total_earnings, pending_earnings,
				created_at, updated_at
			) VALUES (
				$editor_id, $specializations, $bio, $portfolio_url, $application_status,
				false, false, $max_concurrent_projects, 0,
				0.0, 0, 0, 0,
				$created_at, $created_at
			);
		`, table.NewQueryParameters(
			table.ValueParam("$editor_id", types.TextValue(editor.EditorID)),
			table.ValueParam("$specializations", specializations),
			table.ValueParam("$bio", types.TextValue(editor.Bio)),
			table.ValueParam("$portfolio_url", types.TextValue(editor.PortfolioURL)),
			table.ValueParam("$application_status", types.TextValue(string(editor.ApplicationStatus))),
			table.ValueParam("$max_concurrent_projects", types.Int32Value(editor.MaxConcurrentProjects)),
			table.ValueParam("$created_at", types.TimestampValueFromTime(now)),
		))
		return err
	})
}

// GetEditor получает монтажера по ID
func (c *YDBClient) GetEditor(ctx context.Context, editorID string) (*Editor, error) {
	query := `
		DECLARE $editor_id AS Text;
	` + editorSelect + `
		WHERE e.editor_id = $editor_id;
	`

	var editor *Editor
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(table.ValueParam("$editor_id", types.TextValue(editorID))),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			editor, err = scanEditor(res)
			if err != nil {
				return err
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if editor == nil {
		return nil, app_errors.ErrEditorNotFound
	}
	return editor, nil
}

// ListEditors возвращает монтажеров по фильтру
func (c *YDBClient) ListEditors(ctx context.Context, filter models.EditorFilter) ([]*Editor, int64, error) {
	qb := &queryBuilder{}
	if filter.ApplicationStatus != "" {
		qb.param("$application_status", "Text", types.TextValue(string(filter.ApplicationStatus))).
			where("e.application_status = $application_status")
	}
	if filter.AvailableOnly {
		qb.where("e.is_available = true")
	}

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM editors AS e"+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageParams(filter.Limit, filter.Offset)
	qb.param("$limit", "Uint64", types.Uint64Value(limit)).param("$offset", "Uint64", types.Uint64Value(offset))
	query := qb.declareBlock() + editorSelect + qb.whereClause() + " ORDER BY created_at DESC LIMIT $limit OFFSET $offset;"

	var editors []*Editor
	err = c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		editors = editors[:0]
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, qb.params())
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				e, err := scanEditor(res)
				if err != nil {
					return err
				}
				editors = append(editors, e)
			}
		}
		return res.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return editors, total, nil
}

// UpdateEditorApplication меняет статус заявки, если он все еще равен expected
func (c *YDBClient) UpdateEditorApplication(ctx context.Context, editor *Editor, expected models.ApplicationStatus) error {
	editor.UpdatedAt = time.Now()

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		res, err := tx.Execute(ctx, `
			DECLARE $editor_id AS Text;
			SELECT application_status FROM editors WHERE editor_id = $editor_id;
		`, table.NewQueryParameters(table.ValueParam("$editor_id", types.TextValue(editor.EditorID))))
		if err != nil {
			return err
		}
		var current string
		found := false
		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			if err := res.ScanNamed(named.OptionalWithDefault("application_status", &current)); err != nil {
				res.Close()
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		if err := res.Err(); err != nil {
			res.Close()
			return err
		}
		res.Close()
		if !found {
			return app_errors.ErrEditorNotFound
		}
		if models.ApplicationStatus(current) != expected {
			return app_errors.Conflict("editor application is %s, expected %s", current, expected)
		}

		_, err = tx.Execute(ctx, `
			DECLARE $editor_id AS Text;
			DECLARE $application_status AS Text;
			DECLARE $rejection_reason AS Optional<Text>;
			DECLARE $approved_by AS Optional<Text>;
			DECLARE $approved_at AS Optional<Timestamp>;
			DECLARE $is_verified AS Bool;
			DECLARE $is_available AS Bool;
			DECLARE $updated_at AS Timestamp;

			UPDATE editors SET
				application_status = $application_status,
				rejection_reason = $rejection_reason,
				approved_by = $approved_by,
				approved_at = $approved_at,
				is_verified = $is_verified,
				is_available = $is_available,
				updated_at = $updated_at
			WHERE editor_id = $editor_id;
		`, table.NewQueryParameters(
			table.ValueParam("$editor_id", types.TextValue(editor.EditorID)),
			table.ValueParam("$application_status", types.TextValue(string(editor.ApplicationStatus))),
			table.ValueParam("$rejection_reason", optText(editor.RejectionReason)),
			table.ValueParam("$approved_by", optText(editor.ApprovedBy)),
			table.ValueParam("$approved_at", optTimestamp(editor.ApprovedAt)),
			table.ValueParam("$is_verified", types.BoolValue(editor.IsVerified)),
			table.ValueParam("$is_available", types.BoolValue(editor.IsAvailable)),
			table.ValueParam("$updated_at", types.TimestampValueFromTime(editor.UpdatedAt)),
		))
		return err
	})
}

// UpdateEditorProfile обновляет редактируемые поля профиля. Счетчики не трогает
func (c *YDBClient) UpdateEditorProfile(ctx context.Context, editor *Editor) error {
	editor.UpdatedAt = time.Now()

	specializations, err := jsonValue(editor.Specializations)
	if err != nil {
		return err
	}
	details, err := jsonValue(editor.PayoutDetails)
	if err != nil {
		return err
	}
	var method *string
	if editor.PayoutMethod != nil {
		m := string(*editor.PayoutMethod)
		method = &m
	}

	return c.execute(ctx, `
		DECLARE $editor_id AS Text;
		DECLARE $specializations AS Optional<Json>;
		DECLARE $bio AS Text;
		DECLARE $portfolio_url AS Text;
		DECLARE $is_available AS Bool;
		DECLARE $max_concurrent_projects AS Int32;
		DECLARE $payout_method AS Optional<Text>;
		DECLARE $payout_details AS Optional<Json>;
		DECLARE $updated_at AS Timestamp;

		UPDATE editors SET
			specializations = $specializations,
			bio = $bio,
			portfolio_url = $portfolio_url,
			is_available = $is_available,
			max_concurrent_projects = $max_concurrent_projects,
			payout_method = $payout_method,
			payout_details = $payout_details,
			updated_at = $updated_at
		WHERE editor_id = $editor_id;
	`, table.NewQueryParameters(
		table.ValueParam("$editor_id", types.TextValue(editor.EditorID)),
		table.ValueParam("$specializations", specializations),
		table.ValueParam("$bio", types.TextValue(editor.Bio)),
		table.ValueParam("$portfolio_url", types.TextValue(editor.PortfolioURL)),
		table.ValueParam("$is_available", types.BoolValue(editor.IsAvailable)),
		table.ValueParam("$max_concurrent_projects", types.Int32Value(editor.MaxConcurrentProjects)),
		table.ValueParam("$payout_method", optText(method)),
		table.ValueParam("$payout_details", details),
		table.ValueParam("$updated_at", types.TimestampValueFromTime(editor.UpdatedAt)),
	))
}

// CountEditorsByApplicationStatus количество монтажеров по статусу заявки
func (c *YDBClient) CountEditorsByApplicationStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	counts := make(map[models.ApplicationStatus]int64)
	err := c.groupCount(ctx, `
		SELECT application_status AS key, COUNT(*) AS cnt FROM editors GROUP BY application_status;
	`, table.NewQueryParameters(), func(key string, n int64) {
		counts[models.ApplicationStatus(key)] = n
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// count выполняет запрос вида SELECT COUNT(*) AS total
func (c *YDBClient) count(ctx context.Context, query string, params *table.QueryParameters) (int64, error) {
	var total uint64
	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			if err := res.ScanNamed(named.Required("total", &total)); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})
	return int64(total), err
}

// groupCount выполняет запрос с колонками key и cnt
func (c *YDBClient) groupCount(ctx context.Context, query string, params *table.QueryParameters, fn func(key string, n int64)) error {
	return c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		for res.NextResultSet(ctx) {
			for res.NextRow() {
				var key string
				var n uint64
				if err := res.ScanNamed(
					named.OptionalWithDefault("key", &key),
					named.Required("cnt", &n),
				); err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				fn(key, int64(n))
			}
		}
		return res.Err()
	})
}
