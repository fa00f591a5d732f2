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

const payoutColumns = `payout_id, editor_id, items, total_amount, period_start, period_end, payment_method,
	account_details, status, transaction_reference, failure_reason, created_by, processed_at, created_at, updated_at`

const upsertPayoutQuery = `
	DECLARE $payout_id AS Text;
	DECLARE $editor_id AS Text;
	DECLARE $items AS Optional<Json>;
	DECLARE $total_amount AS Int64;
	DECLARE $period_start AS Timestamp;
	DECLARE $period_end AS Timestamp;
	DECLARE $payment_method AS Text;
	DECLARE $account_details AS Optional<Json>;
	DECLARE $status AS Text;
	DECLARE $transaction_reference AS Optional<Text>;
	DECLARE $failure_reason AS Optional<Text>;
	DECLARE $created_by AS Text;
	DECLARE $processed_at AS Optional<Timestamp>;
	DECLARE $created_at AS Timestamp;
	DECLARE $updated_at AS Timestamp;

	UPSERT INTO payouts (` + payoutColumns + `)
	VALUES ($payout_id, $editor_id, $items, $total_amount, $period_start, $period_end, $payment_method,
		$account_details, $status, $transaction_reference, $failure_reason, $created_by, $processed_at, $created_at, $updated_at);
`

func payoutParams(p *Payout) (*table.QueryParameters, error) {
	items, err := jsonValue(p.Items)
	if err != nil {
		return nil, err
	}
	details, err := jsonValue(p.AccountDetails)
	if err != nil {
		return nil, err
	}
	return table.NewQueryParameters(
		table.ValueParam("$payout_id", types.TextValue(p.PayoutID)),
		table.ValueParam("$editor_id", types.TextValue(p.EditorID)),
		table.ValueParam("$items", items),
		table.ValueParam("$total_amount", types.Int64Value(p.TotalAmount)),
		table.ValueParam("$period_start", types.TimestampValueFromTime(p.PeriodStart)),
		table.ValueParam("$period_end", types.TimestampValueFromTime(p.PeriodEnd)),
		table.ValueParam("$payment_method", types.TextValue(string(p.PaymentMethod))),
		table.ValueParam("$account_details", details),
		table.ValueParam("$status", types.TextValue(string(p.Status))),
		table.ValueParam("$transaction_reference", optText(p.TransactionReference)),
		table.ValueParam("$failure_reason", optText(p.FailureReason)),
		table.ValueParam("$created_by", types.TextValue(p.CreatedBy)),
		table.ValueParam("$processed_at", optTimestamp(p.ProcessedAt)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(p.CreatedAt)),
		table.ValueParam("$updated_at", types.TimestampValueFromTime(p.UpdatedAt)),
	), nil
}

func scanPayout(res result.Result) (*Payout, error) {
	var (
		p              Payout
		method, status string
		items, details *string
	)
	err := res.ScanNamed(
		named.Required("payout_id", &p.PayoutID),
		named.Required("editor_id", &p.EditorID),
		named.Optional("items", &items),
		named.OptionalWithDefault("total_amount", &p.TotalAmount),
		named.OptionalWithDefault("period_start", &p.PeriodStart),
		named.OptionalWithDefault("period_end", &p.PeriodEnd),
		named.OptionalWithDefault("payment_method", &method),
		named.Optional("account_details", &details),
		named.OptionalWithDefault("status", &status),
		named.Optional("transaction_reference", &p.TransactionReference),
		named.Optional("failure_reason", &p.FailureReason),
		named.OptionalWithDefault("created_by", &p.CreatedBy),
		named.Optional("processed_at", &p.ProcessedAt),
		named.OptionalWithDefault("created_at", &p.CreatedAt),
		named.OptionalWithDefault("updated_at", &p.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	p.PaymentMethod = models.PayoutMethod(method)
	p.Status = models.PayoutStatus(status)
	if err := decodeJSON(items, &p.Items); err != nil {
		return nil, err
	}
	if err := decodeJSON(details, &p.AccountDetails); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayoutTx создает выплату и помечает проекты как processing. Каждый проект
// перепроверяется внутри транзакции: он должен принадлежать монтажеру и оставаться доступным для выплаты
func (c *YDBClient) CreatePayoutTx(ctx context.Context, payout *Payout) error {
	now := time.Now().Truncate(time.Microsecond)
	payout.CreatedAt = now
	payout.UpdatedAt = now
	ids := payout.ProjectIDs()

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		var projects []*Project
		err := txRows(ctx, tx, `
			DECLARE $ids AS List<Text>;
			SELECT `+projectColumns+` FROM projects WHERE project_id IN $ids;
		`, table.NewQueryParameters(table.ValueParam("$ids", textList(ids))),
			func(res result.Result) error {
				p, err := scanProject(res)
				if err != nil {
					return err
				}
				projects = append(projects, p)
				return nil
			})
		if err != nil {
			return err
		}
		if err := checkPayoutBatch(projects, payout.EditorID, ids); err != nil {
			return err
		}

		params, err := payoutParams(payout)
		if err != nil {
			return err
		}
		if _, err := tx.Execute(ctx, upsertPayoutQuery, params); err != nil {
			return err
		}

		_, err = tx.Execute(ctx, `
			DECLARE $ids AS List<Text>;
			DECLARE $payout_id AS Text;
			DECLARE $updated_at AS Timestamp;
			UPDATE projects SET
				editor_payment_status = 'processing',
				payout_id = $payout_id,
				updated_at = $updated_at
			WHERE project_id IN $ids;
		`, table.NewQueryParameters(
			table.ValueParam("$ids", textList(ids)),
			table.ValueParam("$payout_id", types.TextValue(payout.PayoutID)),
			table.ValueParam("$updated_at", types.TimestampValueFromTime(now)),
		))
		return err
	})
}

// GetPayout получает выплату по ID
func (c *YDBClient) GetPayout(ctx context.Context, payoutID string) (*Payout, error) {
	var payout *Payout
	err := c.rows(ctx, `
		DECLARE $payout_id AS Text;
		SELECT `+payoutColumns+` FROM payouts WHERE payout_id = $payout_id;
	`, table.NewQueryParameters(table.ValueParam("$payout_id", types.TextValue(payoutID))),
		nil,
		func(res result.Result) (err error) {
			payout, err = scanPayout(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, app_errors.ErrPayoutNotFound
	}
	return payout, nil
}

func (c *YDBClient) listPayouts(ctx context.Context, query string, params *table.QueryParameters) ([]*Payout, error) {
	var payouts []*Payout
	err := c.rows(ctx, query, params,
		func() { payouts = nil },
		func(res result.Result) error {
			p, err := scanPayout(res)
			if err != nil {
				return err
			}
			payouts = append(payouts, p)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

// ListPayouts возвращает страницу выплат по фильтру
func (c *YDBClient) ListPayouts(ctx context.Context, filter models.PayoutFilter) ([]*Payout, int64, error) {
	qb := &queryBuilder{}
	if filter.EditorID != "" {
		qb.param("$editor_id", "Text", types.TextValue(filter.EditorID)).where("editor_id = $editor_id")
	}
	if filter.Status != "" {
		qb.param("$status", "Text", types.TextValue(string(filter.Status))).where("status = $status")
	}

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM payouts"+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageParams(filter.Limit, filter.Offset)
	qb.param("$limit", "Uint64", types.Uint64Value(limit)).param("$offset", "Uint64", types.Uint64Value(offset))
	payouts, err := c.listPayouts(ctx,
		qb.declareBlock()+"\nSELECT "+payoutColumns+" FROM payouts"+qb.whereClause()+" ORDER BY created_at DESC LIMIT $limit OFFSET $offset;",
		qb.params())
	if err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

// ListPayoutsBetween выплаты, созданные в интервале [from, to)
func (c *YDBClient) ListPayoutsBetween(ctx context.Context, from, to time.Time) ([]*Payout, error) {
	return c.listPayouts(ctx, `
		DECLARE $from AS Timestamp;
		DECLARE $to AS Timestamp;
		SELECT `+payoutColumns+` FROM payouts
		WHERE created_at >= $from AND created_at < $to
		ORDER BY created_at;
	`, table.NewQueryParameters(
		table.ValueParam("$from", types.TimestampValueFromTime(from)),
		table.ValueParam("$to", types.TimestampValueFromTime(to)),
	))
}

// SumPendingPayouts сумма выплат, которые еще не завершены
func (c *YDBClient) SumPendingPayouts(ctx context.Context) (int64, error) {
	var total int64
	err := c.rows(ctx, `
		SELECT SUM(total_amount) AS total FROM payouts WHERE status IN ('pending', 'processing');
	`, table.NewQueryParameters(), nil, func(res result.Result) error {
		return res.ScanNamed(named.OptionalWithDefault("total", &total))
	})
	return total, err
}

// UpdatePayoutStatusTx меняет статус выплаты (CAS по expected) и применяет эффекты
// к проектам и монтажеру в той же транзакции
func (c *YDBClient) UpdatePayoutStatusTx(ctx context.Context, payout *Payout, expected models.PayoutStatus) error {
	now := time.Now().Truncate(time.Microsecond)
	payout.UpdatedAt = now
	ids := payout.ProjectIDs()

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		var current string
		found := false
		err := txRows(ctx, tx, `
			DECLARE $payout_id AS Text;
			SELECT status FROM payouts WHERE payout_id = $payout_id;
		`, table.NewQueryParameters(table.ValueParam("$payout_id", types.TextValue(payout.PayoutID))),
			func(res result.Result) error {
				found = true
				return res.ScanNamed(named.OptionalWithDefault("status", &current))
			})
		if err != nil {
			return err
		}
		if !found {
			return app_errors.ErrPayoutNotFound
		}
		if err := checkPayoutStatus(models.PayoutStatus(current), expected); err != nil {
			return err
		}

		params, err := payoutParams(payout)
		if err != nil {
			return err
		}
		if _, err := tx.Execute(ctx, upsertPayoutQuery, params); err != nil {
			return err
		}

		switch payout.Status {
		case models.PayoutCompleted:
			if _, err := tx.Execute(ctx, `
				DECLARE $ids AS List<Text>;
				DECLARE $payout_id AS Text;
				DECLARE $updated_at AS Timestamp;
				UPDATE projects SET editor_payment_status = 'paid', updated_at = $updated_at
				WHERE project_id IN $ids AND payout_id = $payout_id;
			`, table.NewQueryParameters(
				table.ValueParam("$ids", textList(ids)),
				table.ValueParam("$payout_id", types.TextValue(payout.PayoutID)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(now)),
			)); err != nil {
				return err
			}
			_, err = tx.Execute(ctx, `
				DECLARE $editor_id AS Text;
				DECLARE $amount AS Int64;
				DECLARE $updated_at AS Timestamp;
				UPDATE editors SET
					total_earnings = total_earnings + $amount,
					pending_earnings = IF(pending_earnings > $amount, pending_earnings - $amount, 0),
					updated_at = $updated_at
				WHERE editor_id = $editor_id;
			`, table.NewQueryParameters(
				table.ValueParam("$editor_id", types.TextValue(payout.EditorID)),
				table.ValueParam("$amount", types.Int64Value(payout.TotalAmount)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(now)),
			))
			return err

		case models.PayoutFailed, models.PayoutCancelled:
			// Проекты возвращаются в пул для следующей выплаты
			_, err = tx.Execute(ctx, `
				DECLARE $ids AS List<Text>;
				DECLARE $payout_id AS Text;
				DECLARE $updated_at AS Timestamp;
				UPDATE projects SET
					editor_payment_status = 'pending',
					payout_id = NULL,
					updated_at = $updated_at
				WHERE project_id IN $ids AND payout_id = $payout_id;
			`, table.NewQueryParameters(
				table.ValueParam("$ids", textList(ids)),
				table.ValueParam("$payout_id", types.TextValue(payout.PayoutID)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(now)),
			))
			return err
		}
		return nil
	})
}
