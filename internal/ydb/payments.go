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

const paymentColumns = `payment_id, project_id, user_id, amount, currency, payment_type, gateway, order_id,
	gateway_payment_id, gateway_signature, payment_method, gateway_details, status, failure_reason,
	refund_amount, refund_reason, refund_transaction_id,
	created_at, completed_at, failed_at, refunded_at, updated_at`

const upsertPaymentQuery = `
	DECLARE $payment_id AS Text;
	DECLARE $project_id AS Text;
	DECLARE $user_id AS Text;
	DECLARE $amount AS Int64;
	DECLARE $currency AS Text;
	DECLARE $payment_type AS Text;
	DECLARE $gateway AS Text;
	DECLARE $order_id AS Text;
	DECLARE $gateway_payment_id AS Optional<Text>;
	DECLARE $gateway_signature AS Optional<Text>;
	DECLARE $payment_method AS Optional<Text>;
	DECLARE $gateway_details AS Optional<Json>;
	DECLARE $status AS Text;
	DECLARE $failure_reason AS Optional<Text>;
	DECLARE $refund_amount AS Optional<Int64>;
	DECLARE $refund_reason AS Optional<Text>;
	DECLARE $refund_transaction_id AS Optional<Text>;
	DECLARE $created_at AS Timestamp;
	DECLARE $completed_at AS Optional<Timestamp>;
	DECLARE $failed_at AS Optional<Timestamp>;
	DECLARE $refunded_at AS Optional<Timestamp>;
	DECLARE $updated_at AS Timestamp;

	UPSERT INTO payments (` + paymentColumns + `)
	VALUES ($payment_id, $project_id, $user_id, $amount, $currency, $payment_type, $gateway, $order_id,
		$gateway_payment_id, $gateway_signature, $payment_method, $gateway_details, $status, $failure_reason,
		$refund_amount, $refund_reason, $refund_transaction_id,
		$created_at, $completed_at, $failed_at, $refunded_at, $updated_at);
`

func paymentParams(p *Payment) (*table.QueryParameters, error) {
	details, err := jsonValue(p.GatewayDetails)
	if err != nil {
		return nil, err
	}
	return table.NewQueryParameters(
		table.ValueParam("$payment_id", types.TextValue(p.PaymentID)),
		table.ValueParam("$project_id", types.TextValue(p.ProjectID)),
		table.ValueParam("$user_id", types.TextValue(p.UserID)),
		table.ValueParam("$amount", types.Int64Value(p.Amount)),
		table.ValueParam("$currency", types.TextValue(p.Currency)),
		table.ValueParam("$payment_type", types.TextValue(string(p.PaymentType))),
		table.ValueParam("$gateway", types.TextValue(string(p.Gateway))),
		table.ValueParam("$order_id", types.TextValue(p.OrderID)),
		table.ValueParam("$gateway_payment_id", optText(p.GatewayPaymentID)),
		table.ValueParam("$gateway_signature", optText(p.GatewaySignature)),
		table.ValueParam("$payment_method", optText(p.PaymentMethod)),
		table.ValueParam("$gateway_details", details),
		table.ValueParam("$status", types.TextValue(string(p.Status))),
		table.ValueParam("$failure_reason", optText(p.FailureReason)),
		table.ValueParam("$refund_amount", optInt64(p.RefundAmount)),
		table.ValueParam("$refund_reason", optText(p.RefundReason)),
		table.ValueParam("$refund_transaction_id", optText(p.RefundTransactionID)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(p.CreatedAt)),
		table.ValueParam("$completed_at", optTimestamp(p.CompletedAt)),
		table.ValueParam("$failed_at", optTimestamp(p.FailedAt)),
		table.ValueParam("$refunded_at", optTimestamp(p.RefundedAt)),
		table.ValueParam("$updated_at", types.TimestampValueFromTime(p.UpdatedAt)),
	), nil
}

func scanPayment(res result.Result) (*Payment, error) {
	var (
		p                             Payment
		paymentType, gateway, status string
		details                       *string
	)
	err := res.ScanNamed(
		named.Required("payment_id", &p.PaymentID),
		named.Required("project_id", &p.ProjectID),
		named.Required("user_id", &p.UserID),
		named.OptionalWithDefault("amount", &p.Amount),
		named.OptionalWithDefault("currency", &p.Currency),
		named.OptionalWithDefault("payment_type", &paymentType),
		named.OptionalWithDefault("gateway", &gateway),
		named.OptionalWithDefault("order_id", &p.OrderID),
		named.Optional("gateway_payment_id", &p.GatewayPaymentID),
		named.Optional("gateway_signature", &p.GatewaySignature),
		named.Optional("payment_method", &p.PaymentMethod),
		named.Optional("gateway_details", &details),
		named.OptionalWithDefault("status", &status),
		named.Optional("failure_reason", &p.FailureReason),
		named.Optional("refund_amount", &p.RefundAmount),
		named.Optional("refund_reason", &p.RefundReason),
		named.Optional("refund_transaction_id", &p.RefundTransactionID),
		named.OptionalWithDefault("created_at", &p.CreatedAt),
		named.Optional("completed_at", &p.CompletedAt),
		named.Optional("failed_at", &p.FailedAt),
		named.Optional("refunded_at", &p.RefundedAt),
		named.OptionalWithDefault("updated_at", &p.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	p.PaymentType = models.PaymentType(paymentType)
	p.Gateway = models.Gateway(gateway)
	p.Status = models.PaymentRecordStatus(status)
	if err := decodeJSON(details, &p.GatewayDetails); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayment сохраняет новый платеж
func (c *YDBClient) CreatePayment(ctx context.Context, payment *Payment) error {
	now := time.Now().Truncate(time.Microsecond)
	payment.CreatedAt = now
	payment.UpdatedAt = now

	params, err := paymentParams(payment)
	if err != nil {
		return err
	}
	return c.execute(ctx, upsertPaymentQuery, params)
}

func (c *YDBClient) getPayment(ctx context.Context, query string, params *table.QueryParameters) (*Payment, error) {
	var payment *Payment
	err := c.rows(ctx, query, params, nil, func(res result.Result) (err error) {
		payment, err = scanPayment(res)
		return err
	})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, app_errors.ErrPaymentNotFound
	}
	return payment, nil
}

// GetPayment получает платеж по ID
func (c *YDBClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	return c.getPayment(ctx, `
		DECLARE $payment_id AS Text;
		SELECT `+paymentColumns+` FROM payments WHERE payment_id = $payment_id;
	`, table.NewQueryParameters(table.ValueParam("$payment_id", types.TextValue(paymentID))))
}

// GetPaymentByOrderID получает платеж по ID заказа в шлюзе
func (c *YDBClient) GetPaymentByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	return c.getPayment(ctx, `
		DECLARE $order_id AS Text;
		SELECT `+paymentColumns+` FROM payments VIEW order_idx WHERE order_id = $order_id;
	`, table.NewQueryParameters(table.ValueParam("$order_id", types.TextValue(orderID))))
}

func (c *YDBClient) listPayments(ctx context.Context, query string, params *table.QueryParameters) ([]*Payment, error) {
	var payments []*Payment
	err := c.rows(ctx, query, params,
		func() { payments = nil },
		func(res result.Result) error {
			p, err := scanPayment(res)
			if err != nil {
				return err
			}
			payments = append(payments, p)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// ListPayments возвращает страницу платежей по фильтру
func (c *YDBClient) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*Payment, int64, error) {
	qb := &queryBuilder{}
	if filter.UserID != "" {
		qb.param("$user_id", "Text", types.TextValue(filter.UserID)).where("user_id = $user_id")
	}
	if filter.ProjectID != "" {
		qb.param("$project_id", "Text", types.TextValue(filter.ProjectID)).where("project_id = $project_id")
	}
	if filter.Status != "" {
		qb.param("$status", "Text", types.TextValue(string(filter.Status))).where("status = $status")
	}

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM payments"+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageParams(filter.Limit, filter.Offset)
	qb.param("$limit", "Uint64", types.Uint64Value(limit)).param("$offset", "Uint64", types.Uint64Value(offset))
	payments, err := c.listPayments(ctx,
		qb.declareBlock()+"\nSELECT "+paymentColumns+" FROM payments"+qb.whereClause()+" ORDER BY created_at DESC LIMIT $limit OFFSET $offset;",
		qb.params())
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListPaymentsBetween платежи, созданные в интервале [from, to)
func (c *YDBClient) ListPaymentsBetween(ctx context.Context, from, to time.Time) ([]*Payment, error) {
	return c.listPayments(ctx, `
		DECLARE $from AS Timestamp;
		DECLARE $to AS Timestamp;
		SELECT `+paymentColumns+` FROM payments
		WHERE created_at >= $from AND created_at < $to
		ORDER BY created_at;
	`, table.NewQueryParameters(
		table.ValueParam("$from", types.TimestampValueFromTime(from)),
		table.ValueParam("$to", types.TimestampValueFromTime(to)),
	))
}

// PaymentStats количество и сумма платежей по статусам
func (c *YDBClient) PaymentStats(ctx context.Context) (*models.PaymentStats, error) {
	var stats *models.PaymentStats
	err := c.rows(ctx, `
		SELECT status, COUNT(*) AS cnt, SUM(amount) AS total, SUM(refund_amount) AS refunded
		FROM payments GROUP BY status;
	`, table.NewQueryParameters(),
		func() {
			stats = &models.PaymentStats{
				Count: make(map[models.PaymentRecordStatus]int64),
				Sum:   make(map[models.PaymentRecordStatus]int64),
			}
		},
		func(res result.Result) error {
			var (
				status          string
				cnt             uint64
				total, refunded int64
			)
			if err := res.ScanNamed(
				named.OptionalWithDefault("status", &status),
				named.Required("cnt", &cnt),
				named.OptionalWithDefault("total", &total),
				named.OptionalWithDefault("refunded", &refunded),
			); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			s := models.PaymentRecordStatus(status)
			stats.Count[s] = int64(cnt)
			stats.Sum[s] = total
			stats.RefundedTotal += refunded
			return nil
		})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// readPaymentTx читает платеж внутри транзакции
func readPaymentTx(ctx context.Context, tx table.TransactionActor, paymentID string) (*Payment, error) {
	var payment *Payment
	err := txRows(ctx, tx, `
		DECLARE $payment_id AS Text;
		SELECT `+paymentColumns+` FROM payments WHERE payment_id = $payment_id;
	`, table.NewQueryParameters(table.ValueParam("$payment_id", types.TextValue(paymentID))),
		func(res result.Result) (err error) {
			payment, err = scanPayment(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, app_errors.ErrPaymentNotFound
	}
	return payment, nil
}

func writePaymentTx(ctx context.Context, tx table.TransactionActor, payment *Payment) error {
	params, err := paymentParams(payment)
	if err != nil {
		return err
	}
	_, err = tx.Execute(ctx, upsertPaymentQuery, params)
	return err
}

// CompletePaymentTx переводит pending-платеж в completed и увеличивает paid_amount проекта
func (c *YDBClient) CompletePaymentTx(ctx context.Context, payment *Payment) (*Project, error) {
	var updated *Project
	now := time.Now().Truncate(time.Microsecond)

	err := c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		current, err := readPaymentTx(ctx, tx, payment.PaymentID)
		if err != nil {
			return err
		}
		if err := checkPaymentPending(current); err != nil {
			return err
		}
		project, err := readProjectTx(ctx, tx, current.ProjectID)
		if err != nil {
			return err
		}
		if err := project.ApplyPayment(current.Amount); err != nil {
			return err
		}

		payment.Status = models.PaymentCompleted
		payment.CompletedAt = &now
		payment.UpdatedAt = now
		if err := writePaymentTx(ctx, tx, payment); err != nil {
			return err
		}

		project.UpdatedAt = now
		if err := writeProjectTx(ctx, tx, project); err != nil {
			return err
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FailPayment переводит pending-платеж в failed
func (c *YDBClient) FailPayment(ctx context.Context, payment *Payment) error {
	now := time.Now().Truncate(time.Microsecond)
	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		current, err := readPaymentTx(ctx, tx, payment.PaymentID)
		if err != nil {
			return err
		}
		if err := checkPaymentPending(current); err != nil {
			return err
		}
		payment.Status = models.PaymentFailed
		payment.FailedAt = &now
		payment.UpdatedAt = now
		return writePaymentTx(ctx, tx, payment)
	})
}

// RefundPaymentTx оформляет возврат по completed-платежу. Проект перечитывается
// внутри транзакции, paid_amount не опускается ниже нуля
func (c *YDBClient) RefundPaymentTx(ctx context.Context, payment *Payment) (*Project, error) {
	if payment.RefundAmount == nil {
		return nil, app_errors.Validation("refund amount is required")
	}
	var updated *Project
	now := time.Now().Truncate(time.Microsecond)

	err := c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		current, err := readPaymentTx(ctx, tx, payment.PaymentID)
		if err != nil {
			return err
		}
		if err := checkRefundable(current, *payment.RefundAmount); err != nil {
			return err
		}
		project, err := readProjectTx(ctx, tx, current.ProjectID)
		if err != nil {
			return err
		}

		payment.Status = models.PaymentRefunded
		payment.RefundedAt = &now
		payment.UpdatedAt = now
		if err := writePaymentTx(ctx, tx, payment); err != nil {
			return err
		}

		project.ApplyRefund(*payment.RefundAmount)
		project.UpdatedAt = now
		if err := writeProjectTx(ctx, tx, project); err != nil {
			return err
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
