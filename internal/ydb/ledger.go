package ydb

import (
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Проверки, которые транзакции выполняют над только что перечитанными строками

// ApplyPayment зачисляет проведенный платеж. paid_amount не может превысить total_amount
func (p *Project) ApplyPayment(amount int64) error {
	if amount <= 0 || p.PaidAmount+amount > p.TotalAmount {
		return app_errors.ErrPaymentExceedsDue
	}
	p.PaidAmount += amount
	if p.PaidAmount == p.TotalAmount {
		p.PaymentStatus = models.PaymentStatusCompleted
	} else {
		p.PaymentStatus = models.PaymentStatusPartial
	}
	return nil
}

// ApplyRefund списывает возврат, paid_amount не опускается ниже нуля
func (p *Project) ApplyRefund(amount int64) {
	p.PaidAmount -= amount
	if p.PaidAmount < 0 {
		p.PaidAmount = 0
	}
	p.PaymentStatus = models.PaymentStatusRefunded
}

func checkPaymentPending(current *Payment) error {
	if current.Status != models.PaymentPending {
		return app_errors.ErrPaymentConflict
	}
	return nil
}

func checkRefundable(current *Payment, amount int64) error {
	if current.Status != models.PaymentCompleted {
		return app_errors.ErrPaymentConflict
	}
	if amount <= 0 || amount > current.Amount {
		return app_errors.ErrRefundExceedsAmount
	}
	return nil
}

// checkProjectVersion статус совпадает с expected, updated_at с version.
// Нулевая version отключает второе условие
func checkProjectVersion(current *Project, expected models.ProjectStatus, version time.Time) error {
	if current.Status != expected {
		return app_errors.ErrStatusConflict
	}
	if !version.IsZero() && !current.UpdatedAt.Equal(version) {
		return app_errors.ErrStatusConflict
	}
	return nil
}

// checkPayoutBatch каждый проект выплаты найден, назначен монтажеру и все еще доступен для выплаты
func checkPayoutBatch(projects []*Project, editorID string, ids []string) error {
	if len(ids) == 0 {
		return app_errors.ErrNoEligibleProjects
	}
	byID := make(map[string]*Project, len(projects))
	for _, p := range projects {
		byID[p.ProjectID] = p
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !p.AssignedTo(editorID) || !p.PayoutEligible() {
			return app_errors.ErrPayoutConflict
		}
	}
	return nil
}

func checkPayoutStatus(current, expected models.PayoutStatus) error {
	if current != expected {
		return app_errors.ErrPayoutConflict
	}
	return nil
}
