package report

import (
	"context"
	"fmt"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/audit"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/storage"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportURLLifetime = 24 * time.Hour
	dateLayout        = "2006-01-02 15:04"
)

// Service сводки и выгрузки для администратора
type Service struct {
	db      ydb.Database
	storage storage.StorageProvider
	audit   audit.Recorder
	now     func() time.Time
}

// NewService создает report сервис
func NewService(db ydb.Database, storage storage.StorageProvider, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{db: db, storage: storage, audit: recorder, now: time.Now}
}

// Dashboard счетчики проектов и монтажеров, выручка за вычетом возвратов, сумма ожидающих выплат
func (s *Service) Dashboard(ctx context.Context, actor models.Actor) (*models.Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}

	byStatus, err := s.db.CountProjectsByStatus(ctx, models.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	stats, err := s.db.PaymentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment stats: %w", err)
	}
	pending, err := s.db.SumPendingPayouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum pending payouts: %w", err)
	}
	editors, err := s.db.CountEditorsByApplicationStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count editors: %w", err)
	}

	d := &models.Dashboard{
		ProjectsByStatus: make(map[models.ProjectStatus]int64, len(models.AllProjectStatuses)),
		EditorsByStatus:  map[models.ApplicationStatus]int64{},
		PendingPayouts:   pending,
		GeneratedAt:      s.now().Unix(),
	}
	for _, st := range models.AllProjectStatuses {
		d.ProjectsByStatus[st] = byStatus[st]
	}
	for _, st := range []models.ApplicationStatus{models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected} {
		d.EditorsByStatus[st] = editors[st]
	}
	if stats != nil {
		// частично возвращенные платежи остаются в выручке за вычетом возврата
		d.Revenue = stats.Sum[models.PaymentCompleted] + stats.Sum[models.PaymentRefunded] - stats.RefundedTotal
		d.Refunds = stats.RefundedTotal
	}
	return d, nil
}

// MonthlyReport собирает xlsx с листами Projects, Payments, Payouts за месяц,
// кладет его в бакет отчетов и возвращает ссылку на скачивание
func (s *Service) MonthlyReport(ctx context.Context, actor models.Actor, year, month int) (*models.ReportResponse, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}
	if month < 1 || month > 12 {
		return nil, app_errors.Validation("month must be between 1 and 12")
	}
	if year < 2000 || year > s.now().Year() {
		return nil, app_errors.Validation("year %d is out of range", year)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	projects, err := s.db.ListProjectsCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	payments, err := s.db.ListPaymentsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	payouts, err := s.db.ListPayoutsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}

	body, err := BuildWorkbook(projects, payments, payouts)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports/%04d-%02d/cutroom_%04d_%02d_%s.xlsx", year, month, year, month, s.now().UTC().Format("20060102_150405"))
	if err := s.storage.PutReport(ctx, key, body, xlsxContentType); err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}
	url, err := s.storage.GenerateReportURL(ctx, key, reportURLLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to sign report url: %w", err)
	}

	logger.FromContext(ctx).Info("Monthly report generated", "key", key, "projects", len(projects), "payments", len(payments), "payouts", len(payouts))
	if err := s.audit.LogAction(ctx, audit.Entry{
		UserID:   actor.UserID,
		Role:     actor.Role,
		Action:   models.AuditReportGenerated,
		EntityID: key,
		Details:  map[string]interface{}{"year": year, "month": month},
	}); err != nil {
		logger.FromContext(ctx).Warn("Failed to record audit entry", "action", models.AuditReportGenerated, "entity_id", key, "error", err)
	}

	return &models.ReportResponse{Year: year, Month: month, ObjectKey: key, URL: url}, nil
}

// BuildWorkbook сериализует выгрузку в xlsx
func BuildWorkbook(projects []*ydb.Project, payments []*ydb.Payment, payouts []*ydb.Payout) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{"Projects", []string{"Project ID", "Title", "Package", "Customer", "Editor", "Total", "Paid", "Editor fee", "Editor payment", "Revisions", "Rating", "Completed at"}, projectRows(projects)},
		{"Payments", []string{"Payment ID", "Project ID", "Type", "Gateway", "Amount", "Currency", "Status", "Refunded", "Created at", "Completed at"}, paymentRows(payments)},
		{"Payouts", []string{"Payout ID", "Editor", "Projects", "Total", "Method", "Status", "Reference", "Created at", "Processed at"}, payoutRows(payouts)},
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sh.name, err)
		}

		for col, header := range sh.headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sh.name, cell, header)
		}
		for r, row := range sh.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write %s row %d: %w", sh.name, r+2, err)
			}
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func projectRows(projects []*ydb.Project) [][]interface{} {
	rows := make([][]interface{}, 0, len(projects))
	for _, p := range projects {
		var rating interface{} = ""
		if p.Rating != nil {
			rating = *p.Rating
		}
		rows = append(rows, []interface{}{
			p.ProjectID, p.Title, string(p.PackageType), p.CustomerID, deref(p.EditorID),
			p.TotalAmount, p.PaidAmount, p.EditorFee, string(p.EditorPaymentStatus),
			p.RevisionsUsed, rating, formatTime(p.CompletedAt),
		})
	}
	return rows
}

func paymentRows(payments []*ydb.Payment) [][]interface{} {
	rows := make([][]interface{}, 0, len(payments))
	for _, p := range payments {
		var refunded int64
		if p.RefundAmount != nil {
			refunded = *p.RefundAmount
		}
		rows = append(rows, []interface{}{
			p.PaymentID, p.ProjectID, string(p.PaymentType), string(p.Gateway), p.Amount, p.Currency,
			string(p.Status), refunded, p.CreatedAt.Format(dateLayout), formatTime(p.CompletedAt),
		})
	}
	return rows
}

func payoutRows(payouts []*ydb.Payout) [][]interface{} {
	rows := make([][]interface{}, 0, len(payouts))
	for _, p := range payouts {
		rows = append(rows, []interface{}{
			p.PayoutID, p.EditorID, len(p.Items), p.TotalAmount, string(p.PaymentMethod),
			string(p.Status), deref(p.TransactionReference), p.CreatedAt.Format(dateLayout), formatTime(p.ProcessedAt),
		})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
