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

const projectColumns = `project_id, customer_id, editor_id, assigned_by, title, description, package_type,
	editing_instructions, special_requirements, status, raw_footage, edited_video, revisions,
	max_revisions, revisions_used, deadline, estimated_delivery, actual_delivery,
	total_amount, paid_amount, payment_status, editor_fee, editor_payment_status, payout_id,
	rating, rating_feedback, cancellation_reason,
	assigned_at, started_at, completed_at, cancelled_at, created_at, updated_at`

const upsertProjectQuery = `
	DECLARE $project_id AS Text;
	DECLARE $customer_id AS Text;
	DECLARE $editor_id AS Optional<Text>;
	DECLARE $assigned_by AS Optional<Text>;
	DECLARE $title AS Text;
	DECLARE $description AS Text;
	DECLARE $package_type AS Text;
	DECLARE $editing_instructions AS Text;
	DECLARE $special_requirements AS Optional<Json>;
	DECLARE $status AS Text;
	DECLARE $raw_footage AS Optional<Json>;
	DECLARE $edited_video AS Optional<Json>;
	DECLARE $revisions AS Optional<Json>;
	DECLARE $max_revisions AS Int32;
	DECLARE $revisions_used AS Int32;
	DECLARE $deadline AS Timestamp;
	DECLARE $estimated_delivery AS Timestamp;
	DECLARE $actual_delivery AS Optional<Timestamp>;
	DECLARE $total_amount AS Int64;
	DECLARE $paid_amount AS Int64;
	DECLARE $payment_status AS Text;
	DECLARE $editor_fee AS Int64;
	DECLARE $editor_payment_status AS Text;
	DECLARE $payout_id AS Optional<Text>;
	DECLARE $rating AS Optional<Int32>;
	DECLARE $rating_feedback AS Optional<Text>;
	DECLARE $cancellation_reason AS Optional<Text>;
	DECLARE $assigned_at AS Optional<Timestamp>;
	DECLARE $started_at AS Optional<Timestamp>;
	DECLARE $completed_at AS Optional<Timestamp>;
	DECLARE $cancelled_at AS Optional<Timestamp>;
	DECLARE $created_at AS Timestamp;
	DECLARE $updated_at AS Timestamp;

	UPSERT INTO projects (` + projectColumns + `)
	VALUES ($project_id, $customer_id, $editor_id, $assigned_by, $title, $description, $package_type,
		$editing_instructions, $special_requirements, $status, $raw_footage, $edited_video, $revisions,
		$max_revisions, $revisions_used, $deadline, $estimated_delivery, $actual_delivery,
		$total_amount, $paid_amount, $payment_status, $editor_fee, $editor_payment_status, $payout_id,
		$rating, $rating_feedback, $cancellation_reason,
		$assigned_at, $started_at, $completed_at, $cancelled_at, $created_at, $updated_at);
`

func projectParams(p *Project) (*table.QueryParameters, error) {
	requirements, err := jsonValue(p.SpecialRequirements)
	if err != nil {
		return nil, err
	}
	rawFootage, err := jsonValue(p.RawFootage)
	if err != nil {
		return nil, err
	}
	editedVideo, err := jsonValue(p.EditedVideo)
	if err != nil {
		return nil, err
	}
	revisions, err := jsonValue(p.Revisions)
	if err != nil {
		return nil, err
	}

	return table.NewQueryParameters(
		table.ValueParam("$project_id", types.TextValue(p.ProjectID)),
		table.ValueParam("$customer_id", types.TextValue(p.CustomerID)),
		table.ValueParam("$editor_id", optText(p.EditorID)),
		table.ValueParam("$assigned_by", optText(p.AssignedBy)),
		table.ValueParam("$title", types.TextValue(p.Title)),
		table.ValueParam("$description", types.TextValue(p.Description)),
		table.ValueParam("$package_type", types.TextValue(string(p.PackageType))),
		table.ValueParam("$editing_instructions", types.TextValue(p.EditingInstructions)),
		table.ValueParam("$special_requirements", requirements),
		table.ValueParam("$status", types.TextValue(string(p.Status))),
		table.ValueParam("$raw_footage", rawFootage),
		table.ValueParam("$edited_video", editedVideo),
		table.ValueParam("$revisions", revisions),
		table.ValueParam("$max_revisions", types.Int32Value(p.MaxRevisions)),
		table.ValueParam("$revisions_used", types.Int32Value(p.RevisionsUsed)),
		table.ValueParam("$deadline", types.TimestampValueFromTime(p.Deadline)),
		table.ValueParam("$estimated_delivery", types.TimestampValueFromTime(p.EstimatedDelivery)),
		table.ValueParam("$actual_delivery", optTimestamp(p.ActualDelivery)),
		table.ValueParam("$total_amount", types.Int64Value(p.TotalAmount)),
		table.ValueParam("$paid_amount", types.Int64Value(p.PaidAmount)),
		table.ValueParam("$payment_status", types.TextValue(string(p.PaymentStatus))),
		table.ValueParam("$editor_fee", types.Int64Value(p.EditorFee)),
		table.ValueParam("$editor_payment_status", types.TextValue(string(p.EditorPaymentStatus))),
		table.ValueParam("$payout_id", optText(p.PayoutID)),
		table.ValueParam("$rating", optInt32(p.Rating)),
		table.ValueParam("$rating_feedback", optText(p.RatingFeedback)),
		table.ValueParam("$cancellation_reason", optText(p.CancellationReason)),
		table.ValueParam("$assigned_at", optTimestamp(p.AssignedAt)),
		table.ValueParam("$started_at", optTimestamp(p.StartedAt)),
		table.ValueParam("$completed_at", optTimestamp(p.CompletedAt)),
		table.ValueParam("$cancelled_at", optTimestamp(p.CancelledAt)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(p.CreatedAt)),
		table.ValueParam("$updated_at", types.TimestampValueFromTime(p.UpdatedAt)),
	), nil
}

func scanProject(res result.Result) (*Project, error) {
	var (
		p                                              Project
		packageType, status, paymentStatus, editorPay  string
		requirements, rawFootage, editedVideo, revJSON *string
	)
	err := res.ScanNamed(
		named.Required("project_id", &p.ProjectID),
		named.Required("customer_id", &p.CustomerID),
		named.Optional("editor_id", &p.EditorID),
		named.Optional("assigned_by", &p.AssignedBy),
		named.OptionalWithDefault("title", &p.Title),
		named.OptionalWithDefault("description", &p.Description),
		named.OptionalWithDefault("package_type", &packageType),
		named.OptionalWithDefault("editing_instructions", &p.EditingInstructions),
		named.Optional("special_requirements", &requirements),
		named.OptionalWithDefault("status", &status),
		named.Optional("raw_footage", &rawFootage),
		named.Optional("edited_video", &editedVideo),
		named.Optional("revisions", &revJSON),
		named.OptionalWithDefault("max_revisions", &p.MaxRevisions),
		named.OptionalWithDefault("revisions_used", &p.RevisionsUsed),
		named.OptionalWithDefault("deadline", &p.Deadline),
		named.OptionalWithDefault("estimated_delivery", &p.EstimatedDelivery),
		named.Optional("actual_delivery", &p.ActualDelivery),
		named.OptionalWithDefault("total_amount", &p.TotalAmount),
		named.OptionalWithDefault("paid_amount", &p.PaidAmount),
		named.OptionalWithDefault("payment_status", &paymentStatus),
		named.OptionalWithDefault("editor_fee", &p.EditorFee),
		named.OptionalWithDefault("editor_payment_status", &editorPay),
		named.Optional("payout_id", &p.PayoutID),
		named.Optional("rating", &p.Rating),
		named.Optional("rating_feedback", &p.RatingFeedback),
		named.Optional("cancellation_reason", &p.CancellationReason),
		named.Optional("assigned_at", &p.AssignedAt),
		named.Optional("started_at", &p.StartedAt),
		named.Optional("completed_at", &p.CompletedAt),
		named.Optional("cancelled_at", &p.CancelledAt),
		named.OptionalWithDefault("created_at", &p.CreatedAt),
		named.OptionalWithDefault("updated_at", &p.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	p.PackageType = models.PackageType(packageType)
	p.Status = models.ProjectStatus(status)
	p.PaymentStatus = models.PaymentStatus(paymentStatus)
	p.EditorPaymentStatus = models.EditorPaymentStatus(editorPay)

	if err := decodeJSON(requirements, &p.SpecialRequirements); err != nil {
		return nil, err
	}
	if err := decodeJSON(rawFootage, &p.RawFootage); err != nil {
		return nil, err
	}
	if err := decodeJSON(revJSON, &p.Revisions); err != nil {
		return nil, err
	}
	if editedVideo != nil && *editedVideo != "" && *editedVideo != "null" {
		p.EditedVideo = &models.EditedVideo{}
		if err := decodeJSON(editedVideo, p.EditedVideo); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// CreateProject сохраняет новый проект
func (c *YDBClient) CreateProject(ctx context.Context, project *Project) error {
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().Truncate(time.Microsecond)
	}
	project.UpdatedAt = project.CreatedAt

	params, err := projectParams(project)
	if err != nil {
		return err
	}
	return c.execute(ctx, upsertProjectQuery, params)
}

// GetProject получает проект по ID
func (c *YDBClient) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project *Project
	err := c.rows(ctx, `
		DECLARE $project_id AS Text;
		SELECT `+projectColumns+` FROM projects WHERE project_id = $project_id;
	`, table.NewQueryParameters(table.ValueParam("$project_id", types.TextValue(projectID))),
		nil,
		func(res result.Result) (err error) {
			project, err = scanProject(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, app_errors.ErrProjectNotFound
	}
	return project, nil
}

// GetProjectsByIDs получает проекты по списку ID. Отсутствующие ID пропускаются
func (c *YDBClient) GetProjectsByIDs(ctx context.Context, projectIDs []string) ([]*Project, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var projects []*Project
	err := c.rows(ctx, `
		DECLARE $ids AS List<Text>;
		SELECT `+projectColumns+` FROM projects WHERE project_id IN $ids;
	`, table.NewQueryParameters(table.ValueParam("$ids", textList(projectIDs))),
		func() { projects = nil },
		func(res result.Result) error {
			p, err := scanProject(res)
			if err != nil {
				return err
			}
			projects = append(projects, p)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func projectFilter(filter models.ProjectFilter) *queryBuilder {
	qb := &queryBuilder{}
	if filter.CustomerID != "" {
		qb.param("$customer_id", "Text", types.TextValue(filter.CustomerID)).where("customer_id = $customer_id")
	}
	if filter.EditorID != "" {
		qb.param("$editor_id", "Text", types.TextValue(filter.EditorID)).where("editor_id = $editor_id")
	}
	if filter.Status != "" {
		qb.param("$status", "Text", types.TextValue(string(filter.Status))).where("status = $status")
	}
	if filter.Unassigned {
		qb.where("editor_id IS NULL")
	}
	return qb
}

func (c *YDBClient) listProjects(ctx context.Context, query string, params *table.QueryParameters) ([]*Project, error) {
	var projects []*Project
	err := c.rows(ctx, query, params,
		func() { projects = nil },
		func(res result.Result) error {
			p, err := scanProject(res)
			if err != nil {
				return err
			}
			projects = append(projects, p)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ListProjects возвращает страницу проектов по фильтру и общее количество
func (c *YDBClient) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*Project, int64, error) {
	qb := projectFilter(filter)

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM projects"+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageParams(filter.Limit, filter.Offset)
	qb.param("$limit", "Uint64", types.Uint64Value(limit)).param("$offset", "Uint64", types.Uint64Value(offset))
	query := qb.declareBlock() + "\nSELECT " + projectColumns + " FROM projects" + qb.whereClause() +
		" ORDER BY created_at DESC LIMIT $limit OFFSET $offset;"

	projects, err := c.listProjects(ctx, query, qb.params())
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ListProjectsDueSoon незавершенные проекты с дедлайном до before. editorID опционален
func (c *YDBClient) ListProjectsDueSoon(ctx context.Context, before time.Time, editorID string) ([]*Project, error) {
	qb := &queryBuilder{}
	qb.param("$before", "Timestamp", types.TimestampValueFromTime(before)).
		where("deadline <= $before").
		where("status NOT IN ('completed', 'cancelled')")
	if editorID != "" {
		qb.param("$editor_id", "Text", types.TextValue(editorID)).where("editor_id = $editor_id")
	}
	query := qb.declareBlock() + "\nSELECT " + projectColumns + " FROM projects" + qb.whereClause() + " ORDER BY deadline;"
	return c.listProjects(ctx, query, qb.params())
}

// ListProjectsCompletedBetween проекты, завершенные в интервале [from, to)
func (c *YDBClient) ListProjectsCompletedBetween(ctx context.Context, from, to time.Time) ([]*Project, error) {
	return c.listProjects(ctx, `
		DECLARE $from AS Timestamp;
		DECLARE $to AS Timestamp;
		SELECT `+projectColumns+` FROM projects
		WHERE status = 'completed' AND completed_at >= $from AND completed_at < $to
		ORDER BY completed_at;
	`, table.NewQueryParameters(
		table.ValueParam("$from", types.TimestampValueFromTime(from)),
		table.ValueParam("$to", types.TimestampValueFromTime(to)),
	))
}

// CountProjectsByStatus количество проектов по статусам в рамках фильтра
func (c *YDBClient) CountProjectsByStatus(ctx context.Context, filter models.ProjectFilter) (map[models.ProjectStatus]int64, error) {
	filter.Status = ""
	qb := projectFilter(filter)
	counts := make(map[models.ProjectStatus]int64)
	err := c.groupCount(ctx,
		qb.declareBlock()+"\nSELECT status AS key, COUNT(*) AS cnt FROM projects"+qb.whereClause()+" GROUP BY status;",
		qb.params(),
		func(key string, n int64) { counts[models.ProjectStatus(key)] = n },
	)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// readProjectTx читает проект внутри транзакции
func readProjectTx(ctx context.Context, tx table.TransactionActor, projectID string) (*Project, error) {
	var project *Project
	err := txRows(ctx, tx, `
		DECLARE $project_id AS Text;
		SELECT `+projectColumns+` FROM projects WHERE project_id = $project_id;
	`, table.NewQueryParameters(table.ValueParam("$project_id", types.TextValue(projectID))),
		func(res result.Result) (err error) {
			project, err = scanProject(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, app_errors.ErrProjectNotFound
	}
	return project, nil
}

// casProject перечитывает проект и сверяет его со статусом и версией, с которыми работал вызывающий
func casProject(ctx context.Context, tx table.TransactionActor, projectID string, expected models.ProjectStatus, version time.Time) (*Project, error) {
	current, err := readProjectTx(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if err := checkProjectVersion(current, expected, version); err != nil {
		return nil, err
	}
	return current, nil
}

func writeProjectTx(ctx context.Context, tx table.TransactionActor, project *Project) error {
	params, err := projectParams(project)
	if err != nil {
		return err
	}
	_, err = tx.Execute(ctx, upsertProjectQuery, params)
	return err
}

// UpdateProjectTx сохраняет проект, если его статус в базе равен expected
func (c *YDBClient) UpdateProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error {
	version := project.UpdatedAt
	project.UpdatedAt = time.Now().Truncate(time.Microsecond)
	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		if _, err := casProject(ctx, tx, project.ProjectID, expected, version); err != nil {
			return err
		}
		return writeProjectTx(ctx, tx, project)
	})
}

// AssignProjectTx назначает монтажера: CAS по статусу проекта, повторная проверка
// доступности и загрузки монтажера, инкремент current_workload
func (c *YDBClient) AssignProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error {
	if project.EditorID == nil {
		return app_errors.Validation("editor id is required for assignment")
	}
	editorID := *project.EditorID
	version := project.UpdatedAt
	project.UpdatedAt = time.Now().Truncate(time.Microsecond)

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		if _, err := casProject(ctx, tx, project.ProjectID, expected, version); err != nil {
			return err
		}

		var (
			found                 bool
			appStatus             string
			isAvailable           bool
			workload, maxProjects int32
		)
		err := txRows(ctx, tx, `
			DECLARE $editor_id AS Text;
			SELECT application_status, is_available, current_workload, max_concurrent_projects
			FROM editors WHERE editor_id = $editor_id;
		`, table.NewQueryParameters(table.ValueParam("$editor_id", types.TextValue(editorID))),
			func(res result.Result) error {
				found = true
				return res.ScanNamed(
					named.OptionalWithDefault("application_status", &appStatus),
					named.OptionalWithDefault("is_available", &isAvailable),
					named.OptionalWithDefault("current_workload", &workload),
					named.OptionalWithDefault("max_concurrent_projects", &maxProjects),
				)
			})
		if err != nil {
			return err
		}
		if !found {
			return app_errors.ErrEditorNotFound
		}
		if !isAvailable || models.ApplicationStatus(appStatus) != models.ApplicationApproved {
			return app_errors.ErrEditorNotAvailable
		}
		if workload >= maxProjects {
			return app_errors.ErrWorkloadExceeded
		}

		if err := writeProjectTx(ctx, tx, project); err != nil {
			return err
		}
		_, err = tx.Execute(ctx, `
			DECLARE $editor_id AS Text;
			DECLARE $updated_at AS Timestamp;
			UPDATE editors SET current_workload = current_workload + 1, updated_at = $updated_at
			WHERE editor_id = $editor_id;
		`, table.NewQueryParameters(
			table.ValueParam("$editor_id", types.TextValue(editorID)),
			table.ValueParam("$updated_at", types.TimestampValueFromTime(project.UpdatedAt)),
		))
		return err
	})
}

// releaseEditorQuery уменьшает загрузку монтажера и начисляет гонорар в ожидающие выплаты
const releaseEditorQuery = `
	DECLARE $editor_id AS Text;
	DECLARE $fee AS Int64;
	DECLARE $updated_at AS Timestamp;
	UPDATE editors SET
		current_workload = IF(current_workload > 0, current_workload - 1, 0),
		pending_earnings = pending_earnings + $fee,
		updated_at = $updated_at
	WHERE editor_id = $editor_id;
`

// CompleteProjectTx завершает проект и одной транзакцией начисляет гонорар монтажеру
func (c *YDBClient) CompleteProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error {
	version := project.UpdatedAt
	project.UpdatedAt = time.Now().Truncate(time.Microsecond)

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		if _, err := casProject(ctx, tx, project.ProjectID, expected, version); err != nil {
			return err
		}
		if err := writeProjectTx(ctx, tx, project); err != nil {
			return err
		}
		if project.EditorID == nil {
			return nil
		}
		_, err := tx.Execute(ctx, releaseEditorQuery, table.NewQueryParameters(
			table.ValueParam("$editor_id", types.TextValue(*project.EditorID)),
			table.ValueParam("$fee", types.Int64Value(project.EditorFee)),
			table.ValueParam("$updated_at", types.TimestampValueFromTime(project.UpdatedAt)),
		))
		return err
	})
}

// CancelProjectTx отменяет проект и освобождает слот монтажера
func (c *YDBClient) CancelProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error {
	version := project.UpdatedAt
	project.UpdatedAt = time.Now().Truncate(time.Microsecond)

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		if _, err := casProject(ctx, tx, project.ProjectID, expected, version); err != nil {
			return err
		}
		if err := writeProjectTx(ctx, tx, project); err != nil {
			return err
		}
		if project.EditorID == nil {
			return nil
		}
		_, err := tx.Execute(ctx, releaseEditorQuery, table.NewQueryParameters(
			table.ValueParam("$editor_id", types.TextValue(*project.EditorID)),
			table.ValueParam("$fee", types.Int64Value(0)),
			table.ValueParam("$updated_at", types.TimestampValueFromTime(project.UpdatedAt)),
		))
		return err
	})
}

// RateProjectTx сохраняет оценку и атомарно пересчитывает средний рейтинг монтажера
func (c *YDBClient) RateProjectTx(ctx context.Context, projectID string, rating int32, feedback string) (*Project, error) {
	var rated *Project

	err := c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		project, err := readProjectTx(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if project.Status != models.StatusCompleted {
			return app_errors.InvalidState("project can only be rated once completed")
		}
		if project.Rating != nil {
			return app_errors.ErrAlreadyRated
		}

		project.Rating = &rating
		project.RatingFeedback = &feedback
		project.UpdatedAt = time.Now().Truncate(time.Microsecond)
		if err := writeProjectTx(ctx, tx, project); err != nil {
			return err
		}

		if project.EditorID != nil {
			_, err = tx.Execute(ctx, `
				DECLARE $editor_id AS Text;
				DECLARE $rating AS Int32;
				DECLARE $updated_at AS Timestamp;
				UPDATE editors SET
					average_rating = (average_rating * CAST(total_reviews AS Double) + CAST($rating AS Double))
						/ CAST(total_reviews + 1 AS Double),
					total_reviews = total_reviews + 1,
					updated_at = $updated_at
				WHERE editor_id = $editor_id;
			`, table.NewQueryParameters(
				table.ValueParam("$editor_id", types.TextValue(*project.EditorID)),
				table.ValueParam("$rating", types.Int32Value(rating)),
				table.ValueParam("$updated_at", types.TimestampValueFromTime(project.UpdatedAt)),
			))
			if err != nil {
				return err
			}
		}
		rated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rated, nil
}
