package ydb

import (
	"context"
	"fmt"
	"log"
	"time"
)

var tableDefinitions = []struct {
	name  string
	query string
}{
	{"users", `
		CREATE TABLE users (
			user_id Text NOT NULL,
			email Text NOT NULL,
			password_hash Text NOT NULL,
			full_name Text,
			role Text,
			profile_data Json,
			is_active Bool,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (user_id),
			INDEX email_idx GLOBAL UNIQUE ON (email)
		)
	`},
	{"editors", `
		CREATE TABLE editors (
			editor_id Text NOT NULL,
			specializations Json,
			bio Text,
			portfolio_url Text,
			application_status Text,
			rejection_reason Text,
			approved_by Text,
			approved_at Timestamp,
			is_verified Bool,
			is_available Bool,
			max_concurrent_projects Int32,
			current_workload Int32,
			average_rating Double,
			total_reviews Int64,
			total_earnings Int64,
			pending_earnings Int64,
			payout_method Text,
			payout_details Json,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (editor_id),
			INDEX application_status_idx GLOBAL ON (application_status)
		)
	`},
	{"packages", `
		CREATE TABLE packages (
			package_type Text NOT NULL,
			name Text,
			description Text,
			base_price Int64,
			max_revisions Int32,
			estimated_delivery_days Int32,
			features Json,
			is_active Bool,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (package_type)
		)
	`},
	{"projects", `
		CREATE TABLE projects (
			project_id Text NOT NULL,
			customer_id Text NOT NULL,
			editor_id Text,
			assigned_by Text,
			title Text,
			description Text,
			package_type Text,
			editing_instructions Text,
			special_requirements Json,
			status Text,
			raw_footage Json,
			edited_video Json,
			revisions Json,
			max_revisions Int32,
			revisions_used Int32,
			deadline Timestamp,
			estimated_delivery Timestamp,
			actual_delivery Timestamp,
			total_amount Int64,
			paid_amount Int64,
			payment_status Text,
			editor_fee Int64,
			editor_payment_status Text,
			payout_id Text,
			rating Int32,
			rating_feedback Text,
			cancellation_reason Text,
			assigned_at Timestamp,
			started_at Timestamp,
			completed_at Timestamp,
			cancelled_at Timestamp,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (project_id),
			INDEX customer_idx GLOBAL ON (customer_id),
			INDEX editor_idx GLOBAL ON (editor_id),
			INDEX status_idx GLOBAL ON (status, deadline)
		)
	`},
	{"payments", `
		CREATE TABLE payments (
			payment_id Text NOT NULL,
			project_id Text NOT NULL,
			user_id Text NOT NULL,
			amount Int64,
			currency Text,
			payment_type Text,
			gateway Text,
			order_id Text,
			gateway_payment_id Text,
			gateway_signature Text,
			payment_method Text,
			gateway_details Json,
			status Text,
			failure_reason Text,
			refund_amount Int64,
			refund_reason Text,
			refund_transaction_id Text,
			created_at Timestamp,
			completed_at Timestamp,
			failed_at Timestamp,
			refunded_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (payment_id),
			INDEX project_idx GLOBAL ON (project_id),
			INDEX user_idx GLOBAL ON (user_id),
			INDEX order_idx GLOBAL ON (order_id)
		)
	`},
	{"payouts", `
		CREATE TABLE payouts (
			payout_id Text NOT NULL,
			editor_id Text NOT NULL,
			items Json,
			total_amount Int64,
			period_start Timestamp,
			period_end Timestamp,
			payment_method Text,
			account_details Json,
			status Text,
			transaction_reference Text,
			failure_reason Text,
			created_by Text,
			processed_at Timestamp,
			created_at Timestamp,
			updated_at Timestamp,
			PRIMARY KEY (payout_id),
			INDEX editor_idx GLOBAL ON (editor_id)
		)
	`},
	{"notifications", `
		CREATE TABLE notifications (
			notification_id Text NOT NULL,
			user_id Text NOT NULL,
			type Text,
			title Text,
			message Text,
			related_project_id Text,
			priority Text,
			is_read Bool,
			read_at Timestamp,
			delivered_at Timestamp,
			created_at Timestamp,
			PRIMARY KEY (notification_id),
			INDEX user_idx GLOBAL ON (user_id, created_at)
		)
	`},
	{"messages", `
		CREATE TABLE messages (
			message_id Text NOT NULL,
			project_id Text NOT NULL,
			sender_id Text NOT NULL,
			receiver_id Text NOT NULL,
			message_type Text,
			content Text,
			attachment Json,
			is_read Bool,
			read_at Timestamp,
			created_at Timestamp,
			PRIMARY KEY (message_id),
			INDEX project_idx GLOBAL ON (project_id, created_at),
			INDEX receiver_idx GLOBAL ON (receiver_id, created_at),
			INDEX sender_idx GLOBAL ON (sender_id, created_at)
		)
	`},
	{"uploads", `
		CREATE TABLE uploads (
			upload_id Text NOT NULL,
			project_id Text NOT NULL,
			uploaded_by Text,
			kind Text,
			file_name Text,
			file_size_bytes Int64,
			content_type Text,
			storage_path Text,
			multipart_id Text,
			upload_status Text,
			total_parts Int32,
			upload_expires_at Timestamp,
			created_at Timestamp,
			uploaded_at Timestamp,
			PRIMARY KEY (upload_id),
			INDEX project_idx GLOBAL ON (project_id)
		)
	`},
	{"refresh_tokens", `
		CREATE TABLE refresh_tokens (
			token_id Text NOT NULL,
			user_id Text NOT NULL,
			token_hash Text,
			expires_at Timestamp,
			created_at Timestamp,
			is_revoked Bool,
			PRIMARY KEY (token_id),
			INDEX user_idx GLOBAL ON (user_id),
			INDEX token_hash_idx GLOBAL ON (token_hash)
		)
	`},
	{"audit_logs", `
		CREATE TABLE audit_logs (
			id Text NOT NULL,
			timestamp Timestamp,
			user_id Text,
			role Text,
			action_type Text,
			action_result Text,
			entity_id Text,
			ip_address Text,
			user_agent Text,
			details Json,
			PRIMARY KEY (id),
			INDEX user_idx GLOBAL ON (user_id),
			INDEX entity_idx GLOBAL ON (entity_id)
		)
	`},
}

// createTables создает таблицы в базе данных
func (c *YDBClient) createTables(ctx context.Context) error {
	log.Println("Starting table creation...")
	for _, def := range tableDefinitions {
		log.Printf("Creating table: %s", def.name)
		exists, err := c.tableExists(ctx, def.name)
		if err != nil {
			return fmt.Errorf("failed to check %s table existence: %w", def.name, err)
		}
		if exists {
			log.Printf("Table %s already exists, skipping creation", def.name)
			continue
		}
		if err := c.executeSchemeQuery(ctx, def.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", def.name, err)
		}

		// Небольшая задержка между созданием таблиц для избежания лимита schema operations
		time.Sleep(500 * time.Millisecond)
	}
	return nil
}
