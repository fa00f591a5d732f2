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

const userColumns = `user_id, email, password_hash, full_name, role, profile_data, is_active, created_at, updated_at`

const upsertUserQuery = `
	DECLARE $user_id AS Text;
	DECLARE $email AS Text;
	DECLARE $password_hash AS Text;
	DECLARE $full_name AS Text;
	DECLARE $role AS Text;
	DECLARE $profile_data AS Optional<Json>;
	DECLARE $is_active AS Bool;
	DECLARE $created_at AS Timestamp;
	DECLARE $updated_at AS Timestamp;

	UPSERT INTO users (` + userColumns + `)
	VALUES ($user_id, $email, $password_hash, $full_name, $role, $profile_data, $is_active, $created_at, $updated_at);
`

func userParams(user *User) *table.QueryParameters {
	profile := types.NullValue(types.TypeJSON)
	if user.ProfileData != "" {
		profile = types.OptionalValue(types.JSONValue(user.ProfileData))
	}
	return table.NewQueryParameters(
		table.ValueParam("$user_id", types.TextValue(user.UserID)),
		table.ValueParam("$email", types.TextValue(user.Email)),
		table.ValueParam("$password_hash", types.TextValue(user.PasswordHash)),
		table.ValueParam("$full_name", types.TextValue(user.FullName)),
		table.ValueParam("$role", types.TextValue(string(user.Role))),
		table.ValueParam("$profile_data", profile),
		table.ValueParam("$is_active", types.BoolValue(user.IsActive)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(user.CreatedAt)),
		table.ValueParam("$updated_at", types.TimestampValueFromTime(user.UpdatedAt)),
	)
}

func scanUser(res result.Result) (*User, error) {
	var (
		user        User
		role        string
		profileData *string
	)
	err := res.ScanNamed(
		named.Required("user_id", &user.UserID),
		named.Required("email", &user.Email),
		named.Required("password_hash", &user.PasswordHash),
		named.OptionalWithDefault("full_name", &user.FullName),
		named.OptionalWithDefault("role", &role),
		named.Optional("profile_data", &profileData),
		named.OptionalWithDefault("is_active", &user.IsActive),
		named.OptionalWithDefault("created_at", &user.CreatedAt),
		named.OptionalWithDefault("updated_at", &user.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	user.Role = models.Role(role)
	if profileData != nil {
		user.ProfileData = *profileData
	}
	return &user, nil
}

// CreateUser создает нового пользователя. Дубликат email отклоняется уникальным индексом
func (c *YDBClient) CreateUser(ctx context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		if err := ensureEmailFree(ctx, tx, user.Email); err != nil {
			return err
		}
		_, err := tx.Execute(ctx, upsertUserQuery, userParams(user))
		return err
	})
}

func ensureEmailFree(ctx context.Context, tx table.TransactionActor, email string) error {
	res, err := tx.Execute(ctx, `
		DECLARE $email AS Text;
		SELECT user_id FROM users VIEW email_idx WHERE email = $email;
	`, table.NewQueryParameters(table.ValueParam("$email", types.TextValue(email))))
	if err != nil {
		return err
	}
	defer res.Close()
	if res.NextResultSet(ctx) && res.NextRow() {
		return app_errors.ErrEmailAlreadyExists
	}
	return res.Err()
}

func (c *YDBClient) getUser(ctx context.Context, query string, params *table.QueryParameters) (*User, error) {
	var user *User

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query, params)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			user, err = scanUser(res)
			if err != nil {
				return err
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, app_errors.ErrUserNotFound
	}
	return user, nil
}

// GetUserByID получает пользователя по ID
func (c *YDBClient) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return c.getUser(ctx, `
		DECLARE $user_id AS Text;
		SELECT `+userColumns+` FROM users WHERE user_id = $user_id;
	`, table.NewQueryParameters(table.ValueParam("$user_id", types.TextValue(userID))))
}

// GetUserByEmail получает пользователя по email
func (c *YDBClient) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return c.getUser(ctx, `
		DECLARE $email AS Text;
		SELECT `+userColumns+` FROM users VIEW email_idx WHERE email = $email;
	`, table.NewQueryParameters(table.ValueParam("$email", types.TextValue(email))))
}

// UpdateUser обновляет данные пользователя
func (c *YDBClient) UpdateUser(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now()
	return c.execute(ctx, upsertUserQuery, userParams(user))
}

// CreateRefreshToken сохраняет refresh токен
func (c *YDBClient) CreateRefreshToken(ctx context.Context, token *RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	return c.execute(ctx, `
		DECLARE $token_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $token_hash AS Text;
		DECLARE $expires_at AS Timestamp;
		DECLARE $created_at AS Timestamp;

		UPSERT INTO refresh_tokens (token_id, user_id, token_hash, expires_at, created_at, is_revoked)
		VALUES ($token_id, $user_id, $token_hash, $expires_at, $created_at, false);
	`, table.NewQueryParameters(
		table.ValueParam("$token_id", types.TextValue(token.TokenID)),
		table.ValueParam("$user_id", types.TextValue(token.UserID)),
		table.ValueParam("$token_hash", types.TextValue(token.TokenHash)),
		table.ValueParam("$expires_at", types.TimestampValueFromTime(token.ExpiresAt)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(token.CreatedAt)),
	))
}

// GetRefreshToken получает refresh токен по хешу
func (c *YDBClient) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	query := `
		DECLARE $token_hash AS Text;
		SELECT token_id, user_id, token_hash, expires_at, created_at, is_revoked
		FROM refresh_tokens VIEW token_hash_idx
		WHERE token_hash = $token_hash;
	`

	var token RefreshToken
	var found bool

	err := c.driver.Table().Do(ctx, func(ctx context.Context, session table.Session) error {
		_, res, err := session.Execute(ctx, table.DefaultTxControl(), query,
			table.NewQueryParameters(
				table.ValueParam("$token_hash", types.TextValue(tokenHash)),
			),
		)
		if err != nil {
			return err
		}
		defer res.Close()

		if res.NextResultSet(ctx) && res.NextRow() {
			found = true
			err := res.ScanNamed(
				named.Required("token_id", &token.TokenID),
				named.Required("user_id", &token.UserID),
				named.OptionalWithDefault("token_hash", &token.TokenHash),
				named.OptionalWithDefault("expires_at", &token.ExpiresAt),
				named.OptionalWithDefault("created_at", &token.CreatedAt),
				named.OptionalWithDefault("is_revoked", &token.IsRevoked),
			)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}
		return res.Err()
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, app_errors.ErrRefreshTokenNotFound
	}
	return &token, nil
}

// RevokeRefreshToken отзывает refresh токен
func (c *YDBClient) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return c.execute(ctx, `
		DECLARE $token_hash AS Text;
		UPDATE refresh_tokens SET is_revoked = true WHERE token_hash = $token_hash;
	`, table.NewQueryParameters(
		table.ValueParam("$token_hash", types.TextValue(tokenHash)),
	))
}

// ListUsers возвращает страницу пользователей, новые первыми
func (c *YDBClient) ListUsers(ctx context.Context, filter models.UserFilter) ([]*User, int64, error) {
	qb := &queryBuilder{}
	if filter.Role != "" {
		qb.param("$role", "Text", types.TextValue(string(filter.Role))).where("role = $role")
	}
	if filter.Active != nil {
		qb.param("$is_active", "Bool", types.BoolValue(*filter.Active)).where("is_active = $is_active")
	}

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM users"+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageParams(filter.Limit, filter.Offset)
	qb.param("$limit", "Uint64", types.Uint64Value(limit)).param("$offset", "Uint64", types.Uint64Value(offset))

	var users []*User
	err = c.rows(ctx,
		qb.declareBlock()+"\nSELECT "+userColumns+" FROM users"+qb.whereClause()+" ORDER BY created_at DESC LIMIT $limit OFFSET $offset;",
		qb.params(),
		func() { users = nil },
		func(res result.Result) error {
			u, err := scanUser(res)
			if err != nil {
				return err
			}
			users = append(users, u)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// RevokeUserRefreshTokens отзывает все refresh токены пользователя
func (c *YDBClient) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return c.execute(ctx, `
		DECLARE $user_id AS Text;
		UPDATE refresh_tokens ON
		SELECT token_id, true AS is_revoked
		FROM refresh_tokens VIEW user_idx
		WHERE user_id = $user_id AND is_revoked = false;
	`, table.NewQueryParameters(table.ValueParam("$user_id", types.TextValue(userID))))
}

// DeleteUserTx удаляет учетную запись вместе с профилем монтажера и токенами.
// Пользователь, у которого есть проекты, не удаляется
func (c *YDBClient) DeleteUserTx(ctx context.Context, userID string) error {
	params := table.NewQueryParameters(table.ValueParam("$user_id", types.TextValue(userID)))
	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		found := false
		if err := txRows(ctx, tx, `
			DECLARE $user_id AS Text;
			SELECT user_id FROM users WHERE user_id = $user_id;
		`, params, func(res result.Result) error {
			found = true
			return nil
		}); err != nil {
			return err
		}
		if !found {
			return app_errors.ErrUserNotFound
		}

		var projects uint64
		if err := txRows(ctx, tx, `
			DECLARE $user_id AS Text;
			SELECT COUNT(*) AS total FROM projects
			WHERE customer_id = $user_id OR editor_id = $user_id;
		`, params, func(res result.Result) error {
			return res.ScanNamed(named.Required("total", &projects))
		}); err != nil {
			return err
		}
		if projects > 0 {
			return app_errors.ErrUserHasProjects
		}

		_, err := tx.Execute(ctx, `
			DECLARE $user_id AS Text;
			DELETE FROM refresh_tokens ON
			SELECT token_id FROM refresh_tokens VIEW user_idx WHERE user_id = $user_id;
			DELETE FROM editors WHERE editor_id = $user_id;
			DELETE FROM users WHERE user_id = $user_id;
		`, params)
		return err
	})
}
