package ydb

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
)

// queryBuilder собирает DECLARE-блок и параметры для запросов с динамическими условиями
type queryBuilder struct {
	declares   []string
	conditions []string
	opts       []table.ParameterOption
}

func (q *queryBuilder) param(name, yqlType string, v types.Value) *queryBuilder {
	q.declares = append(q.declares, fmt.Sprintf("DECLARE %s AS %s;", name, yqlType))
	q.opts = append(q.opts, table.ValueParam(name, v))
	return q
}

func (q *queryBuilder) where(cond string) *queryBuilder {
	q.conditions = append(q.conditions, cond)
	return q
}

func (q *queryBuilder) declareBlock() string {
	return strings.Join(q.declares, "\n")
}

func (q *queryBuilder) whereClause() string {
	if len(q.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conditions, " AND ")
}

func (q *queryBuilder) params() *table.QueryParameters {
	return table.NewQueryParameters(q.opts...)
}

func optText(s *string) types.Value {
	if s == nil {
		return types.NullValue(types.TypeText)
	}
	return types.OptionalValue(types.TextValue(*s))
}

func optTimestamp(t *time.Time) types.Value {
	if t == nil {
		return types.NullValue(types.TypeTimestamp)
	}
	return types.OptionalValue(types.TimestampValueFromTime(*t))
}

func optInt64(v *int64) types.Value {
	if v == nil {
		return types.NullValue(types.TypeInt64)
	}
	return types.OptionalValue(types.Int64Value(*v))
}

func optInt32(v *int32) types.Value {
	if v == nil {
		return types.NullValue(types.TypeInt32)
	}
	return types.OptionalValue(types.Int32Value(*v))
}

// jsonValue сериализует значение в колонку Json. nil-срез пишется как []
func jsonValue(v interface{}) (types.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	if string(b) == "null" {
		return types.NullValue(types.TypeJSON), nil
	}
	return types.OptionalValue(types.JSONValue(string(b))), nil
}

// decodeJSON читает колонку Json, пустое значение оставляет dst без изменений
func decodeJSON(raw *string, dst interface{}) error {
	if raw == nil || *raw == "" || *raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(*raw), dst); err != nil {
		return fmt.Errorf("failed to decode json column: %w", err)
	}
	return nil
}

func textList(values []string) types.Value {
	items := make([]types.Value, 0, len(values))
	for _, v := range values {
		items = append(items, types.TextValue(v))
	}
	if len(items) == 0 {
		return types.ZeroValue(types.List(types.TypeText))
	}
	return types.ListValue(items...)
}

func pageParams(limit, offset int) (uint64, uint64) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}
