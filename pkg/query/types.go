package query

import (
	"context"
	"fmt"
	"strings"
)

// Record is a decoded record payload.
type Record map[string]interface{}

// FieldExtractor defines how to extract field values from decoded records
type FieldExtractor interface {
	Extract(record Record, field string) (interface{}, error)
}

// PathFieldExtractor extracts fields by dotted path, e.g. "stats.hp"
type PathFieldExtractor struct{}

// Extract implements FieldExtractor for nested map payloads
func (e *PathFieldExtractor) Extract(record Record, field string) (interface{}, error) {
	if record == nil {
		return nil, fmt.Errorf("empty record")
	}

	var current interface{} = map[string]interface{}(record)
	for _, part := range strings.Split(field, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, fmt.Errorf("field '%s' not found in record", field)
		}
		current, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("field '%s' not found in record", field)
		}
	}

	return current, nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Record:
		return m, true
	default:
		return nil, false
	}
}

// FieldQuery represents a single field-based query condition
type FieldQuery struct {
	Field    string      // Field path to query (e.g., "level", "stats.hp")
	Operator string      // Comparison operator: "=", "!=", ">", "<", ">=", "<="
	Value    interface{} // Value to compare against
}

// Validate checks if the query is properly formed
func (q *FieldQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if q.Operator == "" {
		return fmt.Errorf("operator cannot be empty")
	}
	validOps := map[string]bool{
		"=": true, "!=": true, ">": true, "<": true, ">=": true, "<=": true,
	}
	if !validOps[q.Operator] {
		return fmt.Errorf("invalid operator: %s", q.Operator)
	}
	return nil
}

// QueryResult represents a single query result
type QueryResult struct {
	Name   string // The record name
	Record Record // The decoded record payload
}

// QueryIterator provides streaming access to query results
type QueryIterator interface {
	Next() bool
	Result() QueryResult
	Close() error
}

// QueryEngine handles query execution
type QueryEngine interface {
	ExecuteQuery(ctx context.Context, query FieldQuery) (QueryIterator, error)
	ExecuteExpr(ctx context.Context, expression string) (QueryIterator, error)
}
