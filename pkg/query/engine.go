package query

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"github.com/ssargent/keepsake/pkg/store"
)

// ScanEngine answers queries by decoding every record in a store. Record
// stores keep no secondary indexes, so each query is a full scan.
type ScanEngine struct {
	store     *store.Store
	extractor FieldExtractor
	logger    *zap.Logger
}

// NewScanEngine creates a new query engine over s
func NewScanEngine(s *store.Store, logger *zap.Logger) *ScanEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanEngine{
		store:     s,
		extractor: &PathFieldExtractor{},
		logger:    logger,
	}
}

// ExecuteQuery executes a single field query
func (qe *ScanEngine) ExecuteQuery(ctx context.Context, query FieldQuery) (QueryIterator, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	return qe.scan(ctx, func(rec Record) (bool, error) {
		value, err := qe.extractor.Extract(rec, query.Field)
		if err != nil {
			// Records without the field never match
			return false, nil
		}
		return matches(query.Operator, value, query.Value), nil
	})
}

// ExecuteExpr executes a boolean expr-lang predicate with each record's
// top-level fields as variables, e.g. `level >= 5 && name startsWith "h"`.
func (qe *ScanEngine) ExecuteExpr(ctx context.Context, expression string) (QueryIterator, error) {
	program, err := compileExpr(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}

	return qe.scan(ctx, func(rec Record) (bool, error) {
		out, err := expr.Run(program, map[string]interface{}(rec))
		if err != nil {
			return false, err
		}
		ok, _ := out.(bool)
		return ok, nil
	})
}

func compileExpr(expression string) (*vm.Program, error) {
	return expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
}

// scan loads each record and keeps the ones match accepts. Records that
// cannot be decoded as objects, or that make match fail, are skipped.
func (qe *ScanEngine) scan(ctx context.Context, match func(Record) (bool, error)) (QueryIterator, error) {
	var results []QueryResult
	for name := range qe.store.List() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var rec Record
		if err := qe.store.Load(name, &rec); err != nil {
			qe.logger.Debug("skipping record", zap.String("name", name), zap.Error(err))
			continue
		}

		ok, err := match(rec)
		if err != nil {
			qe.logger.Debug("predicate failed", zap.String("name", name), zap.Error(err))
			continue
		}
		if ok {
			results = append(results, QueryResult{Name: name, Record: rec})
		}
	}

	return &simpleIterator{results: results}, nil
}

// simpleIterator implements QueryIterator for basic result streaming
type simpleIterator struct {
	results []QueryResult
	index   int
}

func (it *simpleIterator) Next() bool {
	if it.index < len(it.results) {
		it.index++
		return true
	}
	return false
}

func (it *simpleIterator) Result() QueryResult {
	if it.index > 0 && it.index <= len(it.results) {
		return it.results[it.index-1]
	}
	return QueryResult{}
}

func (it *simpleIterator) Close() error {
	it.results = nil
	return nil
}

var _ QueryEngine = (*ScanEngine)(nil)
