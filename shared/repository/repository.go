// Package repository is the shared sqlx data access layer. A Repository[T] derives its column
// list from T's struct tags:
//
//	db:"name"             column read and written on the repository table
//	table:"rooms"         column comes from a joined table and is read-only
//	column:"title"        source column when it differs from the db tag (selected AS the db tag)
//
// Models that read joined columns implement GetJoinQuery.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/shared/constant"
	"resort/shared/dto"
	"resort/shared/logger"

	"github.com/jmoiron/sqlx"
)

var errRequiredFilter = errors.New("refusing to run without a filter")

type column struct {
	table string
	name  string
	field string
}

func (c column) selectExpr() string {
	if c.name == c.field {
		return c.table + "." + c.name
	}

	return fmt.Sprintf("%s.%s AS %s", c.table, c.name, c.field)
}

type joiner interface {
	GetJoinQuery() string
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

// CRUD is the query surface shared by every table repository. Domain repositories embed it
// and add their own queries.
type CRUD[T any] interface {
	Insert(ctx context.Context, model T) error
	Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error)
	GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error)
	Exist(ctx context.Context, filter dto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter dto.FilterGroup) (int, error)
	Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error
	Delete(ctx context.Context, filter dto.FilterGroup) error
}

var _ CRUD[struct{}] = (*Repository[struct{}])(nil)

type Repository[T any] struct {
	db       *postgres.Connection
	otel     otel.Otel
	table    string
	entity   string
	key      string
	columns  []column
	writable []string
	join     string
}

func NewRepository[T any](entity, table, key string, db *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	repo := Repository[T]{
		db:      db,
		otel:    otl,
		table:   table,
		entity:  entity,
		key:     key,
		columns: columnsOf(table, reflect.TypeOf(zero)),
	}

	for _, col := range repo.columns {
		if col.table == table {
			repo.writable = append(repo.writable, col.field)
		}
	}

	if j, ok := any(zero).(joiner); ok {
		repo.join = j.GetJoinQuery()
	}

	return repo
}

func columnsOf(table string, typ reflect.Type) []column {
	var columns []column

	for i := range typ.NumField() {
		field := typ.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, columnsOf(table, field.Type)...)

			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" {
			continue
		}

		col := column{table: table, name: tag, field: tag}

		if source := field.Tag.Get("table"); source != "" {
			col.table = source
		}

		if name := field.Tag.Get("column"); name != "" {
			col.name = name
		}

		columns = append(columns, col)
	}

	return columns
}

func (repo *Repository[T]) scope(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName,
		constant.OtelRepositoryScopeName+"."+repo.entity+"."+op)
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	return repo.insert(ctx, repo.db.Write, model, "Insert")
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	return repo.insert(ctx, sqltx, model, "InsertTx")
}

func (repo *Repository[T]) insert(ctx context.Context, exec execer, model T, op string) error {
	ctx, scope := repo.scope(ctx, op)
	defer scope.End()

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		repo.table, strings.Join(repo.writable, ", "), strings.Join(repo.writable, ", :"))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, model); err != nil {
		return repo.fail(scope, "insert", err)
	}

	return nil
}

// Get returns the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	var model T

	where, args := repo.BuildWhereClause(ctx, filter)
	query := repo.selectFrom(columns) + where

	err := repo.read(ctx, scope, query, args, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &model, args)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get", err)
	}

	return model, nil
}

// GetAll pages with LIMIT/OFFSET and sorts only by the repository's own columns.
func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)

	var query strings.Builder

	query.WriteString(repo.selectFrom(columns))
	query.WriteString(where)

	if params.SortBy != "" && params.SortDir != "" && repo.sortable(params.SortBy) {
		fmt.Fprintf(&query, " ORDER BY %s.%s %s", repo.table, params.SortBy, params.SortDir)
	}

	if params.Limit > 0 {
		args["limit"] = params.Limit
		query.WriteString(" LIMIT :limit")

		if params.Page > 0 {
			args["offset"] = (params.Page - 1) * params.Limit
			query.WriteString(" OFFSET :offset")
		}
	}

	var models []T

	err := repo.read(ctx, scope, query.String(), args, func(stmt *sqlx.NamedStmt) error {
		return stmt.SelectContext(ctx, &models, args)
	})
	if err != nil {
		return models, repo.fail(scope, "list", err)
	}

	return models, nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return false, errRequiredFilter
	}

	var exist bool

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s%s)", repo.table, where)

	err := repo.read(ctx, scope, query, args, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &exist, args)
	})
	if err != nil {
		return false, repo.fail(scope, "check existence", err)
	}

	return exist, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)

	var count int

	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s%s%s", repo.table, repo.key, repo.table, repo.joinClause(), where)

	err := repo.read(ctx, scope, query, args, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &count, args)
	})
	if err != nil {
		return 0, repo.fail(scope, "count", err)
	}

	return count, nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	return repo.delete(ctx, repo.db.Write, filter, "Delete")
}

func (repo *Repository[T]) DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) error {
	return repo.delete(ctx, sqltx, filter, "DeleteTx")
}

func (repo *Repository[T]) delete(ctx context.Context, exec execer, filter dto.FilterGroup, op string) error {
	ctx, scope := repo.scope(ctx, op)
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return errRequiredFilter
	}

	query := "DELETE FROM " + repo.table + where
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "delete", err)
	}

	return nil
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	_, err := repo.update(ctx, repo.db.Write, mod, filter, "Update")

	return err
}

func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) error {
	_, err := repo.update(ctx, sqltx, mod, filter, "UpdateTx")

	return err
}

// UpdateTxAffected reports how many rows matched, so callers can detect lost compare-and-set races.
func (repo *Repository[T]) UpdateTxAffected(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) (int64, error) {
	return repo.update(ctx, sqltx, mod, filter, "UpdateTxAffected")
}

// update binds new values under their column names, so filter arg names must not collide
// with updated columns (use Filter.ArgName).
func (repo *Repository[T]) update(ctx context.Context, exec execer, mod map[string]any, filter dto.FilterGroup, op string) (int64, error) {
	ctx, scope := repo.scope(ctx, op)
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return 0, errRequiredFilter
	}

	keys := slices.Sorted(maps.Keys(mod))
	sets := make([]string, len(keys))

	for i, key := range keys {
		sets[i] = key + " = :" + key
	}

	query := fmt.Sprintf("UPDATE %s SET %s%s", repo.table, strings.Join(sets, ", "), where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	maps.Copy(args, mod)

	result, err := exec.NamedExecContext(ctx, query, args)
	if err != nil {
		return 0, repo.fail(scope, "update", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, repo.fail(scope, "read affected rows", err)
	}

	return affected, nil
}

// BuildWhereClause renders filter as " WHERE (...)" or "" when it is empty.
func (repo *Repository[T]) BuildWhereClause(_ context.Context, filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return " WHERE " + where, args
}

func (repo *Repository[T]) read(ctx context.Context, scope otel.Scope, query string, args map[string]any, fn func(*sqlx.NamedStmt) error) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	return fn(stmt)
}

func (repo *Repository[T]) selectFrom(only []string) string {
	exprs := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col.field) {
			continue
		}

		exprs = append(exprs, col.selectExpr())
	}

	return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(exprs, ", "), repo.table, repo.joinClause())
}

func (repo *Repository[T]) joinClause() string {
	if repo.join == "" {
		return ""
	}

	return " " + repo.join
}

func (repo *Repository[T]) sortable(name string) bool {
	return slices.ContainsFunc(repo.columns, func(col column) bool {
		return col.table == repo.table && col.name == name && col.field == name
	})
}
