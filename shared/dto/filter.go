package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterOperatorLess      = "less"
	FilterOperatorGreater   = "greater"
	FilterIsNull            = "is_null"
	FilterIsNotNull         = "is_not_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
	FilterOperatorLess:      "<",
	FilterOperatorGreater:   ">",
}

// Filter is one predicate rendered with sqlx named parameters. ArgName overrides the bind
// name when the same column appears twice in a query.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string
	Table    string
}

func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}

	column := f.Field
	if f.Table != "" {
		column = f.Table + "." + f.Field
	}

	arg := f.ArgName
	if arg == "" {
		arg = f.Field
	}

	if symbol, ok := comparisons[f.Operator]; ok {
		args[arg] = f.Value

		return fmt.Sprintf("%s %s :%s", column, symbol, arg), args
	}

	switch f.Operator {
	case FilterOperatorLike:
		if fmt.Sprint(f.Value) == "" {
			return "", args
		}

		args[arg] = fmt.Sprintf("%%%v%%", f.Value)

		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", column, arg), args
	case FilterOperatorIn:
		values := reflect.ValueOf(f.Value)
		if values.Kind() != reflect.Slice && values.Kind() != reflect.Array || values.Len() == 0 {
			return "FALSE", args
		}

		names := make([]string, values.Len())
		for i := range values.Len() {
			name := fmt.Sprintf("%s_%d", arg, i)
			args[name] = values.Index(i).Interface()
			names[i] = ":" + name
		}

		return fmt.Sprintf("%s IN (%s)", column, strings.Join(names, ", ")), args
	case FilterIsNull:
		return column + " IS NULL", args
	case FilterIsNotNull:
		return column + " IS NOT NULL", args
	}

	return "", args
}

// FilterGroup joins filters and nested groups with Operator, AND when unset.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var (
			where string
			arg   map[string]any
		)

		switch filter := item.(type) {
		case Filter:
			where, arg = filter.GetWhereClause()
		case FilterGroup:
			where, arg = filter.GetWhereClause()
		default:
			continue
		}

		if where == "" {
			continue
		}

		clauses = append(clauses, where)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}

// Search matches term case-insensitively against any of fields. An empty term matches everything.
func Search(term, table string, fields ...string) FilterGroup {
	group := FilterGroup{Operator: FilterGroupOperatorOr}

	for _, field := range fields {
		group.Filters = append(group.Filters, Filter{Field: field, Operator: FilterOperatorLike, Value: term, Table: table})
	}

	return group
}
