// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

// Package query provides SQL WHERE-clause construction for the
// database package's list endpoints. All values are parameterized.
package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder accumulates filter clauses and their bound arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddEquals("status", "active")
//	wb.AddIn("severity", []string{"high", "critical"})
//	where, args := wb.BuildWithPrefix()
type WhereBuilder struct {
	clauses []string
	args    []any
}

// NewWhereBuilder creates an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw clause with its arguments, for conditions not
// covered by the helpers.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEquals adds "column = ?". Empty string values are skipped so
// optional query parameters fall through cleanly.
func (wb *WhereBuilder) AddEquals(column string, value string) *WhereBuilder {
	if value != "" {
		wb.clauses = append(wb.clauses, column+" = ?")
		wb.args = append(wb.args, value)
	}
	return wb
}

// AddIn adds "column IN (?, ...)". Empty slices are skipped.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// AddDateRange adds lower and/or upper bounds on a timestamp column.
// Nil bounds are skipped.
func (wb *WhereBuilder) AddDateRange(column string, from, to *time.Time) *WhereBuilder {
	if from != nil {
		wb.clauses = append(wb.clauses, column+" >= ?")
		wb.args = append(wb.args, *from)
	}
	if to != nil {
		wb.clauses = append(wb.clauses, column+" <= ?")
		wb.args = append(wb.args, *to)
	}
	return wb
}

// AddNull adds "column IS NULL" or "column IS NOT NULL" depending on
// isNull. Used for open/resolved red flag filtering.
func (wb *WhereBuilder) AddNull(column string, isNull bool) *WhereBuilder {
	if isNull {
		wb.clauses = append(wb.clauses, column+" IS NULL")
	} else {
		wb.clauses = append(wb.clauses, column+" IS NOT NULL")
	}
	return wb
}

// Build joins the clauses with AND. Returns ("1=1", nil args) when no
// clauses were added, so callers can splice unconditionally.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", []any{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	where, args := wb.Build()
	return "WHERE " + where, args
}

// IsEmpty reports whether any clauses were added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
