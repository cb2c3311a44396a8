// Package db provides the embedded PostgreSQL schema.
package db

import _ "embed"

// Schema contains the DDL statements for customers, orders and line items.
// Statements are idempotent so the schema can be applied on every start.
//
//go:embed migrations/001_schema.sql
var Schema string
