//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are run through `go run` or installed via `go install` and are not
// tracked in go.mod since they are development tools, not runtime dependencies.
package tools

// Development tools:
//
// mockgen - gomock code generator for internal/mocks
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock/mockgen@v0.6.0 (pinned in internal/mocks/generate.go)
//   Docs: https://github.com/uber-go/mock
//
// goose - manual schema inspection against a running database
//   Install: go install github.com/pressly/goose/v3/cmd/goose@v3.27.0
//   Schema files: internal/migrate/migrations/{postgres,mysql}
//   Normal use goes through `sbobine-cli migrate` or DB_/MYSQL_RUN_MIGRATIONS_ON_START.
//
// Air - Live reload for cmd/sbobine
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
