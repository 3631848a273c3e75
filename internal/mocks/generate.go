// Package mocks provides mock implementations of the pipeline ports for tests.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the core interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockJobStore(ctrl)
//	store.EXPECT().Get(gomock.Any(), "job-1").Return(rec, nil)
package mocks

// Generate mock for JobStore interface from internal/core package.
// This creates MockJobStore with methods for all JobStore interface methods:
// Put, Get
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_store_mock.go github.com/sbobine/sbobine-api/internal/core JobStore

// Generate mock for JobReaper interface from internal/core package.
// This creates MockJobReaper with methods for all JobReaper interface methods:
// DeleteTerminalBefore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_reaper_mock.go github.com/sbobine/sbobine-api/internal/core JobReaper

// Generate mock for Gateway interface from internal/core package.
// This creates MockGateway with methods for all Gateway interface methods:
// Transcribe, Summarize, Elaborate, ConceptMap, Quiz
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=gateway_mock.go github.com/sbobine/sbobine-api/internal/core Gateway
