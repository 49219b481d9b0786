// Package mocks provides mock implementations for testing the invoker load-run system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our
// collaborator interfaces. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockInvocationStore(ctrl)
//	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for InvocationStore interface from internal/core package.
// This creates MockInvocationStore with methods:
// Create, FindByName, UpdateState
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=invocation_store_mock.go github.com/benchkit/invoker/internal/core InvocationStore

// Generate mock for UserDirectory interface from internal/core package.
// This creates MockUserDirectory with methods:
// RandomUser, FindByUsername
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=user_directory_mock.go github.com/benchkit/invoker/internal/core UserDirectory

// Generate mock for TargetCaller interface from internal/core package.
// This creates MockTargetCaller with methods:
// Invoke
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=target_caller_mock.go github.com/benchkit/invoker/internal/core TargetCaller

// Generate mock for EventQueue interface from internal/core package.
// This creates MockEventQueue with methods:
// Push, PopDue, Size
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=event_queue_mock.go github.com/benchkit/invoker/internal/core EventQueue
