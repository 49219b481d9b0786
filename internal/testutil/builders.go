package testutil

import (
	"github.com/benchkit/invoker/internal/domain/model"
)

// InvocationBuilder provides a fluent interface for building invocation
// records for tests.
type InvocationBuilder struct {
	inv *model.Invocation
}

// NewInvocation creates an InvocationBuilder with sensible defaults.
func NewInvocation() *InvocationBuilder {
	return &InvocationBuilder{
		inv: &model.Invocation{
			Name:     "run-0001-test",
			Username: "loaduser-0000",
			Message:  "Message 0000001",
			State:    model.StateScheduled,
		},
	}
}

// WithName sets the record name.
func (b *InvocationBuilder) WithName(name string) *InvocationBuilder {
	b.inv.Name = name
	return b
}

// WithUsername sets the username.
func (b *InvocationBuilder) WithUsername(username string) *InvocationBuilder {
	b.inv.Username = username
	return b
}

// WithMessage sets the message.
func (b *InvocationBuilder) WithMessage(message string) *InvocationBuilder {
	b.inv.Message = message
	return b
}

// WithState sets the state.
func (b *InvocationBuilder) WithState(state model.InvocationState) *InvocationBuilder {
	b.inv.State = state
	return b
}

// Build returns the constructed invocation record.
func (b *InvocationBuilder) Build() *model.Invocation {
	inv := *b.inv
	return &inv
}
