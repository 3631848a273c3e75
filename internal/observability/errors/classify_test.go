package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type classified struct{}

func (classified) Error() string      { return "quota" }
func (classified) ErrorClass() string { return "upstream_quota" }

type customErr struct{}

func (*customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("stage: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"classifier", fmt.Errorf("wrap: %w", classified{}), "upstream_quota"},
		{"innermost type", fmt.Errorf("outer: %w", &customErr{}), "errors_customerr"},
		{"plain", errors.New("x"), "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
