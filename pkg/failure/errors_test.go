package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rohmanhakim/page-scraper/pkg/failure"
	"github.com/stretchr/testify/assert"
)

type kindedError struct {
	kind failure.Kind
}

func (k *kindedError) Error() string { return "kinded" }
func (k *kindedError) Severity() failure.Severity { return failure.SeverityFatal }
func (k *kindedError) Kind() failure.Kind { return k.kind }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want failure.Kind
	}{
		{name: "nil", err: nil, want: failure.KindUnknown},
		{name: "plain error", err: errors.New("boom"), want: failure.KindUnknown},
		{name: "direct", err: &kindedError{kind: failure.KindTransport}, want: failure.KindTransport},
		{
			name: "wrapped",
			err:  fmt.Errorf("page 3: %w", &kindedError{kind: failure.KindExtraction}),
			want: failure.KindExtraction,
		},
		{
			name: "joined",
			err:  errors.Join(errors.New("cleanup failed"), &kindedError{kind: failure.KindIO}),
			want: failure.KindIO,
		},
		{
			name: "joined then wrapped",
			err:  fmt.Errorf("export: %w", errors.Join(errors.New("first"), &kindedError{kind: failure.KindRender})),
			want: failure.KindRender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.KindOf(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "transport", failure.KindTransport.String())
	assert.Equal(t, "render", failure.KindRender.String())
	assert.Equal(t, "extraction", failure.KindExtraction.String())
	assert.Equal(t, "io", failure.KindIO.String())
	assert.Equal(t, "unknown", failure.KindUnknown.String())
}
