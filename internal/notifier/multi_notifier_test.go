package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batemapf/site-differ/internal/models"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(ctx context.Context, digest models.Digest) error {
	s.calls++
	return s.err
}

func TestMultiNotifier_Notify_DeliversToAllTargets(t *testing.T) {
	first := &stubNotifier{}
	second := &stubNotifier{}
	notifier := NewMultiNotifier(zerolog.Nop(), first, second)

	require.NoError(t, notifier.Notify(context.Background(), sampleDigest()))

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestMultiNotifier_Notify_FailureDoesNotBlockOtherTargets(t *testing.T) {
	first := &stubNotifier{err: errors.New("delivery failed")}
	second := &stubNotifier{}
	notifier := NewMultiNotifier(zerolog.Nop(), first, second)

	err := notifier.Notify(context.Background(), sampleDigest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery failed")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestMultiNotifier_Notify_NoTargets(t *testing.T) {
	notifier := NewMultiNotifier(zerolog.Nop())

	assert.NoError(t, notifier.Notify(context.Background(), sampleDigest()))
}
