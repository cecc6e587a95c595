package login

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/email-login-otp/internal/domain"
	"github.com/email-login-otp/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

type failingTracker struct{ err error }

func (f failingTracker) TryReserve(context.Context, string, time.Time, time.Duration) (bool, error) {
	return false, f.err
}

func TestRequestCode_StoresAndDelivers(t *testing.T) {
	codes := memory.NewCodeStore()
	n := new(mockNotifier)
	n.On("Deliver", mock.Anything, "a@x.io", mock.AnythingOfType("string")).Return(nil)
	iss := NewIssuer(codes, memory.NewCooldownTracker(), n, 0, 0)

	got, err := iss.RequestCode(context.Background(), "a@x.io", t0)
	require.NoError(t, err)
	assert.Regexp(t, sixDigits, got.Code)
	assert.Equal(t, t0.Add(300*time.Second), got.ExpiresAt)
	assert.Equal(t, 60*time.Second, got.Cooldown)
	assert.Equal(t, ChannelSMTP, got.Delivery.Channel)
	assert.NoError(t, got.Delivery.Err)
	n.AssertCalled(t, "Deliver", mock.Anything, "a@x.io", got.Code)

	outcome, err := codes.TakeIfValid(context.Background(), "a@x.io", got.Code, t0.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome)
}

func TestRequestCode_CooldownRejectsWithoutTouchingStore(t *testing.T) {
	codes := memory.NewCodeStore()
	n := new(mockNotifier)
	n.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	iss := NewIssuer(codes, memory.NewCooldownTracker(), n, 0, 0)

	first, err := iss.RequestCode(context.Background(), "a@x.io", t0)
	require.NoError(t, err)

	_, err = iss.RequestCode(context.Background(), "a@x.io", t0.Add(30*time.Second))
	assert.ErrorIs(t, err, domain.ErrCooldown)
	n.AssertNumberOfCalls(t, "Deliver", 1)

	// the first code is still the pending one
	outcome, err := codes.TakeIfValid(context.Background(), "a@x.io", first.Code, t0.Add(31*time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome)
}

func TestRequestCode_CooldownWindow(t *testing.T) {
	n := new(mockNotifier)
	n.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	iss := NewIssuer(memory.NewCodeStore(), memory.NewCooldownTracker(), n, 0, 0)
	ctx := context.Background()

	_, err := iss.RequestCode(ctx, "a@x.io", t0)
	require.NoError(t, err)
	_, err = iss.RequestCode(ctx, "a@x.io", t0.Add(30*time.Second))
	assert.ErrorIs(t, err, domain.ErrCooldown)
	_, err = iss.RequestCode(ctx, "a@x.io", t0.Add(61*time.Second))
	assert.NoError(t, err)

	// other identities are unaffected
	_, err = iss.RequestCode(ctx, "b@x.io", t0.Add(30*time.Second))
	assert.NoError(t, err)
}

func TestRequestCode_StaleCodeAfterReissueConsumesLiveCode(t *testing.T) {
	codes := memory.NewCodeStore()
	n := new(mockNotifier)
	n.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	iss := NewIssuer(codes, memory.NewCooldownTracker(), n, 0, 0)
	iss.generate = sequence("111111", "222222")
	v := NewVerifier(codes)
	ctx := context.Background()

	_, err := iss.RequestCode(ctx, "a@x.io", t0)
	require.NoError(t, err)
	second, err := iss.RequestCode(ctx, "a@x.io", t0.Add(61*time.Second))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(361*time.Second), second.ExpiresAt)

	// the replaced code is just a wrong guess against the live record
	assert.ErrorIs(t, v.VerifyCode(ctx, "a@x.io", "111111", t0.Add(62*time.Second)), domain.ErrCodeInvalid)
	assert.ErrorIs(t, v.VerifyCode(ctx, "a@x.io", "222222", t0.Add(63*time.Second)), domain.ErrCodeNotFound)
}

func TestRequestCode_ReissuedCodeVerifies(t *testing.T) {
	codes := memory.NewCodeStore()
	iss := NewIssuer(codes, memory.NewCooldownTracker(), nil, 0, 0)
	iss.generate = sequence("111111", "222222")
	ctx := context.Background()

	_, err := iss.RequestCode(ctx, "a@x.io", t0)
	require.NoError(t, err)
	_, err = iss.RequestCode(ctx, "a@x.io", t0.Add(61*time.Second))
	require.NoError(t, err)

	assert.NoError(t, NewVerifier(codes).VerifyCode(ctx, "a@x.io", "222222", t0.Add(62*time.Second)))
}

func TestRequestCode_DeliveryFailureKeepsCode(t *testing.T) {
	codes := memory.NewCodeStore()
	n := new(mockNotifier)
	n.On("Deliver", mock.Anything, "a@x.io", mock.Anything).Return(errors.New("missing smtp config"))
	iss := NewIssuer(codes, memory.NewCooldownTracker(), n, 0, 0)

	got, err := iss.RequestCode(context.Background(), "a@x.io", t0)
	require.NoError(t, err)
	assert.Equal(t, ChannelConsole, got.Delivery.Channel)
	assert.ErrorIs(t, got.Delivery.Err, domain.ErrDelivery)
	assert.Equal(t, "missing smtp config", got.Delivery.Reason)

	outcome, err := codes.TakeIfValid(context.Background(), "a@x.io", got.Code, t0.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome)
}

func TestRequestCode_NilNotifierUsesConsole(t *testing.T) {
	iss := NewIssuer(memory.NewCodeStore(), memory.NewCooldownTracker(), nil, 0, 0)
	got, err := iss.RequestCode(context.Background(), "a@x.io", t0)
	require.NoError(t, err)
	assert.Equal(t, ChannelConsole, got.Delivery.Channel)
	assert.NoError(t, got.Delivery.Err)
}

func TestRequestCode_TrackerError(t *testing.T) {
	iss := NewIssuer(memory.NewCodeStore(), failingTracker{err: errors.New("redis down")}, nil, 0, 0)
	_, err := iss.RequestCode(context.Background(), "a@x.io", t0)
	assert.ErrorContains(t, err, "redis down")
	assert.NotErrorIs(t, err, domain.ErrCooldown)
}

func TestRequestCode_CustomWindows(t *testing.T) {
	iss := NewIssuer(memory.NewCodeStore(), memory.NewCooldownTracker(), nil, 10*time.Second, 5*time.Second)
	got, err := iss.RequestCode(context.Background(), "a@x.io", t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(10*time.Second), got.ExpiresAt)

	_, err = iss.RequestCode(context.Background(), "a@x.io", t0.Add(5*time.Second))
	assert.NoError(t, err)
}

func sequence(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}
