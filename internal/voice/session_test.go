package voice

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicepay/voicepay/internal/intent"
	"github.com/voicepay/voicepay/internal/invest"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/logging"
	"github.com/voicepay/voicepay/internal/payments"
	"github.com/voicepay/voicepay/internal/transcribe"
	"github.com/voicepay/voicepay/internal/user"
)

type fakeRecorder struct {
	mu      sync.Mutex
	started int
	audio   string
	stopErr error
}

func (r *fakeRecorder) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	return nil
}

func (r *fakeRecorder) Stop(context.Context) (io.Reader, string, error) {
	if r.stopErr != nil {
		return nil, "", r.stopErr
	}
	return strings.NewReader(r.audio), "clip.webm", nil
}

func (r *fakeRecorder) startCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

type fakeTranscriber struct {
	res transcribe.Result
	err error
}

func (t *fakeTranscriber) Transcribe(context.Context, io.Reader, string) (transcribe.Result, error) {
	return t.res, t.err
}

type fixture struct {
	session  *Session
	recorder *fakeRecorder
	users    *user.Service
	book     ledger.Ledger
	refresh  chan uint
}

type goldPrices struct{}

func (goldPrices) Price(instrument string) (float64, error) {
	if instrument != "gold" {
		return 0, invest.ErrUnknownInstrument
	}
	return 70.0, nil
}

func newFixture(t *testing.T, transcriber transcribe.Transcriber) *fixture {
	t.Helper()

	repo := user.NewMemoryRepository()
	users := user.NewService(repo, logging.Discard())
	require.NoError(t, users.Seed(context.Background()))

	book := ledger.NewInMemory(repo)
	investments := invest.NewService(users, invest.NewMemoryRepository(), book, goldPrices{}, nil, logging.Discard())
	commands := intent.NewService(users, book, investments, intent.NewHeuristic(), intent.NewMemoryStore(), logging.Discard())
	pay := payments.NewService(users, book, nil)

	recorder := &fakeRecorder{audio: "pcm"}
	refresh := make(chan uint, 8)

	session := NewSession(SessionConfig{
		UserID:      1,
		Recorder:    recorder,
		Transcriber: transcriber,
		Speaker:     nil,
		Commands:    commands,
		Payments:    pay,
		OnRefresh:   func(id uint) { refresh <- id },
		Logger:      logging.Discard(),
	})
	session.continueDelay = 5 * time.Millisecond

	return &fixture{session: session, recorder: recorder, users: users, book: book, refresh: refresh}
}

func TestBalanceCommandTriggersRefreshWithoutPIN(t *testing.T) {
	f := newFixture(t, &fakeTranscriber{res: transcribe.Result{Text: "What's my balance?", Language: "en"}})
	ctx := context.Background()

	require.NoError(t, f.session.StartRecording(ctx))
	assert.Equal(t, PhaseRecording, f.session.Phase())

	res, err := f.session.StopAndProcess(ctx)
	require.NoError(t, err)
	assert.Equal(t, intent.IntentBalance, res.Intent)
	assert.Nil(t, f.session.Pending())
	assert.Equal(t, PhaseIdle, f.session.Phase())

	select {
	case id := <-f.refresh:
		assert.Equal(t, uint(1), id)
	case <-time.After(time.Second):
		t.Fatal("balance intent did not trigger a refresh")
	}
}

func TestStartRecordingWhileActiveIsNoOp(t *testing.T) {
	f := newFixture(t, &fakeTranscriber{res: transcribe.Result{Text: "hi", Language: "en"}})
	ctx := context.Background()

	require.NoError(t, f.session.StartRecording(ctx))
	require.NoError(t, f.session.StartRecording(ctx))
	assert.Equal(t, 1, f.recorder.startCount())
}

func TestTranscriptionFailureOffersTextFallback(t *testing.T) {
	f := newFixture(t, &fakeTranscriber{err: fmt.Errorf("%w: status 500", transcribe.ErrTranscription)})
	ctx := context.Background()

	require.NoError(t, f.session.StartRecording(ctx))
	_, err := f.session.StopAndProcess(ctx)
	require.ErrorIs(t, err, transcribe.ErrTranscription)
	assert.True(t, f.session.TextFallbackOffered())
	assert.Equal(t, PhaseIdle, f.session.Phase())
}

func TestPaymentOpensPINFlowAndAutoSubmits(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.session.SubmitText(ctx, "Pay 500 to Rahul")
	require.NoError(t, err)
	assert.Equal(t, intent.IntentPayment, res.Intent)
	assert.Equal(t, PhaseAwaitingPIN, f.session.Phase())

	pending := f.session.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "Rahul", pending.Recipient)
	assert.Equal(t, 500.0, pending.Amount)

	// Capture stays suspended while the PIN flow is open.
	require.NoError(t, f.session.StartRecording(ctx))
	assert.Equal(t, 0, f.recorder.startCount())

	var outcome *PaymentOutcome
	for _, d := range []byte("1234") {
		outcome, err = f.session.EnterDigit(ctx, d)
		require.NoError(t, err)
	}
	require.NotNil(t, outcome, "fourth digit should auto-submit")
	assert.True(t, outcome.Success)
	assert.Equal(t, 9500.0, outcome.NewBalance)
	assert.Equal(t, 10.0, outcome.Nudge.Amount)
	assert.Equal(t, PhaseIdle, f.session.Phase())
	assert.Nil(t, f.session.Pending())

	txns, err := f.book.Transactions(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, ledger.TypeDebit, txns[0].Type)
}

func TestWrongPINClearsDigitsAndReprompts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.session.SubmitText(ctx, "Pay 500 to Rahul")
	require.NoError(t, err)

	var outcome *PaymentOutcome
	for _, d := range []byte("9999") {
		outcome, err = f.session.EnterDigit(ctx, d)
	}
	require.ErrorIs(t, err, user.ErrInvalidPIN)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	assert.Equal(t, PhaseAwaitingPIN, f.session.Phase())
	assert.Empty(t, f.session.Digits())
	assert.NotNil(t, f.session.Pending())

	// Balance untouched by the failed attempt.
	balance, err := f.book.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balance)
}

func TestInsufficientBalanceAbandonsPayment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.session.SubmitText(ctx, "Pay 50000 to Rahul")
	require.NoError(t, err)

	var outcome *PaymentOutcome
	for _, d := range []byte("1234") {
		outcome, err = f.session.EnterDigit(ctx, d)
	}
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	assert.Equal(t, PhaseIdle, f.session.Phase())
	assert.Nil(t, f.session.Pending())

	balance, err := f.book.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balance)
}

func TestBackspaceRemovesDigit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.session.SubmitText(ctx, "Pay 500 to Rahul")
	require.NoError(t, err)

	_, _ = f.session.EnterDigit(ctx, '1')
	_, _ = f.session.EnterDigit(ctx, '2')
	f.session.Backspace()
	assert.Equal(t, "1", f.session.Digits())

	_, _ = f.session.EnterDigit(ctx, '2')
	_, _ = f.session.EnterDigit(ctx, '3')
	outcome, err := f.session.EnterDigit(ctx, '4')
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)
}

func TestNewCommandOverwritesPendingPayment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.session.SubmitText(ctx, "Pay 500 to Rahul")
	require.NoError(t, err)
	_, err = f.session.SubmitText(ctx, "Pay 200 to Priya")
	require.NoError(t, err)

	pending := f.session.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "Priya", pending.Recipient)
	assert.Equal(t, 200.0, pending.Amount)
}

func TestCancelPINReturnsToIdle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.session.SubmitText(ctx, "Pay 500 to Rahul")
	require.NoError(t, err)
	f.session.CancelPIN()

	assert.Equal(t, PhaseIdle, f.session.Phase())
	assert.Nil(t, f.session.Pending())
	assert.Empty(t, f.session.Digits())
}

func TestFollowUpQuestionReopensCapture(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// Unknown recipient: the reply asks about adding a phone number.
	res, err := f.session.SubmitText(ctx, "Pay 200 to Anuj")
	require.NoError(t, err)
	assert.Contains(t, res.Message, "phone number")
	assert.Equal(t, PhaseIdle, f.session.Phase())

	require.Eventually(t, func() bool {
		return f.session.Phase() == PhaseRecording
	}, time.Second, 2*time.Millisecond, "auto-continue never re-opened capture")
	assert.Equal(t, 1, f.recorder.startCount())
}

func TestManualStartCancelsAutoContinue(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.session.SubmitText(ctx, "Pay 200 to Anuj")
	require.NoError(t, err)

	// User starts a new recording before the timer fires.
	require.NoError(t, f.session.StartRecording(ctx))
	assert.Equal(t, 1, f.recorder.startCount())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.recorder.startCount(), "timer should have been cancelled")
}

func TestMisheardNameIsCorrectedBeforeDispatch(t *testing.T) {
	f := newFixture(t, &fakeTranscriber{res: transcribe.Result{Text: "Pay 100 to Rahool", Language: "en"}})
	ctx := context.Background()

	require.NoError(t, f.session.StartRecording(ctx))
	res, err := f.session.StopAndProcess(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rahul", res.Data["recipient"])
}

func TestTextOnlySessionRunsWithoutRecorder(t *testing.T) {
	repo := user.NewMemoryRepository()
	users := user.NewService(repo, logging.Discard())
	require.NoError(t, users.Seed(context.Background()))

	book := ledger.NewInMemory(repo)
	investments := invest.NewService(users, invest.NewMemoryRepository(), book, goldPrices{}, nil, logging.Discard())
	commands := intent.NewService(users, book, investments, intent.NewHeuristic(), intent.NewMemoryStore(), logging.Discard())

	session := NewSession(SessionConfig{
		UserID:   1,
		Commands: commands,
		Payments: payments.NewService(users, book, nil),
		Logger:   logging.Discard(),
	})
	session.continueDelay = 5 * time.Millisecond
	ctx := context.Background()

	require.Error(t, session.StartRecording(ctx))

	// A follow-up question must not arm the auto-continue timer.
	res, err := session.SubmitText(ctx, "Pay 200 to Anuj")
	require.NoError(t, err)
	assert.Contains(t, res.Message, "phone number")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, PhaseIdle, session.Phase())
}

func TestLanguageFallbackWhenTranscriberGivesNoTag(t *testing.T) {
	f := newFixture(t, &fakeTranscriber{res: transcribe.Result{Text: "Rahul ko 100 bhejo"}})
	ctx := context.Background()

	require.NoError(t, f.session.StartRecording(ctx))
	res, err := f.session.StopAndProcess(ctx)
	require.NoError(t, err)
	assert.Equal(t, intent.IntentPayment, res.Intent)
	assert.Contains(t, res.Message, "पिन")
}
