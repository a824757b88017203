package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/voicepay/voicepay/internal/intent"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/payments"
	"github.com/voicepay/voicepay/internal/speech"
	"github.com/voicepay/voicepay/internal/transcribe"
	"github.com/voicepay/voicepay/internal/transcript"
	"github.com/voicepay/voicepay/internal/user"
)

// Phase is the session's position in the voice command cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseTranscribing
	PhaseProcessing
	PhaseAwaitingPIN
)

// Recorder captures one audio recording per user gesture.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (audio io.Reader, filename string, err error)
}

// CommandProcessor classifies a corrected transcript into an intent result.
type CommandProcessor interface {
	Process(ctx context.Context, userID uint, text, language string) (intent.Result, error)
}

// PaymentExecutor runs a PIN-confirmed payment.
type PaymentExecutor interface {
	Pay(ctx context.Context, input payments.PayInput) (payments.PayResult, error)
}

// PendingPayment is the single slot holding a payment awaiting its PIN. A new
// command overwrites it; there is no queue.
type PendingPayment struct {
	Recipient string
	Amount    float64
}

// PaymentOutcome reports a resolved PIN submission.
type PaymentOutcome struct {
	Success    bool
	Message    string
	NewBalance float64
	Nudge      payments.Nudge
}

const (
	pinLength         = 4
	autoContinueDelay = 500 * time.Millisecond
)

// followUpPatterns mark reply messages that expect the user to keep talking:
// questions and explicit prompts for digits or confirmation. A match re-opens
// capture after a short delay so speech output can finish.
var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\?\s*$`),
	regexp.MustCompile(`(?i)phone number`),
	regexp.MustCompile(`(?i)is that correct`),
	regexp.MustCompile(`(?i)please say`),
	regexp.MustCompile(`(?i)remaining \d+ digits`),
	regexp.MustCompile(`फोन नंबर`),
	regexp.MustCompile(`बताएं`),
}

// Session owns one user's voice command loop: capture, transcription,
// correction, dispatch, PIN confirmation and speech output. All mutable flow
// state lives here; methods are the event handlers and are safe for
// concurrent use, though the flow itself is one command at a time.
type Session struct {
	userID      uint
	recorder    Recorder
	transcriber transcribe.Transcriber
	corrector   *transcript.Corrector
	speaker     speech.Speaker
	commands    CommandProcessor
	payments    PaymentExecutor
	logger      *slog.Logger

	// onRefresh is invoked asynchronously after balance or history
	// intents and after a completed payment.
	onRefresh func(userID uint)

	continueDelay time.Duration

	mu            sync.Mutex
	phase         Phase
	language      string
	pending       *PendingPayment
	digits        string
	textFallback  bool
	continueTimer *time.Timer
	continueToken int
}

// SessionConfig wires a session's capabilities.
type SessionConfig struct {
	UserID      uint
	Recorder    Recorder
	Transcriber transcribe.Transcriber
	Corrector   *transcript.Corrector
	Speaker     speech.Speaker
	Commands    CommandProcessor
	Payments    PaymentExecutor
	OnRefresh   func(userID uint)
	Logger      *slog.Logger
}

// NewSession constructs an idle session.
func NewSession(cfg SessionConfig) *Session {
	corrector := cfg.Corrector
	if corrector == nil {
		corrector = transcript.NewCorrector()
	}
	return &Session{
		userID:        cfg.UserID,
		recorder:      cfg.Recorder,
		transcriber:   cfg.Transcriber,
		corrector:     corrector,
		speaker:       cfg.Speaker,
		commands:      cfg.Commands,
		payments:      cfg.Payments,
		onRefresh:     cfg.OnRefresh,
		logger:        cfg.Logger,
		continueDelay: autoContinueDelay,
		language:      "en",
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Pending returns the payment awaiting PIN confirmation, nil if none.
func (s *Session) Pending() *PendingPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	p := *s.pending
	return &p
}

// Digits returns the PIN digits entered so far.
func (s *Session) Digits() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.digits
}

// TextFallbackOffered reports whether the last transcription failed and the
// user should be shown manual text entry.
func (s *Session) TextFallbackOffered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textFallback
}

// StartRecording opens the microphone. Starting while a recording or
// transcription is already in flight is ignored, and the PIN sub-flow
// suspends capture entirely.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder == nil {
		return fmt.Errorf("no recorder configured")
	}
	if s.phase != PhaseIdle {
		return nil
	}
	s.cancelAutoContinueLocked()

	if err := s.recorder.Start(ctx); err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	s.phase = PhaseRecording
	s.textFallback = false
	return nil
}

// StopAndProcess closes the recording, transcribes it and runs the command
// pipeline. A transcription failure surfaces the manual text entry fallback
// and returns to idle; there is no silent retry.
func (s *Session) StopAndProcess(ctx context.Context) (intent.Result, error) {
	s.mu.Lock()
	if s.phase != PhaseRecording {
		s.mu.Unlock()
		return intent.Result{}, fmt.Errorf("no recording in progress")
	}
	s.phase = PhaseTranscribing

	audio, filename, err := s.recorder.Stop(ctx)
	if err != nil {
		s.phase = PhaseIdle
		s.textFallback = true
		s.mu.Unlock()
		return intent.Result{}, fmt.Errorf("%w: %v", transcribe.ErrTranscription, err)
	}
	s.mu.Unlock()

	res, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		s.mu.Lock()
		s.phase = PhaseIdle
		s.textFallback = true
		s.mu.Unlock()
		return intent.Result{}, err
	}

	return s.process(ctx, res.Text, res.Language)
}

// SubmitText runs the pipeline on manually typed text: the fallback path
// after a transcription failure, and the way a new command replaces a
// payment still waiting for its PIN.
func (s *Session) SubmitText(ctx context.Context, text string) (intent.Result, error) {
	s.mu.Lock()
	if s.phase != PhaseIdle && s.phase != PhaseAwaitingPIN {
		s.mu.Unlock()
		return intent.Result{}, fmt.Errorf("session is busy")
	}
	s.cancelAutoContinueLocked()
	s.textFallback = false
	s.pending = nil
	s.digits = ""
	s.mu.Unlock()

	return s.process(ctx, text, "")
}

func (s *Session) process(ctx context.Context, text, language string) (intent.Result, error) {
	s.mu.Lock()
	s.phase = PhaseProcessing
	s.mu.Unlock()

	corrected := s.corrector.Apply(text)
	if language == "" {
		language = transcript.DetectLanguage(corrected)
	}

	res, err := s.commands.Process(ctx, s.userID, corrected, language)
	if err != nil {
		s.mu.Lock()
		s.phase = PhaseIdle
		s.mu.Unlock()
		return intent.Result{}, err
	}

	s.mu.Lock()
	s.language = language

	pinFlow := res.RequiresPIN() &&
		(res.Intent == intent.IntentPayment || res.Intent == intent.IntentPhoneConfirmation ||
			res.Intent == intent.IntentPhoneAccountCreation)
	if pinFlow {
		recipient, _ := res.Data["recipient"].(string)
		amount, _ := res.Data["amount"].(float64)
		// Single slot: a new command replaces whatever was pending.
		s.pending = &PendingPayment{Recipient: recipient, Amount: amount}
		s.digits = ""
		s.phase = PhaseAwaitingPIN
	}
	s.mu.Unlock()

	if res.Intent == intent.IntentBalance || res.Intent == intent.IntentHistory {
		s.refreshAsync()
	}

	s.speak(ctx, res.Message, language)

	s.mu.Lock()
	if !pinFlow {
		s.phase = PhaseIdle
		if needsFollowUp(res.Message) {
			s.scheduleAutoContinueLocked()
		}
	}
	s.mu.Unlock()

	return res, nil
}

// EnterDigit records one PIN digit. The fourth digit submits the payment
// automatically; the returned outcome is nil until then. Non-digit input is
// ignored.
func (s *Session) EnterDigit(ctx context.Context, digit byte) (*PaymentOutcome, error) {
	s.mu.Lock()
	if s.phase != PhaseAwaitingPIN || digit < '0' || digit > '9' || len(s.digits) >= pinLength {
		s.mu.Unlock()
		return nil, nil
	}
	s.digits += string(digit)
	ready := len(s.digits) == pinLength
	s.mu.Unlock()

	if !ready {
		return nil, nil
	}
	return s.submitPIN(ctx)
}

// Backspace removes the most recently entered PIN digit.
func (s *Session) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseAwaitingPIN && len(s.digits) > 0 {
		s.digits = s.digits[:len(s.digits)-1]
	}
}

// CancelPIN abandons the pending payment and returns to idle.
func (s *Session) CancelPIN() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.digits = ""
	if s.phase == PhaseAwaitingPIN {
		s.phase = PhaseIdle
	}
}

func (s *Session) submitPIN(ctx context.Context) (*PaymentOutcome, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("no pending payment")
	}
	input := payments.PayInput{
		UserID:    s.userID,
		Recipient: s.pending.Recipient,
		Amount:    s.pending.Amount,
		PIN:       s.digits,
	}
	language := s.language
	s.mu.Unlock()

	res, err := s.payments.Pay(ctx, input)
	if err != nil {
		return s.handlePaymentFailure(ctx, err, language)
	}

	s.mu.Lock()
	s.pending = nil
	s.digits = ""
	s.phase = PhaseIdle
	s.mu.Unlock()

	s.refreshAsync()

	message := fmt.Sprintf("Payment of ₹%.0f to %s successful!", input.Amount, res.Recipient)
	if language == "hi" {
		message = fmt.Sprintf("%s को ₹%.0f का भुगतान हो गया!", res.Recipient, input.Amount)
	}
	s.speak(ctx, message, language)

	return &PaymentOutcome{
		Success:    true,
		Message:    message,
		NewBalance: res.NewBalance,
		Nudge:      res.Nudge,
	}, nil
}

// handlePaymentFailure maps ledger errors to spoken messages. An invalid PIN
// clears the digits and re-prompts; every other failure abandons the attempt.
func (s *Session) handlePaymentFailure(ctx context.Context, err error, language string) (*PaymentOutcome, error) {
	var message string
	retryPIN := false

	switch {
	case errors.Is(err, user.ErrInvalidPIN):
		retryPIN = true
		message = "Incorrect PIN. Please try again."
		if language == "hi" {
			message = "गलत पिन। कृपया फिर से कोशिश करें।"
		}
	case errors.Is(err, ledger.ErrInsufficientBalance):
		message = "Insufficient balance. Payment failed."
		if language == "hi" {
			message = "बैलेंस कम है। भुगतान नहीं हो सका।"
		}
	case errors.Is(err, payments.ErrRecipientNotFound):
		message = "Recipient not found. Payment failed."
		if language == "hi" {
			message = "प्राप्तकर्ता नहीं मिला। भुगतान नहीं हो सका।"
		}
	default:
		message = "Payment failed. Please try again."
		if language == "hi" {
			message = "भुगतान नहीं हो सका। कृपया फिर से कोशिश करें।"
		}
	}

	s.mu.Lock()
	s.digits = ""
	if !retryPIN {
		s.pending = nil
		s.phase = PhaseIdle
	}
	s.mu.Unlock()

	s.speak(ctx, message, language)
	return &PaymentOutcome{Success: false, Message: message}, err
}

// speak renders the reply and waits for playback to resolve. Speech failures
// never break the command loop.
func (s *Session) speak(ctx context.Context, text, language string) {
	if s.speaker == nil || text == "" {
		return
	}
	utterance, err := s.speaker.Speak(ctx, text, language)
	if err != nil {
		s.logger.Warn("speech output failed", "error", err)
		return
	}
	if utterance.Done != nil {
		<-utterance.Done
	}
}

func (s *Session) refreshAsync() {
	if s.onRefresh == nil {
		return
	}
	go s.onRefresh(s.userID)
}

// scheduleAutoContinueLocked arms the re-open-capture timer. The token makes
// the timer a no-op when any competing transition lands first. Text-only
// sessions carry no recorder and skip the timer entirely.
func (s *Session) scheduleAutoContinueLocked() {
	if s.recorder == nil {
		return
	}
	s.continueToken++
	token := s.continueToken
	s.continueTimer = time.AfterFunc(s.continueDelay, func() {
		s.mu.Lock()
		if s.continueToken != token || s.phase != PhaseIdle {
			s.mu.Unlock()
			return
		}
		if err := s.recorder.Start(context.Background()); err != nil {
			s.logger.Warn("auto-continue recording failed", "error", err)
			s.mu.Unlock()
			return
		}
		s.phase = PhaseRecording
		s.mu.Unlock()
	})
}

func (s *Session) cancelAutoContinueLocked() {
	s.continueToken++
	if s.continueTimer != nil {
		s.continueTimer.Stop()
		s.continueTimer = nil
	}
}

func needsFollowUp(message string) bool {
	for _, p := range followUpPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}
