package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/voicepay/voicepay/internal/invest"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/transcript"
	"github.com/voicepay/voicepay/internal/user"
)

// Service turns transcribed voice commands into structured results. It owns
// the conversation state machine for the multi-turn phone collection flows
// and locks the reply language to the first turn of a conversation.
type Service struct {
	users     *user.Service
	book      ledger.Ledger
	invest    *invest.Service
	llm       LLM
	store     StateStore
	corrector *transcript.Corrector
	logger    *slog.Logger
}

// NewService constructs the intent service.
func NewService(users *user.Service, book ledger.Ledger, investments *invest.Service, llm LLM, store StateStore, logger *slog.Logger) *Service {
	return &Service{
		users:     users,
		book:      book,
		invest:    investments,
		llm:       llm,
		store:     store,
		corrector: transcript.NewCorrector(),
		logger:    logger,
	}
}

// Process classifies one utterance and executes the matching action. The
// transcript is corrected and, when the caller supplies no language tag,
// classified before anything is dispatched; once a conversation has a locked
// language, it wins over the per-turn detection.
func (s *Service) Process(ctx context.Context, userID uint, text, language string) (Result, error) {
	text = s.corrector.Apply(text)
	if language == "" {
		language = transcript.DetectLanguage(text)
	}

	state, hasState, err := s.store.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if locked := state.Language(); locked != "" {
		language = locked
	}

	prompt := Prompt{UserText: text, Language: language}
	if hasState {
		prompt.State = state.Name
		prompt.Context = state.Context
	}

	tool, direct, err := s.llm.Classify(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	if tool == nil {
		s.lockLanguage(ctx, userID, language)
		if direct != "" {
			return Result{Intent: IntentDirect, Message: direct}, nil
		}
		return Result{Intent: IntentUnknown, Message: unknownMessage(language)}, nil
	}

	s.logger.Info("intent classified", "user_id", userID, "tool", tool.Name)

	label, data, scenario, err := s.dispatch(ctx, userID, tool)
	if err != nil {
		return Result{}, err
	}

	s.lockLanguage(ctx, userID, language)

	message := s.renderMessage(ctx, scenario, language, data)
	return Result{Intent: label, Message: message, Data: data}, nil
}

// ClearConversation drops the per-user conversation state, resetting the
// locked language and any pending phone flow.
func (s *Service) ClearConversation(ctx context.Context, userID uint) error {
	return s.store.Clear(ctx, userID)
}

func (s *Service) dispatch(ctx context.Context, userID uint, tool *ToolCall) (label string, data map[string]any, scenario string, err error) {
	switch tool.Name {
	case toolProcessPayment:
		recipient, _ := tool.Args["recipient"].(string)
		amount := numArg(tool.Args, "amount")
		data, err = s.processPaymentIntent(ctx, userID, strings.ToLower(recipient), amount)
		label = IntentPayment
	case toolCheckBalance:
		data, err = s.checkBalance(ctx, userID)
		label = IntentBalance
	case toolHistory:
		limit := int(numArg(tool.Args, "limit"))
		data, err = s.transactionHistory(ctx, userID, limit)
		label = IntentHistory
	case toolQueryInvestments:
		data, err = s.queryInvestments(ctx, userID)
		label = IntentInvestment
	case toolUserInfo:
		data, err = s.userInfo(ctx, userID)
		label = IntentUserInfo
	case toolAgreeAddPhone:
		data, err = s.agreeAddPhone(ctx, userID)
		label = IntentPhoneAccountCreation
	case toolCollectPhone:
		phone, _ := tool.Args["phone_number"].(string)
		data, err = s.collectPhone(ctx, userID, phone)
		label = IntentPhoneConfirmation
	case toolConfirmPhone:
		confirmed, _ := tool.Args["confirmation"].(bool)
		data, err = s.confirmPhone(ctx, userID, confirmed)
		label = IntentPhoneConfirmation
	case toolSavePhoneSignup:
		phone, _ := tool.Args["phone_number"].(string)
		data, err = s.savePhoneOnSignup(ctx, userID, phone)
		label = IntentPhoneAccountCreation
	default:
		s.logger.Warn("classifier chose unknown tool", "tool", tool.Name)
		return IntentUnknown, map[string]any{}, "", nil
	}
	if err != nil {
		return "", nil, "", err
	}
	scenario, _ = data["scenario"].(string)
	return label, data, scenario, nil
}

func (s *Service) processPaymentIntent(ctx context.Context, userID uint, recipient string, amount float64) (map[string]any, error) {
	digits := extractDigits(recipient)

	// Five or more digits means the user is dictating a phone number, even
	// if the transcriber cut it short.
	if len(digits) >= 5 && len(digits) <= 11 {
		if len(digits) != 10 {
			err := s.saveStateWithLanguage(ctx, userID, StateAwaitingRemainingDigit, map[string]any{
				"partial_phone": digits,
				"amount":        amount,
				"digits_needed": float64(10 - len(digits)),
			})
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"success":           false,
				"requires_pin":      false,
				"incomplete_phone":  digits,
				"digits_provided":   len(digits),
				"digits_needed":     10 - len(digits),
				"pending_recipient": recipient,
				"pending_amount":    amount,
				"scenario":          "incomplete_phone_number",
			}, nil
		}

		target, err := s.users.ByPhone(ctx, digits)
		switch {
		case err == nil && target.ID == userID:
			return map[string]any{"success": false, "requires_pin": false, "scenario": "payment_to_self"}, nil
		case err == nil:
			return map[string]any{
				"success":         true,
				"recipient":       target.Name,
				"recipient_phone": digits,
				"amount":          amount,
				"requires_pin":    true,
				"scenario":        "payment_to_existing_phone",
			}, nil
		case errors.Is(err, user.ErrNotFound):
			created, err := s.users.CreatePhoneUser(ctx, "", digits)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"success":         true,
				"recipient":       created.Name,
				"recipient_id":    created.ID,
				"recipient_phone": digits,
				"amount":          amount,
				"requires_pin":    true,
				"auto_created":    true,
				"scenario":        "payment_to_new_phone",
			}, nil
		default:
			return nil, err
		}
	}

	target, err := s.users.Resolve(ctx, recipient)
	switch {
	case errors.Is(err, user.ErrNotFound):
		saveErr := s.saveStateWithLanguage(ctx, userID, StateAwaitingPhoneResponse, map[string]any{
			"recipient_name": recipient,
			"amount":         amount,
		})
		if saveErr != nil {
			return nil, saveErr
		}
		return map[string]any{
			"success":                false,
			"requires_pin":           false,
			"offer_phone_collection": true,
			"pending_recipient":      recipient,
			"pending_amount":         amount,
			"scenario":               "recipient_not_found",
		}, nil
	case err != nil:
		return nil, err
	case target.ID == userID:
		return map[string]any{"success": false, "requires_pin": false, "scenario": "payment_to_self"}, nil
	}

	return map[string]any{
		"success":      true,
		"recipient":    target.Name,
		"amount":       amount,
		"requires_pin": true,
		"scenario":     "payment_to_existing_contact",
	}, nil
}

func (s *Service) agreeAddPhone(ctx context.Context, userID uint) (map[string]any, error) {
	state, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok || state.Name != StateAwaitingPhoneResponse {
		return map[string]any{"success": false, "scenario": "no_pending_phone_request"}, nil
	}
	if err := s.saveStateWithLanguage(ctx, userID, StateAwaitingPhoneDigits, state.Context); err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "scenario": "prompt_for_phone_digits"}, nil
}

func (s *Service) collectPhone(ctx context.Context, userID uint, phone string) (map[string]any, error) {
	var recipientName string
	var amount float64

	state, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok && state.Name == StateAwaitingPhoneDigits {
		recipientName, _ = state.Context["recipient_name"].(string)
		amount = numArg(state.Context, "amount")
	}

	digits := extractDigits(phone)
	if len(digits) != 10 {
		return map[string]any{
			"success":               false,
			"requires_confirmation": false,
			"digits_received":       len(digits),
			"scenario":              "invalid_phone_number",
		}, nil
	}

	err = s.saveStateWithLanguage(ctx, userID, StateConfirmingPhone, map[string]any{
		"phone":          digits,
		"recipient_name": recipientName,
		"amount":         amount,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"success":               true,
		"requires_confirmation": true,
		"phone":                 digits,
		"phone_digits":          spellDigits(digits),
		"scenario":              "confirm_phone_number",
	}, nil
}

func (s *Service) confirmPhone(ctx context.Context, userID uint, confirmed bool) (map[string]any, error) {
	state, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok || state.Name != StateConfirmingPhone {
		return map[string]any{"success": false, "scenario": "no_phone_to_confirm"}, nil
	}

	if !confirmed {
		if err := s.store.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return map[string]any{"success": false, "scenario": "phone_rejected_retry"}, nil
	}

	phone, _ := state.Context["phone"].(string)
	recipientName, _ := state.Context["recipient_name"].(string)
	amount := numArg(state.Context, "amount")

	var display string
	var recipientID uint
	accountExists := true

	target, err := s.users.ByPhone(ctx, phone)
	switch {
	case err == nil:
		display = target.Name
		recipientID = target.ID
	case errors.Is(err, user.ErrNotFound):
		created, err := s.users.CreatePhoneUser(ctx, recipientName, phone)
		if err != nil {
			return nil, err
		}
		display = fmt.Sprintf("%s (%s)", recipientName, phone)
		recipientID = created.ID
		accountExists = false
	default:
		return nil, err
	}

	if err := s.store.Clear(ctx, userID); err != nil {
		return nil, err
	}

	return map[string]any{
		"success":         true,
		"recipient":       display,
		"recipient_id":    recipientID,
		"recipient_phone": phone,
		"amount":          amount,
		"requires_pin":    true,
		"account_exists":  accountExists,
		"scenario":        "phone_confirmed_ready_for_pin",
	}, nil
}

func (s *Service) checkBalance(ctx context.Context, userID uint) (map[string]any, error) {
	balance, err := s.book.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"balance": balance, "scenario": "balance_check"}, nil
}

func (s *Service) transactionHistory(ctx context.Context, userID uint, limit int) (map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	txns, err := s.book.Transactions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return map[string]any{"transactions": []ledger.Transaction{}, "total_spent": 0.0, "scenario": "no_transactions"}, nil
	}

	// Spending counts only money sent, not received.
	var totalSpent float64
	for _, txn := range txns {
		if txn.Type == ledger.TypeDebit {
			totalSpent += txn.Amount
		}
	}
	return map[string]any{
		"transactions": txns,
		"total_spent":  totalSpent,
		"count":        len(txns),
		"scenario":     "transaction_history",
	}, nil
}

func (s *Service) queryInvestments(ctx context.Context, userID uint) (map[string]any, error) {
	portfolio, err := s.invest.Portfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(portfolio.Investments) == 0 {
		return map[string]any{"portfolio": map[string]any{}, "scenario": "no_investments"}, nil
	}
	return map[string]any{
		"portfolio": map[string]any{
			"total_invested":    portfolio.TotalInvested,
			"current_value":     portfolio.CurrentValue,
			"total_return":      portfolio.TotalReturn,
			"return_percentage": portfolio.ReturnPercentage,
			"investments":       portfolio.Investments,
		},
		"scenario": "investment_query",
	}, nil
}

func (s *Service) userInfo(ctx context.Context, userID uint) (map[string]any, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return map[string]any{"success": false, "scenario": "user_not_found"}, nil
	}
	if err != nil {
		return nil, err
	}
	data := map[string]any{"success": true, "name": u.Name, "scenario": "user_info"}
	if u.Email != nil {
		data["email"] = *u.Email
	}
	if u.PhoneNumber != nil {
		data["phone"] = *u.PhoneNumber
	}
	return data, nil
}

func (s *Service) savePhoneOnSignup(ctx context.Context, userID uint, phone string) (map[string]any, error) {
	res, err := s.users.SavePhone(ctx, userID, phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return map[string]any{"success": false, "scenario": "user_not_found"}, nil
		}
		return map[string]any{"success": false, "scenario": "invalid_phone_on_signup"}, nil
	}
	if res.Linked {
		return map[string]any{"success": true, "new_balance": res.NewBalance, "scenario": "accounts_linked"}, nil
	}
	return map[string]any{"success": true, "phone": res.Phone, "scenario": "phone_saved"}, nil
}

// saveStateWithLanguage saves state while carrying the locked language over
// from the previous record.
func (s *Service) saveStateWithLanguage(ctx context.Context, userID uint, name string, context map[string]any) error {
	if context == nil {
		context = map[string]any{}
	}
	existing, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if ok {
		if lang := existing.Language(); lang != "" {
			context["preferred_language"] = lang
		}
	}
	return s.store.Save(ctx, userID, State{Name: name, Context: context})
}

// lockLanguage pins the conversation language after a turn: the current state
// record gets the language stamped into its context, or a bare active record
// is created for first turns.
func (s *Service) lockLanguage(ctx context.Context, userID uint, language string) {
	state, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("language lock read failed", "error", err)
		return
	}
	if ok {
		if state.Context == nil {
			state.Context = map[string]any{}
		}
		state.Context["preferred_language"] = language
		if err := s.store.Save(ctx, userID, state); err != nil {
			s.logger.Warn("language lock save failed", "error", err)
		}
		return
	}
	err = s.store.Save(ctx, userID, State{Name: StateActive, Context: map[string]any{"preferred_language": language}})
	if err != nil {
		s.logger.Warn("language lock save failed", "error", err)
	}
}

func (s *Service) renderMessage(ctx context.Context, scenario, language string, data map[string]any) string {
	if scenario == "" {
		return unknownMessage(language)
	}
	if s.llm != nil {
		msg, err := s.llm.Respond(ctx, scenario, language, scenarioDescription(scenario, data))
		if err == nil && msg != "" {
			return strings.TrimSpace(msg)
		}
	}
	return scenarioMessage(scenario, language, data)
}

func unknownMessage(language string) string {
	if language == "hi" {
		return "मैं समझ नहीं पाया। कृपया फिर से कोशिश करें।"
	}
	return "I couldn't understand that command. Please try again."
}

func numArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func spellDigits(digits string) string {
	parts := make([]string, 0, len(digits))
	for _, r := range digits {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}
