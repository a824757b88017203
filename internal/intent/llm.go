package intent

import (
	"context"
	"fmt"
)

// Tool names the classifier can choose from. They map one-to-one onto the
// service's action functions.
const (
	toolProcessPayment   = "process_payment_intent"
	toolCheckBalance     = "check_balance"
	toolHistory          = "get_transaction_history"
	toolQueryInvestments = "query_investments"
	toolUserInfo         = "get_user_info"
	toolAgreeAddPhone    = "user_agrees_to_add_phone"
	toolCollectPhone     = "collect_phone_number"
	toolConfirmPhone     = "confirm_phone_number"
	toolSavePhoneSignup  = "save_phone_on_signup"
)

// ToolCall is the function invocation chosen by the classifier.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Prompt carries one user utterance plus the conversation state the
// classifier needs to disambiguate it.
type Prompt struct {
	UserText string
	Language string
	State    string
	Context  map[string]any
}

// LLM classifies utterances into tool calls and renders spoken replies.
// Classify returns a tool call, or direct reply text when no tool fits.
// Respond turns a scenario description into one short spoken sentence; an
// error makes the caller fall back to the fixed templates.
type LLM interface {
	Classify(ctx context.Context, prompt Prompt) (*ToolCall, string, error)
	Respond(ctx context.Context, scenario, language, description string) (string, error)
}

// stateContext renders the conversation-state hint appended to the system
// prompt, steering the model through the multi-turn phone flows.
func stateContext(p Prompt) string {
	switch p.State {
	case StateAwaitingRemainingDigit:
		partial, _ := p.Context["partial_phone"].(string)
		amount, _ := p.Context["amount"].(float64)
		needed := 10 - len(partial)
		return fmt.Sprintf("\n\nCONTEXT: The user started giving a phone number: %s (%d digits). They need %d more digits. The payment amount is %.0f rupees. If the user provides digits now, COMBINE them with the partial number and call process_payment_intent with the complete 10-digit phone number as the recipient.", partial, len(partial), needed, amount)
	case StateAwaitingPhoneDigits:
		recipient, _ := p.Context["recipient_name"].(string)
		amount, _ := p.Context["amount"].(float64)
		return fmt.Sprintf("\n\nCONTEXT: The user is providing a phone number for recipient %q for a payment of %.0f rupees. If they say digits, call collect_phone_number. If they ask a general question instead, answer it with the appropriate function.", recipient, amount)
	case StateConfirmingPhone:
		return "\n\nCONTEXT: The user is confirming a phone number. Call confirm_phone_number with confirmation=true for yes/correct/right, false for no/wrong."
	case StateAwaitingPhoneResponse:
		return "\n\nCONTEXT: The user was asked whether to add a phone number for an unknown recipient. If they agree (yes, sure, ok, add it), call user_agrees_to_add_phone."
	}
	return ""
}
