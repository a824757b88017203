package intent

import "errors"

// Intent labels returned to the voice client. The client only branches on
// "payment" plus the requires_pin flag in Data; the rest drive UI hints.
const (
	IntentBalance              = "balance"
	IntentPayment              = "payment"
	IntentHistory              = "history"
	IntentInvestment           = "investment_query"
	IntentUserInfo             = "user_info"
	IntentPhoneConfirmation    = "phone_confirmation"
	IntentPhoneAccountCreation = "phone_account_creation"
	IntentDirect               = "direct"
	IntentUnknown              = "unknown"
)

// ErrClassification indicates the language model was unreachable or returned
// an unusable reply.
var ErrClassification = errors.New("intent classification failed")

// Result is the outcome of processing one voice command.
type Result struct {
	Intent  string         `json:"intent"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// RequiresPIN reports whether the command needs PIN confirmation to proceed.
func (r Result) RequiresPIN() bool {
	v, _ := r.Data["requires_pin"].(bool)
	return v
}
