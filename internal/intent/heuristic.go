package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Heuristic is a rule-based classifier used when no Gemini key is configured.
// It covers the demo commands deterministically; Respond always errors so the
// caller uses the fixed message templates.
type Heuristic struct{}

// NewHeuristic constructs the rule-based classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var (
	payEnglishRe = regexp.MustCompile(`(?i)\b(?:pay|send|transfer|give)\b.*?(\d+(?:\.\d+)?)\s*(?:rupees|rs|rupaye|bucks|dollars)?\s*(?:rupees|rs)?\s*to\s+(.+?)\s*$`)
	payHindiRe   = regexp.MustCompile(`(?i)^(.+?)\s+(?:ko|को)\s+(\d+(?:\.\d+)?)\s*(?:rupees|rupaye|रुपये)?\s*(?:bhejo|bhej|do|de do|भेजो|दो)?\s*$`)
	yesRe        = regexp.MustCompile(`(?i)\b(?:yes|yeah|yep|sure|ok|okay|correct|right|haan|han|हां|हाँ|ठीक)\b`)
	noRe         = regexp.MustCompile(`(?i)\b(?:no|nope|wrong|incorrect|nahi|nahin|नहीं)\b`)
)

// Classify applies the rule table in priority order: conversation-state rules
// first, then keyword intents, then the payment grammar.
func (h *Heuristic) Classify(_ context.Context, p Prompt) (*ToolCall, string, error) {
	text := strings.TrimSpace(p.UserText)
	lower := strings.ToLower(text)
	digits := extractDigits(text)

	switch p.State {
	case StateConfirmingPhone:
		if yesRe.MatchString(lower) {
			return &ToolCall{Name: toolConfirmPhone, Args: map[string]any{"confirmation": true}}, "", nil
		}
		if noRe.MatchString(lower) {
			return &ToolCall{Name: toolConfirmPhone, Args: map[string]any{"confirmation": false}}, "", nil
		}
	case StateAwaitingPhoneDigits:
		if len(digits) >= 5 && !isGeneralQuestion(lower) {
			return &ToolCall{Name: toolCollectPhone, Args: map[string]any{"phone_number": digits}}, "", nil
		}
	case StateAwaitingPhoneResponse:
		if yesRe.MatchString(lower) {
			return &ToolCall{Name: toolAgreeAddPhone, Args: map[string]any{}}, "", nil
		}
	case StateAwaitingRemainingDigit:
		if len(digits) > 0 {
			partial, _ := p.Context["partial_phone"].(string)
			amount, _ := p.Context["amount"].(float64)
			return &ToolCall{
				Name: toolProcessPayment,
				Args: map[string]any{"recipient": partial + digits, "amount": amount},
			}, "", nil
		}
	}

	switch {
	case containsAny(lower, "invest", "portfolio", "nivesh", "निवेश", "kamaya", "कमाया", "returns"):
		return &ToolCall{Name: toolQueryInvestments, Args: map[string]any{}}, "", nil
	case containsAny(lower, "spend", "spent", "transaction", "history", "expense", "kharch", "खर्च"):
		return &ToolCall{Name: toolHistory, Args: map[string]any{}}, "", nil
	case containsAny(lower, "balance", "बैलेंस", "kitna paisa", "कितने पैसे"):
		return &ToolCall{Name: toolCheckBalance, Args: map[string]any{}}, "", nil
	case containsAny(lower, "my name", "who am i", "my profile", "my details", "mera naam", "मेरा नाम"):
		return &ToolCall{Name: toolUserInfo, Args: map[string]any{}}, "", nil
	}

	if m := payEnglishRe.FindStringSubmatch(text); m != nil {
		amount, _ := strconv.ParseFloat(m[1], 64)
		return &ToolCall{
			Name: toolProcessPayment,
			Args: map[string]any{"recipient": strings.TrimSpace(m[2]), "amount": amount},
		}, "", nil
	}
	if containsAny(lower, "bhejo", "bhej", "भेजो", " ko ", " को ") {
		if m := payHindiRe.FindStringSubmatch(text); m != nil {
			amount, _ := strconv.ParseFloat(m[2], 64)
			recipient := strings.TrimSpace(m[1])
			if amount > 0 && recipient != "" {
				return &ToolCall{
					Name: toolProcessPayment,
					Args: map[string]any{"recipient": recipient, "amount": amount},
				}, "", nil
			}
		}
	}

	return nil, "", nil
}

// Respond is unsupported; callers fall back to the message templates.
func (h *Heuristic) Respond(context.Context, string, string, string) (string, error) {
	return "", fmt.Errorf("%w: heuristic classifier has no generator", ErrClassification)
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// isGeneralQuestion guards the phone-digit state: a balance or profile
// question mid-flow is answered instead of being swallowed as digits.
func isGeneralQuestion(lower string) bool {
	return containsAny(lower, "balance", "my name", "who am i", "invest", "transaction")
}
