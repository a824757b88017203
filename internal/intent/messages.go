package intent

import "fmt"

// scenarioMessage renders the fixed spoken reply for a scenario. Used when no
// generator is available or the generator fails; every scenario has a
// deterministic English and Hindi rendering.
func scenarioMessage(scenario, language string, data map[string]any) string {
	hi := language == "hi"
	num := func(key string) float64 {
		v, _ := data[key].(float64)
		return v
	}
	str := func(key string) string {
		v, _ := data[key].(string)
		return v
	}

	switch scenario {
	case "payment_to_existing_contact", "payment_to_existing_phone", "phone_confirmed_ready_for_pin", "account_created_for_phone":
		if hi {
			return fmt.Sprintf("%s को ₹%.0f देने के लिए पिन डालें।", str("recipient"), num("amount"))
		}
		return fmt.Sprintf("Enter your PIN to pay ₹%.0f to %s.", num("amount"), str("recipient"))

	case "payment_to_new_phone":
		if hi {
			return fmt.Sprintf("फोन %s के लिए नया खाता बनाया गया। ₹%.0f भेजने के लिए पिन डालें।", str("recipient_phone"), num("amount"))
		}
		return fmt.Sprintf("A new account was created for %s. Enter your PIN to pay ₹%.0f.", str("recipient_phone"), num("amount"))

	case "payment_to_self":
		if hi {
			return "आप खुद को पैसे नहीं भेज सकते।"
		}
		return "You cannot send money to yourself."

	case "incomplete_phone_number":
		provided := len(str("incomplete_phone"))
		if hi {
			return fmt.Sprintf("मुझे सिर्फ %d अंक मिले। कृपया पूरा 10 अंकों का नंबर बताएं।", provided)
		}
		return fmt.Sprintf("I only heard %d digits. Please say the complete 10-digit number, or just the remaining %d digits.", provided, 10-provided)

	case "recipient_not_found":
		if hi {
			return fmt.Sprintf("मुझे %s नहीं मिले। क्या आप उनका फोन नंबर जोड़ना चाहेंगे?", str("pending_recipient"))
		}
		return fmt.Sprintf("I couldn't find %s. Would you like to add their phone number?", str("pending_recipient"))

	case "prompt_for_phone_digits":
		if hi {
			return "ठीक है, कृपया 10 अंकों का फोन नंबर बताएं।"
		}
		return "Okay, please tell me the 10-digit phone number."

	case "invalid_phone_number":
		if hi {
			return "नंबर 10 अंकों का होना चाहिए। कृपया सभी 10 अंक साफ-साफ बोलें।"
		}
		return "That wasn't a 10-digit number. Please say all 10 digits clearly."

	case "confirm_phone_number":
		if hi {
			return fmt.Sprintf("मैंने सुना: %s। क्या यह सही है?", str("phone_digits"))
		}
		return fmt.Sprintf("I heard %s. Is that correct?", str("phone_digits"))

	case "phone_rejected_retry":
		if hi {
			return "ठीक है, कृपया फोन नंबर फिर से बताएं।"
		}
		return "Okay, please say the phone number again."

	case "no_pending_phone_request", "no_phone_to_confirm", "no_pending_account_creation":
		if hi {
			return "कोई लंबित अनुरोध नहीं है। कृपया फिर से शुरू करें।"
		}
		return "There's nothing pending to confirm. Please start again."

	case "balance_check":
		if hi {
			return fmt.Sprintf("आपका बैलेंस ₹%.0f है।", num("balance"))
		}
		return fmt.Sprintf("Your balance is ₹%.0f.", num("balance"))

	case "user_info":
		if hi {
			return fmt.Sprintf("आपका नाम %s है।", str("name"))
		}
		return fmt.Sprintf("Your name is %s.", str("name"))

	case "user_not_found":
		if hi {
			return "उपयोगकर्ता की जानकारी नहीं मिली।"
		}
		return "User information not found."

	case "no_transactions":
		if hi {
			return "आपका कोई लेन-देन नहीं है।"
		}
		return "You have no transactions yet."

	case "transaction_history":
		count, _ := data["count"].(int)
		if hi {
			return fmt.Sprintf("आपके %d लेन-देन हैं। कुल खर्च ₹%.0f है।", count, num("total_spent"))
		}
		return fmt.Sprintf("You have %d transactions. Total spending is ₹%.0f.", count, num("total_spent"))

	case "investment_query":
		p, _ := data["portfolio"].(map[string]any)
		invested, _ := p["total_invested"].(float64)
		value, _ := p["current_value"].(float64)
		ret, _ := p["total_return"].(float64)
		pct, _ := p["return_percentage"].(float64)
		if hi {
			return fmt.Sprintf("आपने ₹%.0f निवेश किए। अभी ₹%.0f है। ₹%.0f कमाए, यानी %.1f%% लाभ।", invested, value, ret, pct)
		}
		return fmt.Sprintf("You invested ₹%.0f. Now worth ₹%.0f. You earned ₹%.0f, that's %.1f%% gain.", invested, value, ret, pct)

	case "no_investments":
		if hi {
			return "आपने अभी तक कोई निवेश नहीं किया है।"
		}
		return "You haven't made any investments yet."

	case "accounts_linked":
		if hi {
			return fmt.Sprintf("खाते जोड़ दिए गए। संयुक्त बैलेंस ₹%.0f है।", num("new_balance"))
		}
		return fmt.Sprintf("Accounts linked. Your combined balance is ₹%.0f.", num("new_balance"))

	case "phone_saved":
		if hi {
			return "फोन नंबर सेव हो गया।"
		}
		return "Phone number saved."

	case "invalid_phone_on_signup":
		if hi {
			return "फोन नंबर 10 अंकों का होना चाहिए।"
		}
		return "The phone number should be 10 digits."
	}

	if hi {
		return "ठीक है।"
	}
	return "Okay."
}

// scenarioDescription renders the factual description handed to the reply
// generator when one is configured.
func scenarioDescription(scenario string, data map[string]any) string {
	return fmt.Sprintf("Scenario: %s. Data: %v. Produce one short spoken sentence for the user.", scenario, data)
}
