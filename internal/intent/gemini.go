package intent

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = `You are a voice-enabled UPI payment assistant with phone-based contact creation.

LANGUAGE SUPPORT:
- ALWAYS match the user's language in your response.
- Hindi indicators: bhejo, karo, kitna, mera, aapka, hai, ko, ka, ki, ke.
- If the user speaks Hindi or Hinglish, respond in Hindi. Otherwise respond in English.

Understand the user's intent and call the correct function:
- user info queries (name, profile, who am I) -> get_user_info
- spending, expense or monthly spending queries -> get_transaction_history
- sending or transferring money (to a name OR a phone number) -> process_payment_intent
- checking account balance -> check_balance
- ANY investment query (invested amount, gains, returns, portfolio) -> query_investments
- user says YES to adding a phone number -> user_agrees_to_add_phone
- user speaks phone number digits -> collect_phone_number (ONLY when the conversation state is awaiting phone digits)
- user confirms or denies a phone number -> confirm_phone_number
- new user provides a phone number on signup -> save_phone_on_signup

Payment recipients can be a NAME or a 10-digit phone number. When the user
speaks digits as words ("nine six eight six..."), extract the digit string.
Treat "RS", "rupees", "bucks" and "dollars" as Indian Rupees and extract only
the numeric amount. The payment amount is never part of the phone number.

Account for transcription typos in names, like "neeraj" for "niraj".

Respond in clear, natural spoken language suitable for text to speech.`

// Gemini classifies commands with the Gemini function-calling API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini dials the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("dial gemini: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Close releases the underlying API connection.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Classify asks the model to pick a tool for the utterance. Returns the tool
// call, or the model's direct reply text when it chose not to call a tool.
func (g *Gemini) Classify(ctx context.Context, prompt Prompt) (*ToolCall, string, error) {
	model := g.client.GenerativeModel(g.model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: declarations()}}
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt + stateContext(prompt))}}
	model.SetTemperature(0.5)

	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf("The user said: %q", prompt.UserText)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("%w: empty response", ErrClassification)
	}

	var direct string
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.FunctionCall:
			return &ToolCall{Name: v.Name, Args: v.Args}, "", nil
		case genai.Text:
			direct += string(v)
		}
	}
	return nil, direct, nil
}

// Respond renders one short spoken sentence for a scenario.
func (g *Gemini) Respond(ctx context.Context, scenario, language, description string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(respondInstruction(scenario, language))}}
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(200)

	resp, err := model.GenerateContent(ctx, genai.Text(description))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response", ErrClassification)
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", fmt.Errorf("%w: no text in response", ErrClassification)
	}
	return out, nil
}

func respondInstruction(scenario, language string) string {
	brief := scenario == "payment_to_existing_contact" || scenario == "payment_to_existing_phone" ||
		scenario == "payment_to_new_phone" || scenario == "balance_check" || scenario == "user_info"
	switch {
	case brief && language == "hi":
		return "Be EXTREMELY brief (1 short sentence). Respond in Hindi, Devanagari script only."
	case brief:
		return "Be EXTREMELY brief (1 short sentence). English only."
	case language == "hi":
		return "Be friendly and conversational. Respond in Hindi, Devanagari script only."
	default:
		return "Be friendly and conversational. English only."
	}
}

func declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        toolProcessPayment,
			Description: "Process a payment or money transfer. Use for 'pay', 'send money', 'transfer', 'bhejo'. Recipient can be a name OR a 10-digit phone number.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"recipient": {Type: genai.TypeString, Description: "Name of person OR 10-digit phone number"},
					"amount":    {Type: genai.TypeNumber, Description: "Amount in rupees"},
				},
				Required: []string{"recipient", "amount"},
			},
		},
		{
			Name:        toolCheckBalance,
			Description: "Check the user's current wallet balance. Use for 'what's my balance', 'how much money do I have', 'balance kitna hai'. Do NOT use for spending or investment queries.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        toolHistory,
			Description: "Get the user's transaction history and total spending. Use for 'how much did I spend', 'show my transactions', 'spending history', 'kitna kharch kiya'.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"limit": {Type: genai.TypeInteger, Description: "Number of transactions to retrieve (default 10)"},
				},
			},
		},
		{
			Name:        toolQueryInvestments,
			Description: "Get the user's investment data with gains and returns. Default for ALL investment queries: 'how much have I invested', 'show my portfolio', 'kitna invest kiya', 'kitna kamaya'.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        toolUserInfo,
			Description: "Get the user's basic information (name, email, phone). Use for 'what is my name', 'who am I', 'mera naam kya hai'.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        toolAgreeAddPhone,
			Description: "Call this when the user says YES to adding a phone number (yes, yeah, sure, ok, add it).",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        toolCollectPhone,
			Description: "Collect the phone number when the user speaks the 10 digits.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"phone_number": {Type: genai.TypeString, Description: "10-digit phone number spoken by the user"},
				},
				Required: []string{"phone_number"},
			},
		},
		{
			Name:        toolConfirmPhone,
			Description: "Confirm the phone number after the user says yes or no.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"confirmation": {Type: genai.TypeBoolean, Description: "True if confirmed (yes/correct/right), false if denied"},
				},
				Required: []string{"confirmation"},
			},
		},
		{
			Name:        toolSavePhoneSignup,
			Description: "Save the phone number when a new user provides it during onboarding.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"phone_number": {Type: genai.TypeString, Description: "10-digit phone number"},
				},
				Required: []string{"phone_number"},
			},
		},
	}
}
