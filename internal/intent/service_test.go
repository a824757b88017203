package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicepay/voicepay/internal/invest"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/logging"
	"github.com/voicepay/voicepay/internal/user"
)

type staticPrices map[string]float64

func (p staticPrices) Price(instrument string) (float64, error) {
	price, ok := p[instrument]
	if !ok {
		return 0, invest.ErrUnknownInstrument
	}
	return price, nil
}

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()

	repo := user.NewMemoryRepository()
	users := user.NewService(repo, logging.Discard())
	require.NoError(t, users.Seed(context.Background()))

	book := ledger.NewInMemory(repo)
	investments := invest.NewService(users, invest.NewMemoryRepository(), book, staticPrices{"gold": 70.0}, nil, logging.Discard())
	store := NewMemoryStore()
	svc := NewService(users, book, investments, NewHeuristic(), store, logging.Discard())
	return svc, store
}

func TestBalanceQuery(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Process(context.Background(), 1, "What's my balance?", "en")
	require.NoError(t, err)
	assert.Equal(t, IntentBalance, res.Intent)
	assert.Equal(t, "Your balance is ₹10000.", res.Message)
	assert.False(t, res.RequiresPIN())
}

func TestPaymentToKnownContact(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Process(context.Background(), 1, "Pay 100 rupees to Rahul", "en")
	require.NoError(t, err)
	assert.Equal(t, IntentPayment, res.Intent)
	assert.True(t, res.RequiresPIN())
	assert.Equal(t, "Rahul", res.Data["recipient"])
	assert.Equal(t, 100.0, res.Data["amount"])
	assert.Equal(t, "Enter your PIN to pay ₹100 to Rahul.", res.Message)
}

func TestPaymentResolvesMisheardName(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Process(context.Background(), 1, "Send 50 to Neeraj", "en")
	require.NoError(t, err)
	assert.Equal(t, IntentPayment, res.Intent)
	assert.Equal(t, "payment_to_self", res.Data["scenario"])
}

func TestPaymentToSelfRejected(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Process(context.Background(), 2, "Pay 100 to Rahul", "en")
	require.NoError(t, err)
	assert.Equal(t, "payment_to_self", res.Data["scenario"])
	assert.False(t, res.RequiresPIN())
}

func TestPhoneCollectionFlow(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res, err := svc.Process(ctx, 1, "Pay 200 to Anuj", "en")
	require.NoError(t, err)
	assert.Equal(t, "recipient_not_found", res.Data["scenario"])
	assert.False(t, res.RequiresPIN())

	state, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingPhoneResponse, state.Name)

	res, err = svc.Process(ctx, 1, "yes please", "en")
	require.NoError(t, err)
	assert.Equal(t, "prompt_for_phone_digits", res.Data["scenario"])

	res, err = svc.Process(ctx, 1, "9686270688", "en")
	require.NoError(t, err)
	assert.Equal(t, "confirm_phone_number", res.Data["scenario"])
	assert.Equal(t, "9, 6, 8, 6, 2, 7, 0, 6, 8, 8", res.Data["phone_digits"])

	res, err = svc.Process(ctx, 1, "yes that's right", "en")
	require.NoError(t, err)
	assert.Equal(t, "phone_confirmed_ready_for_pin", res.Data["scenario"])
	assert.True(t, res.RequiresPIN())
	assert.Equal(t, 200.0, res.Data["amount"])
	assert.Equal(t, false, res.Data["account_exists"])

	// Flow complete; only the language lock remains.
	state, ok, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateActive, state.Name)
}

func TestPhoneRejectionRestartsCollection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Process(ctx, 1, "Pay 200 to Anuj", "en")
	require.NoError(t, err)
	_, err = svc.Process(ctx, 1, "yes", "en")
	require.NoError(t, err)
	_, err = svc.Process(ctx, 1, "9686270688", "en")
	require.NoError(t, err)

	res, err := svc.Process(ctx, 1, "no that's wrong", "en")
	require.NoError(t, err)
	assert.Equal(t, "phone_rejected_retry", res.Data["scenario"])
}

func TestIncompletePhoneNumberContinuation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Process(ctx, 1, "Pay 300 to 91080", "en")
	require.NoError(t, err)
	assert.Equal(t, "incomplete_phone_number", res.Data["scenario"])
	assert.Equal(t, 5, res.Data["digits_needed"])

	res, err = svc.Process(ctx, 1, "12345", "en")
	require.NoError(t, err)
	assert.Equal(t, "payment_to_new_phone", res.Data["scenario"])
	assert.Equal(t, "9108012345", res.Data["recipient_phone"])
	assert.Equal(t, 300.0, res.Data["amount"])
	assert.True(t, res.RequiresPIN())
	assert.Equal(t, "User 2345", res.Data["recipient"])
}

func TestPaymentToExistingPhoneNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	repoUser, err := svc.users.CreatePhoneUser(ctx, "Anuj", "9686270688")
	require.NoError(t, err)

	res, err := svc.Process(ctx, 1, "Pay 150 to 9686270688", "en")
	require.NoError(t, err)
	assert.Equal(t, "payment_to_existing_phone", res.Data["scenario"])
	assert.Equal(t, repoUser.Name, res.Data["recipient"])
	assert.True(t, res.RequiresPIN())
}

func TestLanguageLockedToFirstTurn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Process(ctx, 1, "मेरा बैलेंस कितना है", "hi")
	require.NoError(t, err)
	assert.Equal(t, IntentBalance, res.Intent)
	assert.Equal(t, "आपका बैलेंस ₹10000 है।", res.Message)

	// A later turn tagged as English still answers in the locked language.
	res, err = svc.Process(ctx, 1, "What's my balance?", "en")
	require.NoError(t, err)
	assert.Equal(t, "आपका बैलेंस ₹10000 है।", res.Message)
}

func TestClearConversationUnlocksLanguage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Process(ctx, 1, "मेरा बैलेंस कितना है", "hi")
	require.NoError(t, err)
	require.NoError(t, svc.ClearConversation(ctx, 1))

	res, err := svc.Process(ctx, 1, "What's my balance?", "en")
	require.NoError(t, err)
	assert.Equal(t, "Your balance is ₹10000.", res.Message)
}

func TestHindiPaymentCommand(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Process(context.Background(), 1, "Rahul ko 100 bhejo", "hi")
	require.NoError(t, err)
	assert.Equal(t, IntentPayment, res.Intent)
	assert.Equal(t, "Rahul", res.Data["recipient"])
	assert.Equal(t, "Rahul को ₹100 देने के लिए पिन डालें।", res.Message)
}

func TestUntaggedHinglishAnswersInHindi(t *testing.T) {
	svc, _ := newTestService(t)

	// No language tag from the caller: the fallback classifier must pick
	// Hindi from the Hinglish particles before the reply is rendered.
	res, err := svc.Process(context.Background(), 1, "Rahul ko 100 bhejo", "")
	require.NoError(t, err)
	assert.Equal(t, IntentPayment, res.Intent)
	assert.Equal(t, "Rahul", res.Data["recipient"])
	assert.Equal(t, "Rahul को ₹100 देने के लिए पिन डालें।", res.Message)
}

func TestTranscriptCorrectedBeforeDispatch(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Process(context.Background(), 1, "Pay 100 to Rahool", "en")
	require.NoError(t, err)
	assert.Equal(t, IntentPayment, res.Intent)
	assert.Equal(t, "Rahul", res.Data["recipient"])
}

func TestInvestmentQuery(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Process(ctx, 1, "Show my investments", "en")
	require.NoError(t, err)
	assert.Equal(t, IntentInvestment, res.Intent)
	assert.Equal(t, "no_investments", res.Data["scenario"])

	_, err = svc.invest.Invest(ctx, invest.InvestInput{UserID: 1, Instrument: "gold", Amount: 700})
	require.NoError(t, err)

	res, err = svc.Process(ctx, 1, "Show my investments", "en")
	require.NoError(t, err)
	assert.Equal(t, "investment_query", res.Data["scenario"])
	assert.Contains(t, res.Message, "₹700")
}

func TestUnknownCommand(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Process(context.Background(), 1, "open the pod bay doors", "en")
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, res.Intent)
	assert.Equal(t, "I couldn't understand that command. Please try again.", res.Message)
}
