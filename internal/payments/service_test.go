package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/logging"
	"github.com/voicepay/voicepay/internal/user"
)

func newTestService(t *testing.T) (*Service, *user.Service, ledger.Ledger) {
	t.Helper()

	repo := user.NewMemoryRepository()
	users := user.NewService(repo, logging.Discard())
	require.NoError(t, users.Seed(context.Background()))

	book := ledger.NewInMemory(repo)
	return NewService(users, book, nil), users, book
}

func TestPayMovesMoneyAndRecordsBothLegs(t *testing.T) {
	svc, _, book := newTestService(t)
	ctx := context.Background()

	res, err := svc.Pay(ctx, PayInput{UserID: 1, Recipient: "Rahul", Amount: 500, PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "Rahul", res.Recipient)
	assert.Equal(t, 9500.0, res.NewBalance)

	payerTxns, err := book.Transactions(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, payerTxns, 1)
	assert.Equal(t, ledger.TypeDebit, payerTxns[0].Type)
	assert.Equal(t, 500.0, payerTxns[0].Amount)

	payee, err := svc.users.Resolve(ctx, "Rahul")
	require.NoError(t, err)
	payeeTxns, err := book.Transactions(ctx, payee.ID, 10)
	require.NoError(t, err)
	require.Len(t, payeeTxns, 1)
	assert.Equal(t, ledger.TypeCredit, payeeTxns[0].Type)

	payeeBalance, err := book.Balance(ctx, payee.ID)
	require.NoError(t, err)
	assert.Equal(t, 15500.0, payeeBalance)
}

func TestPayInsufficientBalanceLeavesLedgerUntouched(t *testing.T) {
	svc, _, book := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Pay(ctx, PayInput{UserID: 1, Recipient: "Rahul", Amount: 50000, PIN: "1234"})
		require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	}

	balance, err := book.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balance)

	txns, err := book.Transactions(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestPayInvalidPIN(t *testing.T) {
	svc, _, book := newTestService(t)
	ctx := context.Background()

	_, err := svc.Pay(ctx, PayInput{UserID: 1, Recipient: "Rahul", Amount: 100, PIN: "0000"})
	require.ErrorIs(t, err, user.ErrInvalidPIN)

	balance, err := book.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balance)
}

func TestPayUnknownRecipient(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Pay(context.Background(), PayInput{UserID: 1, Recipient: "Chandra", Amount: 100, PIN: "1234"})
	require.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestPayToSelfRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Pay(context.Background(), PayInput{UserID: 1, Recipient: "Niraj", Amount: 100, PIN: "1234"})
	require.ErrorIs(t, err, user.ErrSelfPayment)
}

func TestPayRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Pay(context.Background(), PayInput{UserID: 1, Recipient: "Rahul", Amount: 0, PIN: "1234"})
	require.Error(t, err)
	_, err = svc.Pay(context.Background(), PayInput{UserID: 1, Recipient: "Rahul", Amount: -5, PIN: "1234"})
	require.Error(t, err)
}

func TestPayByTenDigitPhone(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	rahul, err := users.Resolve(ctx, "Rahul")
	require.NoError(t, err)
	_, err = users.SavePhone(ctx, rahul.ID, "9876543210")
	require.NoError(t, err)

	res, err := svc.Pay(ctx, PayInput{UserID: 1, Recipient: "98765 43210", Amount: 250, PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "Rahul", res.Recipient)
	assert.Equal(t, 9750.0, res.NewBalance)
}

func TestRoundOffNudge(t *testing.T) {
	cases := []struct {
		amount float64
		want   float64
	}{
		{495, 5},
		{493, 7},
		{500, 10},
		{1, 9},
		{10, 10},
	}
	for _, tc := range cases {
		nudge := RoundOffNudge(tc.amount)
		assert.Equal(t, tc.want, nudge.Amount, "amount %.0f", tc.amount)
		assert.Equal(t, "gold", nudge.Type)
		assert.Contains(t, nudge.Message, "invest in gold")
	}
}
