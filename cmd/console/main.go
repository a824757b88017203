package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/voicepay/voicepay/internal/intent"
	"github.com/voicepay/voicepay/internal/invest"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/logging"
	"github.com/voicepay/voicepay/internal/payments"
	"github.com/voicepay/voicepay/internal/speech"
	"github.com/voicepay/voicepay/internal/user"
	"github.com/voicepay/voicepay/internal/voice"
)

// consoleSpeaker prints replies instead of synthesizing audio. Playback
// resolves immediately.
type consoleSpeaker struct {
	done chan struct{}
}

func newConsoleSpeaker() *consoleSpeaker {
	done := make(chan struct{})
	close(done)
	return &consoleSpeaker{done: done}
}

func (s *consoleSpeaker) Speak(_ context.Context, text, _ string) (speech.Utterance, error) {
	fmt.Println("<<", text)
	return speech.Utterance{Done: s.done}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// main runs the full command pipeline against in-memory stores, with typed
// lines standing in for recorded speech. Useful for exercising the
// conversation flows without a microphone or any API keys.
func main() {
	logger := logging.New("warn")
	ctx := context.Background()

	repo := user.NewMemoryRepository()
	book := ledger.NewInMemory(repo)
	positions := invest.NewMemoryRepository()

	users := user.NewService(repo, logger)
	if err := users.Seed(ctx); err != nil {
		logger.Error("failed to seed demo users", "error", err)
		os.Exit(1)
	}

	investments := invest.NewService(users, positions, book, invest.NewStaticPrices(42), nil, logger)
	commands := intent.NewService(users, book, investments, intent.NewHeuristic(), intent.NewMemoryStore(), logger)
	payer := payments.NewService(users, book, nil)

	session := voice.NewSession(voice.SessionConfig{
		UserID:   1,
		Speaker:  newConsoleSpeaker(),
		Commands: commands,
		Payments: payer,
		Logger:   logger,
	})

	fmt.Println("VoicePay console. You are Niraj. Type a command, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		// A pending payment takes its PIN as typed digits; anything else
		// replaces the pending payment with a fresh command.
		if session.Phase() == voice.PhaseAwaitingPIN && isDigits(line) {
			var outcome *voice.PaymentOutcome
			for i := 0; i < len(line); i++ {
				out, err := session.EnterDigit(ctx, line[i])
				if err != nil {
					break
				}
				if out != nil {
					outcome = out
				}
			}
			if outcome != nil && outcome.Success && outcome.Nudge.Amount > 0 {
				fmt.Println("<<", outcome.Nudge.Message)
			}
			continue
		}

		if _, err := session.SubmitText(ctx, line); err != nil {
			fmt.Println("!!", err)
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error("reading input failed", "error", err)
		os.Exit(1)
	}
}
