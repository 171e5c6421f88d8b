// cmd/chat-cli/chat.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"govsupport-chatbot/internal/common/errors"
	apiclient "govsupport-chatbot/internal/common/http"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/engine/conversation"
	"govsupport-chatbot/internal/engine/extractor"
	"govsupport-chatbot/internal/session"
)

const (
	PromptFreeText = "직접 입력"
	PromptQuit     = "종료"
)

var errExit = stderrors.New("exit requested")

// engine is what a terminal conversation needs: the in-process
// orchestrator or a remote chat API.
type engine interface {
	HandleTurn(ctx context.Context, sessionID, message string) (*conversation.TurnResult, error)
}

// reader asks the user for the next message given the last reply.
type reader func(last *conversation.TurnResult) (string, error)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		remote, _ := cmd.Flags().GetString("remote")
		sessionID, _ := cmd.Flags().GetString("session")
		numericAge, _ := cmd.Flags().GetBool("numeric-age")

		level := "warn"
		if debug {
			level = "debug"
		}
		log := logger.NewStructured(level, "console")

		var e engine
		if remote != "" {
			client := apiclient.NewClient(remote, 10*time.Second)
			if err := client.Ready(cmd.Context()); err != nil {
				return fmt.Errorf("chat api at %s: %w", remote, err)
			}
			e = client
		} else {
			e = conversation.NewOrchestrator(session.NewMemoryStore(),
				conversation.WithExtractor(extractor.New(extractor.Options{NumericAge: numericAge})),
				conversation.WithRecommender(conversation.StaticRecommender{}, 3),
				conversation.WithLogger(log),
			)
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		err := converse(cmd.Context(), e, sessionID, promptReader, cmd.OutOrStdout())
		if stderrors.Is(err, errExit) || stderrors.Is(err, promptui.ErrInterrupt) || stderrors.Is(err, promptui.ErrEOF) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("remote", "r", "", "chat API base URL; runs in-process when empty")
	chatCmd.Flags().StringP("session", "s", "", "session id to resume (default is a new uuid)")
	chatCmd.Flags().Bool("numeric-age", false, "parse ages like \"29살\" in local mode")
}

// converse greets the bot and keeps exchanging messages until the
// profile is complete or read returns an error.
func converse(ctx context.Context, e engine, sessionID string, read reader, out io.Writer) error {
	res, err := e.HandleTurn(ctx, sessionID, "")
	if err != nil {
		return err
	}

	for {
		render(out, res)
		if res.Type == conversation.TypeComplete {
			return nil
		}

		msg, err := read(res)
		if err != nil {
			return err
		}

		next, err := e.HandleTurn(ctx, sessionID, msg)
		if err != nil {
			if stdErr, ok := errors.As(err); ok && stdErr.Retryable {
				fmt.Fprintf(out, "! %s, 다시 시도해 주세요\n", stdErr.Message)
				continue
			}
			return err
		}
		res = next
	}
}

func render(out io.Writer, res *conversation.TurnResult) {
	fmt.Fprintf(out, "\n🤖 %s\n", res.Message)
	if len(res.Options) > 0 {
		fmt.Fprintf(out, "   (%s)\n", strings.Join(res.Options, " / "))
	}
	for i, rec := range res.Recommendations {
		fmt.Fprintf(out, "   %d. %s - %s (적합도 %.0f%%)\n", i+1, rec.Title, rec.Provider, rec.MatchScore*100)
	}
	if res.Type == conversation.TypeComplete || res.CompletionScore > 0 {
		fmt.Fprintf(out, "   프로필 완성도 %.0f%%\n", res.CompletionScore*100)
	}
}

// promptReader offers the question's options as a select list and falls
// back to a free text prompt.
func promptReader(last *conversation.TurnResult) (string, error) {
	if len(last.Options) > 0 {
		sel := promptui.Select{
			Label: "답변을 선택하세요",
			Items: append(append([]string{}, last.Options...), PromptFreeText, PromptQuit),
		}
		_, choice, err := sel.Run()
		if err != nil {
			return "", err
		}
		switch choice {
		case PromptQuit:
			return "", errExit
		case PromptFreeText:
		default:
			return choice, nil
		}
	}

	p := promptui.Prompt{
		Label: "메시지",
		Validate: func(s string) error {
			if len([]rune(s)) > 1000 {
				return fmt.Errorf("1000자 이하로 입력해 주세요")
			}
			return nil
		},
	}
	msg, err := p.Run()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(msg) == PromptQuit {
		return "", errExit
	}
	return msg, nil
}
