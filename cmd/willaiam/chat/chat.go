// Package chatcmder provides the chat command: an interactive conversation
// with the assistant, with feedback and history built in.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
	"github.com/Birmingham-AI/willAIam/pkg/cliui"
	"github.com/Birmingham-AI/willAIam/pkg/config"
	"github.com/Birmingham-AI/willAIam/pkg/feedback"
	"github.com/Birmingham-AI/willAIam/pkg/logger"
	"github.com/Birmingham-AI/willAIam/pkg/session"
)

type chatCommander struct {
	target    string
	webSearch bool
	debug     bool
	configDir string

	v   *viper.Viper
	log *zap.Logger

	// lastTraceID is the trace of the most recently completed answer; it is
	// written from the stream-consumer goroutine.
	mu          sync.Mutex
	lastTraceID string
}

var chatFlags = config.FlagSet{
	config.FlagBackendTarget: {
		Name:        "target",
		Shorthand:   "t",
		ViperKey:    "backend.target",
		Description: "Answer backend URL",
	},
	config.FlagWebSearch: {
		Name:        "web-search",
		Shorthand:   "w",
		ViperKey:    "backend.enable_web_search",
		Description: "Allow the backend to search the web",
	},
}

const chatLongDesc string = `Start an interactive chat session with the assistant.

Answers stream to the terminal as they generate. Press Ctrl+C during an
answer to stop it; the partial answer is kept in the conversation.

Commands inside the session:
  /like [comment]     Rate the last answer up
  /dislike [comment]  Rate the last answer down
  /history            Show the stored conversation
  /reset              Start the conversation over
  /exit               Leave the session

Examples:
  willaiam chat
  willaiam chat --target http://localhost:8000`

const chatShortDesc string = "Interactive chat with the assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, chatFlags, []string{
				config.FlagBackendTarget,
				config.FlagWebSearch,
			})
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, chatFlags, config.FlagBackendTarget, &cmder.target)
	config.AddBoolFlag(cmd, chatFlags, config.FlagWebSearch, &cmder.webSearch)

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.log = logger.NewLogger(c.debug)
	defer func() { _ = c.log.Sync() }()

	errs := make(chan error, 1)
	hooks := chat.Hooks{
		OnDelta: func(delta string) { fmt.Print(delta) },
		OnTrace: func(traceID string) {
			c.mu.Lock()
			c.lastTraceID = traceID
			c.mu.Unlock()
		},
		OnError: func(err error) { errs <- err },
	}

	s, err := session.New(ctx, c.v, c.configDir, c.log, hooks)
	if err != nil {
		return err
	}
	defer s.Close()

	// Ctrl+C stops the in-flight answer instead of killing the session.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			if s.Assembler.Cancel() {
				fmt.Printf("\n  %s\n", cliui.Faint("(answer stopped)"))
			}
		}
	}()

	fmt.Println()
	if n := s.Store.Len(); n > 0 {
		fmt.Printf("  %s %s\n", cliui.SuccessMark, cliui.DimStyle.Render(fmt.Sprintf("Resuming conversation (%d turns)", n)))
	} else {
		fmt.Printf("  %s\n", cliui.DimStyle.Render("New conversation"))
	}
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type a question and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := cliui.UserLabel("you> ")
	assistantPrompt := cliui.AssistantLabel("willaiam> ")

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if exit := c.command(ctx, s, input); exit {
				break
			}
			continue
		}

		fmt.Print(assistantPrompt)
		turn, err := s.Assembler.Start(ctx, input)
		if err != nil {
			fmt.Printf("\n  %s %v\n", cliui.FailMark, err)
			continue
		}
		<-s.Assembler.Done()

		switch turn.Status {
		case chat.StatusErrored:
			fmt.Printf("\n  %s %s\n", cliui.FailMark, cliui.Notice(turn.Content))
			c.log.Debug("answer failed", zap.Error(<-errs))
		case chat.StatusCancelled:
			// The signal handler already printed the stop marker.
		default:
			fmt.Println()
		}
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// command handles a /-prefixed session command. Reports whether the session
// should end.
func (c *chatCommander) command(ctx context.Context, s *session.Session, input string) bool {
	name, rest, _ := strings.Cut(input, " ")
	comment := strings.TrimSpace(rest)

	switch name {
	case "/exit", "/quit":
		return true

	case "/reset":
		if err := s.Assembler.Reset(ctx); err != nil {
			fmt.Printf("  %s %v\n", cliui.FailMark, err)
			return false
		}
		fmt.Printf("  %s Conversation reset\n\n", cliui.SuccessMark)

	case "/history":
		printHistory(s)

	case "/like":
		c.rate(ctx, s, feedback.RatingLike, comment)

	case "/dislike":
		c.rate(ctx, s, feedback.RatingDislike, comment)

	case "/help":
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("/like /dislike /history /reset /exit"))

	default:
		fmt.Printf("  %s Unknown command %s (try /help)\n\n", cliui.FailMark, name)
	}

	return false
}

// rate submits feedback for the last completed answer.
func (c *chatCommander) rate(ctx context.Context, s *session.Session, rating feedback.Rating, comment string) {
	c.mu.Lock()
	traceID := c.lastTraceID
	c.mu.Unlock()

	if traceID == "" {
		fmt.Printf("  %s Nothing to rate yet\n\n", cliui.FailMark)
		return
	}

	resp, err := s.Feedback.Submit(ctx, traceID, rating, comment)
	switch {
	case errors.Is(err, feedback.ErrAlreadySubmitted):
		fmt.Printf("  %s Already rated that answer\n\n", cliui.FailMark)
	case err != nil:
		fmt.Printf("  %s %v\n\n", cliui.FailMark, err)
	case !resp.Success:
		fmt.Printf("  %s %s\n\n", cliui.FailMark, resp.Message)
	default:
		fmt.Printf("  %s Feedback sent\n\n", cliui.SuccessMark)
	}
}

// printHistory prints the stored conversation.
func printHistory(s *session.Session) {
	turns := s.Store.All()
	if len(turns) == 0 {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No conversation yet."))
		return
	}

	fmt.Println()
	for _, turn := range turns {
		label := cliui.UserLabel("you")
		if turn.Role == chat.RoleAssistant {
			label = cliui.AssistantLabel("willaiam")
		}

		fmt.Printf("  %s  %s", label, turn.Content)
		switch turn.Status {
		case chat.StatusCancelled:
			fmt.Printf(" %s", cliui.Faint("(stopped)"))
		case chat.StatusErrored:
			fmt.Printf(" %s", cliui.Faint("(failed)"))
		}
		fmt.Println()
	}
	fmt.Println()
}
