package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"mcq-service/internal/app"
	"mcq-service/internal/client"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs an interactive quiz over the published questions of a
// running server.
func NewPlayCmd() *cobra.Command {
	var (
		serverURL string
		email     string
		password  string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Answer the published questions in the terminal and see your score",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverURL, &http.Client{Timeout: 10 * time.Second})
			return runPlay(cmd.Context(), c, email, password, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	envServer := os.Getenv("MCQ_SERVER")
	if envServer == "" {
		envServer = "http://127.0.0.1:8080"
	}
	cmd.Flags().StringVar(&serverURL, "server", envServer, "base URL of the MCQ service")
	cmd.Flags().StringVar(&email, "email", "user@example.com", "login email")
	cmd.Flags().StringVar(&password, "password", "password", "login password")
	return cmd
}

func runPlay(ctx context.Context, c *client.Client, email, password string, in io.Reader, out io.Writer) error {
	account, err := c.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer c.Logout(ctx)

	questions, err := c.PublishedQuestions(ctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Fprintln(out, "No published questions yet.")
		return nil
	}

	session := app.NewQuizSession(questions)
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "Hi %s, %d questions await.\n", account.Name, len(questions))

	for i, q := range session.Questions() {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Title)
		for n, opt := range q.Options {
			fmt.Fprintf(out, "   %d) %s\n", n+1, opt)
		}
		for {
			fmt.Fprint(out, "> ")
			line, err := reader.ReadString('\n')
			choice, convErr := strconv.Atoi(strings.TrimSpace(line))
			if convErr == nil && choice >= 1 && choice <= len(q.Options) {
				option := q.Options[choice-1]
				if err := session.Select(q.ID, option); err != nil {
					return err
				}
				if _, err := c.SubmitAnswer(ctx, q.ID, option); err != nil {
					fmt.Fprintf(out, "   (answer not recorded on server: %v)\n", err)
				}
				break
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("input ended before the quiz was finished")
				}
				return err
			}
			fmt.Fprintf(out, "   pick a number between 1 and %d\n", len(q.Options))
		}
	}

	score, err := session.Reveal()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, q := range session.Questions() {
		picked, _ := session.Answer(q.ID)
		mark := "✗"
		if picked == q.CorrectAnswer {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %s (you: %s, correct: %s)\n", mark, q.Title, picked, q.CorrectAnswer)
	}
	fmt.Fprintf(out, "\nScore: %d/%d (%d%%)\n", score.Correct, score.Total, score.Percentage)
	return nil
}
