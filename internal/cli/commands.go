package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/qna/internal/client"
	"github.com/alphabot-ai/qna/internal/model"
)

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:          "register",
		Short:        "Create an account and log in",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.newClient()
			if err != nil {
				return err
			}
			err = c.Register(cmd.Context(), email, password)
			switch {
			case errors.Is(err, client.ErrAlreadyRegistered):
				fmt.Fprintf(cmd.OutOrStdout(), "Already registered as %s\n", email)
			case err != nil:
				return err
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", email)
			}
			return login(cmd, rootOpts, c, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:          "login",
		Short:        "Log in and save the token for later commands",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.newClient()
			if err != nil {
				return err
			}
			return login(cmd, rootOpts, c, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func login(cmd *cobra.Command, rootOpts *RootOptions, c *client.Client, email, password string) error {
	token, err := c.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	if err := rootOpts.saveSettings(Settings{BaseURL: c.BaseURL, Email: email, Token: token}); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var start, end int32
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List questions, optionally restricted to an id range",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.newClient()
			if err != nil {
				return err
			}
			startSet, endSet := cmd.Flags().Changed("start"), cmd.Flags().Changed("end")
			if startSet != endSet {
				return errors.New("--start and --end must be given together")
			}

			var questions []model.Question
			if startSet {
				questions, err = c.ListQuestionRange(cmd.Context(), model.ID(start), model.ID(end))
			} else {
				questions, err = c.ListQuestions(cmd.Context())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(questions) == 0 {
				fmt.Fprintln(out, "No questions")
				return nil
			}
			for _, q := range questions {
				printQuestionLine(out, q)
			}
			return nil
		},
	}
	cmd.Flags().Int32Var(&start, "start", 0, "first id of the range")
	cmd.Flags().Int32Var(&end, "end", 0, "last id of the range")
	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "show <question-id>",
		Short:        "Show a question with its answers",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := rootOpts.newClient()
			if err != nil {
				return err
			}
			q, err := c.GetQuestion(cmd.Context(), id)
			if err != nil {
				return err
			}
			answers, err := c.ListAnswers(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printQuestionLine(out, *q)
			if q.Content != "" {
				fmt.Fprintf(out, "\n  %s\n", q.Content)
			}
			if len(answers) > 0 {
				fmt.Fprintf(out, "\n  --- Answers (%d) ---\n", len(answers))
				for _, a := range answers {
					fmt.Fprintf(out, "  [%d] %s\n", a.ID, a.Content)
				}
			}
			return nil
		},
	}
}

// NewAskCommand creates the ask command.
func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id             int32
		title, content string
		tags           []string
	)
	cmd := &cobra.Command{
		Use:          "ask",
		Short:        "Post a new question",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.newClient()
			if err != nil {
				return err
			}
			q := model.Question{ID: model.ID(id), Title: title, Content: content, Tags: tags}
			if err := c.AddQuestion(cmd.Context(), q); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question added: %s\n", title)
			return nil
		},
	}
	cmd.Flags().Int32Var(&id, "id", 0, "question id (assigned by the server when omitted)")
	cmd.Flags().StringVar(&title, "title", "", "question title (required)")
	cmd.Flags().StringVar(&content, "content", "", "question body")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "delete <question-id>",
		Aliases:      []string{"rm"},
		Short:        "Delete a question",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := rootOpts.newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteQuestion(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question %d deleted\n", id)
			return nil
		},
	}
}

// NewAnswerCommand creates the answer command.
func NewAnswerCommand(rootOpts *RootOptions) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:          "answer <question-id>",
		Short:        "Answer a question",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := rootOpts.newClient()
			if err != nil {
				return err
			}
			if err := c.AddAnswer(cmd.Context(), id, text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Answered question %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "answer text (required)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func printQuestionLine(w io.Writer, q model.Question) {
	line := fmt.Sprintf("#%d %s", q.ID, q.Title)
	if len(q.Tags) > 0 {
		line += " [" + strings.Join(q.Tags, ", ") + "]"
	}
	fmt.Fprintln(w, line)
}
