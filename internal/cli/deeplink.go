package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/oxbridge-lms/internal/model"
	"github.com/iliyamo/oxbridge-lms/internal/study"
	"github.com/iliyamo/oxbridge-lms/internal/validate"
)

type deepLinkOptions struct {
	Name    string
	Subject string
	Bot     string
	Host    string
}

// NewDeepLinkCommand mints a session id and prints the chat deep link the
// landing page would build for it.
func NewDeepLinkCommand(root *RootOptions) *cobra.Command {
	opts := &deepLinkOptions{}
	cmd := &cobra.Command{
		Use:   "deeplink",
		Short: "Build a study-session deep link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := validate.Trim(opts.Subject)
			if validate.IsBlank(subject) {
				return NewExitError(ExitCommandError, validate.SubjectRequired.Message())
			}
			id, err := study.NewIDGenerator().Next()
			if err != nil {
				return WrapExitError(ExitFailure, "session id", err)
			}
			greeting := study.Greeting(opts.Name, subject, id)
			s := model.StudySession{
				SessionID: id,
				UserName:  opts.Name,
				Subject:   subject,
				Greeting:  greeting,
				Link:      study.DeepLink(opts.Host, opts.Bot, greeting),
			}
			out := cmd.OutOrStdout()
			if root.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			fmt.Fprintf(out, "Session ID: %s\nGreeting:   %s\nLink:       %s\n", s.SessionID, s.Greeting, s.Link)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "student name")
	cmd.Flags().StringVarP(&opts.Subject, "subject", "s", "", "subject to study")
	cmd.Flags().StringVar(&opts.Bot, "bot", "oxbridgeai_bot", "bot username")
	cmd.Flags().StringVar(&opts.Host, "host", "t.me", "deep link host")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
