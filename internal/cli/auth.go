package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/session"
	pkgconfig "github.com/dmitrymomot/speakerdesk/pkg/config"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
)

// sessionKey is the storage key of the terminal session.
const sessionKey = "cli"

var (
	ErrNotLoggedIn    = errors.New("cli.not_logged_in")
	ErrSessionExpired = errors.New("cli.session_expired")
)

type authFlags struct {
	backendURL string
	tokenFile  string
}

// authSession is the Store of the terminal session and what drives it.
type authSession struct {
	api         *backend.Client
	store       *session.Store
	initializer *session.Initializer
	out         io.Writer
	errOut      io.Writer
}

func newAuthCommand() *cobra.Command {
	flags := &authFlags{}
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in to the backend from the terminal",
		Long: `Manage the terminal session.

The bearer token is kept in ~/.speakerdesk/auth.json unless --token-file
says otherwise. The backend is BACKEND_URL unless --backend-url is set.

Subcommands:
  login   Log in with email and password
  signup  Create an account and log in
  logout  Log out and remove the stored token
  whoami  Show the logged-in user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&flags.backendURL, "backend-url", "", "backend base URL (default $BACKEND_URL)")
	cmd.PersistentFlags().StringVar(&flags.tokenFile, "token-file", "", "token file (default ~/.speakerdesk/auth.json)")

	cmd.AddCommand(
		newLoginCommand(flags),
		newSignupCommand(flags),
		newLogoutCommand(flags),
		newWhoamiCommand(flags),
	)
	return cmd
}

func openAuthSession(cmd *cobra.Command, flags *authFlags) (*authSession, error) {
	var cfg backend.Config
	if err := pkgconfig.Load(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.backendURL != "" {
		cfg.URL = flags.backendURL
	}

	path := flags.tokenFile
	if path == "" {
		var err error
		if path, err = session.DefaultTokenFile(); err != nil {
			return nil, err
		}
	}

	log := logger.New(
		logger.WithFormat(logger.FormatText),
		logger.WithLevel(slog.LevelWarn),
		logger.WithOutput(cmd.ErrOrStderr()),
	)
	api := backend.New(cfg, backend.WithLogger(log))

	store, err := session.NewRegistry(session.NewFileTokenStorage(path), 1, 0).Get(cmd.Context(), sessionKey)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	return &authSession{
		api:         api,
		store:       store,
		initializer: session.NewInitializer(api, log),
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
	}, nil
}

func newLoginCommand(flags *authFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openAuthSession(cmd, flags)
			if err != nil {
				return err
			}
			s.store.ClearError()

			resp, err := s.api.Login(cmd.Context(), backend.LoginRequest{Email: email, Password: password})
			if err != nil {
				msg := backend.MessageOf(err, backend.LoginFailedMessage)
				s.store.SetError(msg)
				return fmt.Errorf("login failed: %s", msg)
			}
			return s.finish(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCommand(flags *authFlags) *cobra.Command {
	var in backend.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openAuthSession(cmd, flags)
			if err != nil {
				return err
			}
			s.store.ClearError()

			resp, err := s.api.Signup(cmd.Context(), in)
			if err != nil {
				msg := backend.MessageOf(err, backend.SignupFailedMessage)
				s.store.SetError(msg)
				return fmt.Errorf("signup failed: %s", msg)
			}
			return s.finish(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "short bio")
	cmd.Flags().StringVar(&in.ContactInfo, "contact-info", "", "contact details")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// finish stores the credentials of a successful login or signup.
func (s *authSession) finish(cmd *cobra.Command, resp *backend.AuthResponse) error {
	if err := s.store.SetCredentials(cmd.Context(), resp.User, resp.AccessToken); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if resp.User == nil {
		_, _ = fmt.Fprintln(s.out, "Logged in.")
		return nil
	}
	_, _ = fmt.Fprintf(s.out, "Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
	return nil
}

func newLogoutCommand(flags *authFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the stored token",
		Long: `Log out and remove the stored token.

The backend is asked to revoke the token, but the local token is removed
even when the backend cannot be reached.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openAuthSession(cmd, flags)
			if err != nil {
				return err
			}

			token := s.store.Snapshot().Token
			if token == "" {
				_, _ = fmt.Fprintln(s.out, "Not logged in.")
				return nil
			}
			if err := s.api.Logout(cmd.Context(), token); err != nil {
				_, _ = fmt.Fprintf(s.errOut, "warning: backend logout failed: %v\n", err)
			}
			if err := s.store.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("remove token: %w", err)
			}
			_, _ = fmt.Fprintln(s.out, "Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand(flags *authFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openAuthSession(cmd, flags)
			if err != nil {
				return err
			}

			s.initializer.Hydrate(cmd.Context(), s.store)
			state := s.store.Snapshot()
			switch {
			case state.Token == "":
				return ErrNotLoggedIn
			case !state.IsAuthenticated():
				return fmt.Errorf("%w: run `speakerdesk auth login`", ErrSessionExpired)
			}

			u := state.User
			_, _ = fmt.Fprintf(s.out, "%s <%s>\nRole: %s\nID:   %s\n", u.Name, u.Email, u.Role, u.ID)
			return nil
		},
	}
}
