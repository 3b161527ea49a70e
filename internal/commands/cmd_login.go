package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/core/auth"
	"github.com/hyeonlog/jangteo/internal/printer"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type LoginCmd struct {
	flags    *Flags
	username string
	password string
	nickname string
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the signup, login, logout and whoami commands to the
// application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "signup",
			Usage:     "Create a marketplace account",
			UsageText: "jangteo signup [--username <name>] [--nickname <name>]",
			Description: `Registers a new member. Missing fields are prompted for
interactively; log in afterwards with 'jangteo login'.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "username",
					Aliases:     []string{"u"},
					Usage:       "account username",
					Destination: &cmd.username,
				},
				&cli.StringFlag{
					Name:        "nickname",
					Usage:       "display name shown on listings",
					Destination: &cmd.nickname,
				},
				&cli.StringFlag{
					Name:        "password",
					Usage:       "account password (prompted when omitted)",
					Destination: &cmd.password,
					Sources:     cli.EnvVars("JANGTEO_PASSWORD"),
				},
			},
			Action: cmd.runSignup,
		},
		&cli.Command{
			Name:      "login",
			Usage:     "Log in to the marketplace",
			UsageText: "jangteo login [--username <name>]",
			Description: `Authenticates against the marketplace and stores the issued tokens
in the data directory. Missing fields are prompted for interactively.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "username",
					Aliases:     []string{"u"},
					Usage:       "account username",
					Destination: &cmd.username,
				},
				&cli.StringFlag{
					Name:        "password",
					Usage:       "account password (prompted when omitted)",
					Destination: &cmd.password,
					Sources:     cli.EnvVars("JANGTEO_PASSWORD"),
				},
			},
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:      "logout",
			Usage:     "Log out and clear stored credentials",
			UsageText: "jangteo logout",
			Action:    cmd.runLogout,
		},
		&cli.Command{
			Name:      "whoami",
			Usage:     "Show the logged-in member",
			UsageText: "jangteo whoami",
			Action:    cmd.runWhoami,
		},
	)

	return app
}

func (cmd *LoginCmd) runSignup(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.promptSignup(); err != nil {
		return err
	}

	member, err := cmd.flags.API.Signup(ctx, api.SignupForm{
		Username: cmd.username,
		Password: cmd.password,
		Nickname: cmd.nickname,
	})
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	p.Success(fmt.Sprintf("Account %s created", member.Username), "log in with 'jangteo login'")
	return nil
}

// promptSignup collects the registration fields not supplied via flags.
func (cmd *LoginCmd) promptSignup() error {
	var fields []huh.Field
	if cmd.username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&cmd.username))
	}
	if cmd.nickname == "" {
		fields = append(fields, huh.NewInput().
			Title("Nickname").
			Value(&cmd.nickname))
	}
	if cmd.password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&cmd.password))
	}
	if len(fields) == 0 {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("username, nickname and password are required when stdin is not a terminal")
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func (cmd *LoginCmd) runLogin(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.prompt(); err != nil {
		return err
	}

	creds, err := cmd.flags.API.Login(ctx, cmd.username, cmd.password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := cmd.flags.Creds.Save(ctx, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	p.Successf("Logged in as %s", creds.Username)
	return nil
}

// prompt collects any credentials not supplied via flags. Non-interactive
// invocations (piped stdin) must supply everything up front.
func (cmd *LoginCmd) prompt() error {
	var fields []huh.Field
	if cmd.username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&cmd.username))
	}
	if cmd.password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&cmd.password))
	}
	if len(fields) == 0 {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("username and password are required when stdin is not a terminal")
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func (cmd *LoginCmd) runLogout(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	// Server-side logout is best effort; credentials are cleared locally
	// even when the request fails.
	if err := cmd.flags.API.Logout(ctx); err != nil {
		p.Warnf("Server logout failed: %v", err)
	}

	if err := cmd.flags.Creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	p.Successf("Logged out")
	return nil
}

func (cmd *LoginCmd) runWhoami(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	creds, err := cmd.flags.Creds.Load(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			p.Infof("Not logged in")
			return nil
		}
		return fmt.Errorf("load credentials: %w", err)
	}

	member, err := cmd.flags.API.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	p.Printf("%s", p.Bold(member.Name))
	p.Infof("username: %s", creds.Username)
	p.Infof("score: %d", member.Score)
	if !creds.SavedAt.IsZero() {
		p.Infof("logged in since %s", creds.SavedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
