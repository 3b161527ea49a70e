package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/printer"
	"github.com/hyeonlog/jangteo/internal/tui"
	"github.com/urfave/cli/v3"
)

type ChatCmd struct {
	flags *Flags

	room    string
	before  int64
	message string
	images  []string
}

// NewChatCmd creates a new chat command
func NewChatCmd(flags *Flags) *ChatCmd {
	return &ChatCmd{flags: flags}
}

// Register adds the chat command tree to the application
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Chat with buyers and sellers",
		UsageText: "jangteo chat [--room <id>]",
		Description: `Opens the interactive chat view: the conversation list on the left,
the active conversation on the right. Messages arrive live over the
push channel; scroll up to load older history.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "room",
				Aliases:     []string{"r"},
				Usage:       "open a specific room directly",
				Destination: &cmd.room,
			},
		},
		Action: cmd.runTUI,
		Commands: []*cli.Command{
			{
				Name:      "rooms",
				Usage:     "List conversations",
				UsageText: "jangteo chat rooms",
				Action:    cmd.runRooms,
			},
			{
				Name:      "history",
				Usage:     "Print a room's message history",
				UsageText: "jangteo chat history <room-id> [--before <message-id>]",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:        "before",
						Usage:       "only messages older than this id",
						Destination: &cmd.before,
					},
				},
				Action: cmd.runHistory,
			},
			{
				Name:      "send",
				Usage:     "Send a message without opening the chat view",
				UsageText: "jangteo chat send <room-id> --message <text> [--image <glob>]...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "message",
						Aliases:     []string{"m"},
						Usage:       "message text",
						Destination: &cmd.message,
					},
					&cli.StringSliceFlag{
						Name:        "image",
						Usage:       "image file or glob (repeatable)",
						Destination: &cmd.images,
					},
				},
				Action: cmd.runSend,
			},
		},
	})

	return app
}

// RunTUI opens the chat view. Exported for use as the default action.
func (cmd *ChatCmd) RunTUI(ctx context.Context, c *cli.Command) error {
	return cmd.runTUI(ctx, c)
}

func (cmd *ChatCmd) runTUI(ctx context.Context, _ *cli.Command) error {
	creds := cmd.flags.credentials(ctx)
	manager := cmd.flags.liveManager(ctx)
	defer manager.Close()

	m := tui.NewChatModel(tui.ChatOptions{
		Client:  cmd.flags.API,
		Manager: manager,
		Self:    creds.Username,
		Room:    cmd.room,
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run chat view: %w", err)
	}
	return nil
}

func (cmd *ChatCmd) runRooms(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	rooms, err := cmd.flags.API.ChatRooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	if len(rooms) == 0 {
		p.Infof("No conversations yet")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROOM\tWITH\tITEM\tUNREAD\tLAST MESSAGE")
	for _, r := range rooms {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.RoomID, r.Opponent, r.ItemName, r.UnreadCount, r.LastMessage)
	}
	_ = w.Flush()
	return nil
}

func (cmd *ChatCmd) runHistory(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	roomID := c.Args().First()
	if roomID == "" {
		return fmt.Errorf("a room-id argument is required")
	}

	messages, err := cmd.flags.API.RoomMessages(ctx, roomID, cmd.before)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	if len(messages) == 0 {
		p.Infof("No messages")
		return nil
	}

	for _, m := range messages {
		stamp := m.CreateDate.Format("2006-01-02 15:04")
		line := fmt.Sprintf("%s  %s: %s", stamp, m.Sender, m.Body)
		if len(m.ImageURLs) > 0 {
			line += fmt.Sprintf("  [%d image(s)]", len(m.ImageURLs))
		}
		p.Printf("%s", line)
	}
	return nil
}

func (cmd *ChatCmd) runSend(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	roomID := c.Args().First()
	if roomID == "" {
		return fmt.Errorf("a room-id argument is required")
	}

	images, err := expandImageGlobs(cmd.images)
	if err != nil {
		return fmt.Errorf("expand image globs: %w", err)
	}

	err = cmd.flags.API.SendMessage(ctx, api.SendMessageForm{
		RoomID:     roomID,
		Text:       cmd.message,
		ImagePaths: images,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	p.Successf("Sent")
	return nil
}
