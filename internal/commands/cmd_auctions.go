package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/printer"
	"github.com/hyeonlog/jangteo/internal/tui"
	"github.com/urfave/cli/v3"
)

type AuctionsCmd struct {
	flags *Flags

	page     int
	status   string
	category string
	sort     string
	mine     bool

	name        string
	description string
	startPrice  int64
	buyNowPrice int64
	endAt       string
	images      []string
	keepImages  []string

	bidPrice int64
}

// NewAuctionsCmd creates a new auctions command
func NewAuctionsCmd(flags *Flags) *AuctionsCmd {
	return &AuctionsCmd{flags: flags}
}

// Register adds the auctions command tree to the application
func (cmd *AuctionsCmd) Register(app *cli.Command) *cli.Command {
	formFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Usage:       "listing name",
			Destination: &cmd.name,
		},
		&cli.StringFlag{
			Name:        "description",
			Usage:       "listing description",
			Destination: &cmd.description,
		},
		&cli.Int64Flag{
			Name:        "start-price",
			Usage:       "starting price in won",
			Destination: &cmd.startPrice,
		},
		&cli.Int64Flag{
			Name:        "buy-now-price",
			Usage:       "optional buy-now price in won",
			Destination: &cmd.buyNowPrice,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "category name",
			Destination: &cmd.category,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "auction end time (RFC3339)",
			Destination: &cmd.endAt,
		},
		&cli.StringSliceFlag{
			Name:        "image",
			Usage:       "image file or glob (repeatable)",
			Destination: &cmd.images,
		},
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "auctions",
		Usage:     "Browse, bid on and watch timed auctions",
		UsageText: "jangteo auctions <command>",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List auctions",
				UsageText: "jangteo auctions list [--status OPEN|CLOSED] [--page N]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "page",
						Usage:       "page number (zero-based)",
						Destination: &cmd.page,
					},
					&cli.StringFlag{
						Name:        "status",
						Usage:       "filter by status (OPEN, CLOSED)",
						Destination: &cmd.status,
					},
					&cli.StringFlag{
						Name:        "category",
						Usage:       "filter by category",
						Destination: &cmd.category,
					},
					&cli.StringFlag{
						Name:        "sort",
						Usage:       "sort order (ending, newest, price)",
						Destination: &cmd.sort,
					},
					&cli.BoolFlag{
						Name:        "mine",
						Usage:       "only your own listings (requires login)",
						Destination: &cmd.mine,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "show",
				Usage:     "Show one auction with its bid history",
				UsageText: "jangteo auctions show <id>",
				Action:    cmd.runShow,
			},
			{
				Name:      "bid",
				Usage:     "Place a bid",
				UsageText: "jangteo auctions bid <id> --price <n>",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:        "price",
						Usage:       "bid amount in won",
						Destination: &cmd.bidPrice,
					},
				},
				Action: cmd.runBid,
			},
			{
				Name:      "buy",
				Usage:     "Buy the auction at its buy-now price",
				UsageText: "jangteo auctions buy <id>",
				Action:    cmd.runBuy,
			},
			{
				Name:      "new",
				Usage:     "Create an auction listing",
				UsageText: "jangteo auctions new --name <n> --start-price <n> --end <rfc3339>",
				Flags:     formFlags,
				Action:    cmd.runNew,
			},
			{
				Name:      "edit",
				Usage:     "Edit an auction listing",
				UsageText: "jangteo auctions edit <id> [--name <n>] [--keep-image <url>]...",
				Description: `Replaces the listing's fields and images. Images already on the
listing are dropped unless named via --keep-image; --image adds new
uploads alongside the kept ones.`,
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{
						Name:        "keep-image",
						Usage:       "existing image URL to keep (repeatable)",
						Destination: &cmd.keepImages,
					},
				}, formFlags...),
				Action: cmd.runEdit,
			},
			{
				Name:      "watch",
				Usage:     "Watch an auction live",
				UsageText: "jangteo auctions watch <id>",
				Description: `Opens the live auction view: the summary header and bid history
update in place as bids arrive on the push channel. Anonymous sessions
watch fetch-only.`,
				Action: cmd.runWatch,
			},
		},
	})

	return app
}

func (cmd *AuctionsCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	query := api.AuctionQuery{
		Page:     cmd.page,
		Size:     cmd.flags.Config.PageSize,
		Status:   cmd.status,
		Category: cmd.category,
		Sort:     cmd.sort,
	}
	fetch := cmd.flags.API.Auctions
	if cmd.mine {
		fetch = cmd.flags.API.MyAuctions
	}
	page, err := fetch(ctx, query)
	if err != nil {
		return fmt.Errorf("list auctions: %w", err)
	}

	if len(page.Content) == 0 {
		p.Infof("No auctions found")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tHIGHEST\tBIDS\tSTATUS\tENDS")
	for _, a := range page.Content {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n",
			a.ID, a.Name, a.CurrentHighestBid, a.BidCount, a.Status,
			a.EndAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()

	if page.TotalPages > 1 {
		p.Infof("page %d/%d (%d auctions)", page.Page+1, page.TotalPages, page.TotalElements)
	}
	return nil
}

func (cmd *AuctionsCmd) runShow(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	a, err := cmd.flags.API.Auction(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch auction: %w", err)
	}

	bids, err := cmd.flags.API.AuctionBids(ctx, id, 0, cmd.flags.Config.BidPageSize)
	if err != nil {
		return fmt.Errorf("fetch bids: %w", err)
	}

	p.Section(a.Name)
	p.Printf("status: %s  highest: %d won  start: %d won  bids: %d",
		a.Status, a.CurrentHighestBid, a.StartPrice, a.BidCount)
	if a.BuyNowPrice > 0 {
		p.Printf("buy-now: %d won", a.BuyNowPrice)
	}
	p.Infof("seller: %s (%.1f)", a.Seller.Nickname, a.Seller.ReputationScore)
	p.Infof("ends: %s", a.EndAt.Format(time.RFC1123))

	if winner := a.WinningBid(bids.Content); winner != nil {
		p.Successf("Won by %s at %d won", winner.BidderNickname, winner.Price)
	}

	if a.Description != "" {
		rendered, err := glamour.Render(a.Description, "dark")
		if err != nil {
			p.Printf("%s", a.Description)
		} else {
			p.Printf("%s", rendered)
		}
	}

	if len(bids.Content) > 0 {
		p.Section("Bid history")
		for _, b := range bids.Content {
			line := fmt.Sprintf("%d won  %s  %s", b.Price, b.BidderNickname,
				b.CreateDate.Format("2006-01-02 15:04"))
			if b.BuyNow {
				line += "  (buy-now)"
			}
			p.Printf("%s", line)
		}
	}
	return nil
}

func (cmd *AuctionsCmd) runBid(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	placed, err := cmd.flags.API.PlaceBid(ctx, id, cmd.bidPrice)
	if err != nil {
		return fmt.Errorf("place bid: %w", err)
	}

	p.Success(
		fmt.Sprintf("Bid placed at %d won", placed.Bid.Price),
		fmt.Sprintf("auction %d now at %d won with %d bids", id, placed.CurrentHighestBid, placed.BidCount),
	)
	return nil
}

func (cmd *AuctionsCmd) runBuy(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	a, err := cmd.flags.API.BuyNow(ctx, id)
	if err != nil {
		return fmt.Errorf("buy now: %w", err)
	}

	p.Success(fmt.Sprintf("Bought %q", a.Name), fmt.Sprintf("paid %d won", a.BuyNowPrice))
	return nil
}

func (cmd *AuctionsCmd) form() (api.AuctionForm, error) {
	images, err := expandImageGlobs(cmd.images)
	if err != nil {
		return api.AuctionForm{}, fmt.Errorf("expand image globs: %w", err)
	}
	return api.AuctionForm{
		Name:          cmd.name,
		Description:   cmd.description,
		StartPrice:    cmd.startPrice,
		BuyNowPrice:   cmd.buyNowPrice,
		Category:      cmd.category,
		EndAt:         cmd.endAt,
		ImagePaths:    images,
		KeepImageURLs: cmd.keepImages,
	}, nil
}

func (cmd *AuctionsCmd) runNew(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	form, err := cmd.form()
	if err != nil {
		return err
	}

	a, err := cmd.flags.API.CreateAuction(ctx, form)
	if err != nil {
		return fmt.Errorf("create auction: %w", err)
	}

	p.Success(fmt.Sprintf("Created auction %d", a.ID), a.Name)
	return nil
}

func (cmd *AuctionsCmd) runEdit(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	form, err := cmd.form()
	if err != nil {
		return err
	}

	a, err := cmd.flags.API.UpdateAuction(ctx, id, form)
	if err != nil {
		return fmt.Errorf("update auction: %w", err)
	}

	p.Successf("Updated auction %d", a.ID)
	return nil
}

func (cmd *AuctionsCmd) runWatch(ctx context.Context, c *cli.Command) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}

	creds := cmd.flags.credentials(ctx)
	manager := cmd.flags.liveManager(ctx)
	defer manager.Close()

	m := tui.NewAuctionModel(tui.AuctionOptions{
		Client:    cmd.flags.API,
		Manager:   manager,
		AuctionID: id,
		PageSize:  cmd.flags.Config.BidPageSize,
		CanBid:    !creds.Empty(),
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run auction view: %w", err)
	}
	return nil
}
