package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/printer"
	"github.com/urfave/cli/v3"
)

type PostsCmd struct {
	flags *Flags

	page    int
	keyword string
	mine    bool

	title    string
	content  string
	price    int64
	category string
	images   []string
}

// NewPostsCmd creates a new posts command
func NewPostsCmd(flags *Flags) *PostsCmd {
	return &PostsCmd{flags: flags}
}

// Register adds the posts command tree to the application
func (cmd *PostsCmd) Register(app *cli.Command) *cli.Command {
	formFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Usage:       "listing title",
			Destination: &cmd.title,
		},
		&cli.StringFlag{
			Name:        "content",
			Usage:       "listing description",
			Destination: &cmd.content,
		},
		&cli.Int64Flag{
			Name:        "price",
			Usage:       "price in won",
			Destination: &cmd.price,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "category name",
			Destination: &cmd.category,
		},
		&cli.StringSliceFlag{
			Name:        "image",
			Usage:       "image file or glob (repeatable)",
			Destination: &cmd.images,
		},
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "posts",
		Usage:     "Browse and manage fixed-price listings",
		UsageText: "jangteo posts <command>",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List posts",
				UsageText: "jangteo posts list [--page N] [--keyword <text>] [--mine]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "page",
						Usage:       "page number (zero-based)",
						Destination: &cmd.page,
					},
					&cli.StringFlag{
						Name:        "keyword",
						Aliases:     []string{"k"},
						Usage:       "search keyword",
						Destination: &cmd.keyword,
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
				Usage:     "Show one post",
				UsageText: "jangteo posts show <id>",
				Action:    cmd.runShow,
			},
			{
				Name:      "new",
				Usage:     "Create a post",
				UsageText: "jangteo posts new --title <t> --price <n> [--image <glob>]...",
				Flags:     formFlags,
				Action:    cmd.runNew,
			},
			{
				Name:      "edit",
				Usage:     "Edit a post",
				UsageText: "jangteo posts edit <id> [--title <t>] [--price <n>]",
				Flags:     formFlags,
				Action:    cmd.runEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a post",
				UsageText: "jangteo posts delete <id>",
				Action:    cmd.runDelete,
			},
		},
	})

	return app
}

func (cmd *PostsCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	query := api.PostQuery{
		Page:    cmd.page,
		Size:    cmd.flags.Config.PageSize,
		Keyword: cmd.keyword,
	}
	fetch := cmd.flags.API.Posts
	if cmd.mine {
		fetch = cmd.flags.API.MyPosts
	}
	page, err := fetch(ctx, query)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	if len(page.Content) == 0 {
		p.Infof("No posts found")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTATUS\tSELLER\tPOSTED")
	for _, post := range page.Content {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			post.ID, post.Title, post.Price, post.Status,
			post.Seller.Nickname, post.CreateDate.Format("2006-01-02"))
	}
	_ = w.Flush()

	if page.TotalPages > 1 {
		p.Infof("page %d/%d (%d posts)", page.Page+1, page.TotalPages, page.TotalElements)
	}
	return nil
}

func (cmd *PostsCmd) runShow(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	post, err := cmd.flags.API.Post(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch post: %w", err)
	}

	p.Section(post.Title)
	p.Printf("price: %d won  status: %s  category: %s", post.Price, post.Status, post.CategoryName)
	p.Infof("seller: %s (%.1f)", post.Seller.Nickname, post.Seller.ReputationScore)
	p.Infof("posted: %s", post.CreateDate.Format(time.RFC1123))
	for _, u := range post.ImageURLs {
		p.Infof("image: %s", u)
	}

	if post.Content != "" {
		rendered, err := glamour.Render(post.Content, "dark")
		if err != nil {
			p.Printf("%s", post.Content)
		} else {
			p.Printf("%s", rendered)
		}
	}
	return nil
}

func (cmd *PostsCmd) form() (api.PostForm, error) {
	images, err := expandImageGlobs(cmd.images)
	if err != nil {
		return api.PostForm{}, fmt.Errorf("expand image globs: %w", err)
	}
	return api.PostForm{
		Title:      cmd.title,
		Content:    cmd.content,
		Price:      cmd.price,
		Category:   cmd.category,
		ImagePaths: images,
	}, nil
}

func (cmd *PostsCmd) runNew(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	form, err := cmd.form()
	if err != nil {
		return err
	}

	post, err := cmd.flags.API.CreatePost(ctx, form)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	p.Success(fmt.Sprintf("Created post %d", post.ID), post.Title)
	return nil
}

func (cmd *PostsCmd) runEdit(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	form, err := cmd.form()
	if err != nil {
		return err
	}

	post, err := cmd.flags.API.UpdatePost(ctx, id, form)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	p.Successf("Updated post %d", post.ID)
	return nil
}

func (cmd *PostsCmd) runDelete(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := idArg(c)
	if err != nil {
		return err
	}

	if err := cmd.flags.API.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	p.Successf("Deleted post %d", id)
	return nil
}
