package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/nakamauwu/chatsync/auth"
	"github.com/nakamauwu/chatsync/types"
	"github.com/peterbourgon/ff/v4"
)

type loginFlags struct {
	Email    string `ff:"long: email, usage: account email"`
	Password string `ff:"long: password, usage: account password (or CHATSYNC_PASSWORD)"`
}

func (c *cli) loginCommand(parent *ff.FlagSet) *ff.Command {
	var flags loginFlags
	return &ff.Command{
		Name:      "login",
		Usage:     "chatsync login --email <EMAIL> --password <PASSWORD>",
		ShortHelp: "log in and store the credential",
		Flags:     ff.NewFlagSetFrom("login", &flags).SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			store, err := c.credentialStore()
			if err != nil {
				return err
			}

			client, err := c.restClient(store)
			if err != nil {
				return err
			}

			out, err := client.Login(ctx, types.Login{Email: flags.Email, Password: flags.Password})
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			cred, err := auth.NewCredential(out)
			if err != nil {
				return err
			}

			if err := store.Save(cred); err != nil {
				return err
			}

			if cred.ExpiresAt != nil {
				c.infoLogger.Info("logged in",
					"user", cred.User.Name,
					"expires_in", durafmt.Parse(time.Until(*cred.ExpiresAt)).LimitFirstN(2).String(),
				)
				return nil
			}

			c.infoLogger.Info("logged in", "user", cred.User.Name)
			return nil
		},
	}
}

func (c *cli) logoutCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "logout",
		ShortHelp: "forget the stored credential",
		Flags:     ff.NewFlagSet("logout").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			store, err := c.credentialStore()
			if err != nil {
				return err
			}
			return store.Clear()
		},
	}
}

func (c *cli) sendCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "send",
		Usage:     "chatsync send <CONVERSATION> <TEXT> [FILE ...]",
		ShortHelp: "send a message with optional attachments",
		Flags:     ff.NewFlagSet("send").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("send: conversation and text required: %w", ff.ErrHelp)
			}

			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			a.connect(ctx, c.errLogger)

			conversationID, content := args[0], args[1]
			if len(args) == 2 {
				msg, err := a.svc.Messages.SendMessage(ctx, conversationID, content)
				if err != nil {
					return err
				}
				c.infoLogger.Info("sent", "id", msg.ID)
				return nil
			}

			files := make([]types.Upload, 0, len(args)-2)
			for _, name := range args[2:] {
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				defer f.Close()

				u := types.Upload{Name: filepath.Base(name)}
				u.SetReader(f)
				files = append(files, u)
			}

			msg, err := a.svc.Attachments.UploadWithMessage(ctx, conversationID, content, files, func(percent int) {
				c.infoLogger.Debug("uploading", "progress", fmt.Sprintf("%d%%", percent))
			})
			if err != nil {
				return err
			}

			c.infoLogger.Info("sent", "id", msg.ID, "attachments", len(msg.Attachments))
			return nil
		},
	}
}

type historyFlags struct {
	Page uint `ff:"long: page, default: 1, usage: page to load (1 is the newest)"`
}

func (c *cli) historyCommand(parent *ff.FlagSet) *ff.Command {
	var flags historyFlags
	return &ff.Command{
		Name:      "history",
		Usage:     "chatsync history [--page N] <CONVERSATION>",
		ShortHelp: "print the messages of a conversation",
		Flags:     ff.NewFlagSetFrom("history", &flags).SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("history: conversation required: %w", ff.ErrHelp)
			}

			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			conversationID := args[0]
			a.svc.Messages.SetActive(conversationID)

			hasMore, err := a.svc.Messages.LoadHistory(ctx, conversationID, flags.Page)
			if err != nil {
				return err
			}

			for _, m := range a.svc.Messages.Messages(conversationID) {
				fmt.Printf("%s  %s: %s\n", humanize.Time(m.CreatedAt), m.Sender.Name, m.VisibleContent())
				for _, att := range m.Attachments {
					fmt.Printf("    %s (%s) %s\n", att.FileName, humanize.IBytes(uint64(att.FileSize)), att.FileURL)
				}
			}
			if hasMore {
				fmt.Printf("more with --page %d\n", flags.Page+1)
			}
			return nil
		},
	}
}

func (c *cli) conversationsCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "conversations",
		ShortHelp: "list conversations by recent activity",
		Flags:     ff.NewFlagSet("conversations").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.Conversations.Refresh(ctx); err != nil {
				return err
			}

			for _, conv := range a.svc.Conversations.Conversations() {
				line := fmt.Sprintf("%s  %s [%s]", conv.ID, conv.Name, conv.Kind)
				if conv.UnreadCount > 0 {
					line += fmt.Sprintf(" (%d unread)", conv.UnreadCount)
				}
				if p := conv.LastMessage; p != nil {
					line += fmt.Sprintf("  %s %s: %s", humanize.Time(p.CreatedAt), p.SenderName, p.Content)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

type notificationsFlags struct {
	Page    uint `ff:"long: page, default: 1, usage: page to load"`
	Limit   uint `ff:"long: limit, default: 20, usage: notifications per page"`
	ReadAll bool `ff:"long: read-all, usage: mark every notification as read"`
}

func (c *cli) notificationsCommand(parent *ff.FlagSet) *ff.Command {
	var flags notificationsFlags
	return &ff.Command{
		Name:      "notifications",
		Usage:     "chatsync notifications [--page N] [--limit N] [--read-all]",
		ShortHelp: "print task notifications",
		Flags:     ff.NewFlagSetFrom("notifications", &flags).SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			feed := a.svc.Notifications
			hasMore, err := feed.Fetch(ctx, flags.Page, flags.Limit)
			if err != nil {
				return err
			}

			if _, err := feed.RefreshUnreadCount(ctx); err != nil {
				c.errLogger.Warn("could not refresh unread count", "err", err)
			}

			if flags.ReadAll {
				if err := feed.MarkAllAsRead(ctx); err != nil {
					return err
				}
			}

			for _, n := range feed.Notifications() {
				mark := " "
				if !n.Read {
					mark = "*"
				}
				fmt.Printf("%s %s  [%s] %s: %s\n", mark, humanize.Time(n.CreatedAt), n.Type, n.Title, n.Message)
			}
			fmt.Printf("%d unread\n", feed.Unread())
			if hasMore {
				fmt.Printf("more with --page %d\n", flags.Page+1)
			}
			return nil
		},
	}
}

func (c *cli) downloadCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "download",
		Usage:     "chatsync download <URL> [DIR]",
		ShortHelp: "download an attachment",
		Flags:     ff.NewFlagSet("download").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("download: url required: %w", ff.ErrHelp)
			}

			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}

			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			path, err := a.svc.Attachments.DownloadToDir(ctx, args[0], "", dir)
			if err != nil {
				return err
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			c.infoLogger.Info("downloaded",
				"path", path,
				"size", humanize.IBytes(uint64(info.Size())),
				"took", time.Since(start),
			)
			return nil
		},
	}
}
