package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lokalku/lokalku"
	bt "github.com/lokalku/lokalku/bubbletea"
	lkhttp "github.com/lokalku/lokalku/http"
	"github.com/lokalku/lokalku/markdown"
	"github.com/spf13/cobra"
)

// locationFlags registers --lat/--lng on cmd.
type locationFlags struct {
	lat, lng float64
}

func (l *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&l.lat, "lat", 0, "User latitude")
	cmd.Flags().Float64Var(&l.lng, "lng", 0, "User longitude")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
}

func (l *locationFlags) location(cmd *cobra.Command) *lokalku.Location {
	if !cmd.Flags().Changed("lat") {
		return nil
	}
	return &lokalku.Location{Lat: l.lat, Lng: l.lng}
}

func newChatCmd(a *app) *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			provider, err := resolveProvider(ctx, a.cfg)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(ctx, a.cfg, a.logger, lokalku.WithOnOpen(func() {
				a.logger.Debug().Msg("chat panel opened")
			}))
			if err != nil {
				return err
			}
			defer closeStore()

			conv := lokalku.NewConversation(store, lokalku.NewClient(provider, lokalku.WithTimeout(a.cfg.Timeout)))
			var opts []bt.Option
			if l := loc.location(cmd); l != nil {
				opts = append(opts, bt.WithLocation(*l))
			}
			store.Open()
			if err := bt.Run(ctx, bt.New(conv, lokalku.DefaultTheme(), opts...)); err != nil {
				return fmt.Errorf("TUI: %w", err)
			}
			return nil
		},
	}
	loc.register(cmd)
	return cmd
}

func newAskCmd(a *app) *cobra.Command {
	var (
		loc   locationFlags
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider, err := resolveProvider(ctx, a.cfg)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			conv := lokalku.NewConversation(store, lokalku.NewClient(provider, lokalku.WithTimeout(a.cfg.Timeout)))
			var opts []lokalku.AskOption
			if l := loc.location(cmd); l != nil {
				opts = append(opts, lokalku.WithLocation(*l))
			}
			reply, err := conv.Ask(ctx, strings.Join(args, " "), opts...)
			if err != nil {
				return err
			}

			out := markdown.Sanitize(reply.Content)
			if !raw {
				out = markdown.Render(out, width, lokalku.DefaultTheme())
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			if store.IsNearLimit() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Sisa %d pesan lagi.\n", store.RemainingSends())
			}
			return nil
		},
	}
	loc.register(cmd)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the reply as unrendered Markdown")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for rendered output")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dialogue gateway (POST /api/chat)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("listen") {
				a.cfg.Listen = listen
			}
			provider, err := resolveProvider(ctx, a.cfg)
			if err != nil {
				return err
			}
			srv := lkhttp.NewServer(provider,
				lkhttp.WithTimeout(a.cfg.Timeout),
				lkhttp.WithLogger(a.logger),
			)
			return srv.ListenAndServe(ctx, a.cfg.Listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default :8080)")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show, clear or list stored chat sessions",
		Args:  cobra.NoArgs,
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openStore(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			w := cmd.OutOrStdout()
			st := store.State()
			for _, m := range st.Messages {
				ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04")
				fmt.Fprintf(w, "[%s] %s\n", ts, markdown.Sanitize(m.HistoryLine()))
			}
			fmt.Fprintf(w, "%d/%d pesan terkirim\n", st.MessageCount, lokalku.SendLimit)
			return nil
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openStore(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()
			store.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Percakapan dihapus.")
			return nil
		},
	}
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions; the active one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := listSessions(cmd.Context(), a.cfg.Storage)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, k := range keys {
				mark := " "
				if k == a.cfg.Storage.Key {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s\n", mark, k)
			}
			return nil
		},
	}
	cmd.AddCommand(show, clearCmd, sessions)
	cmd.RunE = show.RunE
	return cmd
}
