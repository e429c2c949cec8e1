package cli

import (
	"github.com/spf13/cobra"

	"minutes_linker/internal/app"
	"minutes_linker/internal/repositories"
)

func newIRCBotCommand() *cobra.Command {
	var (
		server   string
		port     int
		nick     string
		channels []string
		useTLS   bool
	)
	cmd := &cobra.Command{
		Use:   "ircbot",
		Short: "Run the IRC bot linking issues on request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)
			cfg := configFromContext(ctx)

			if cmd.Flags().Changed("server") {
				cfg.IRC.Server = server
			}
			if cmd.Flags().Changed("port") {
				cfg.IRC.Port = port
			}
			if cmd.Flags().Changed("nick") {
				cfg.IRC.Nick = nick
			}
			if cmd.Flags().Changed("channel") {
				cfg.IRC.Channels = channels
			}
			if cmd.Flags().Changed("tls") {
				cfg.IRC.UseTLS = useTLS
			}

			deps, err := newDeps(cfg, logger)
			if err != nil {
				return err
			}
			deps.Repositories = repositories.NewCached(deps.Repositories, cfg.CacheTTL())

			conn := app.NewIRCConnection(cfg.IRC)
			return app.NewBot(conn, cfg, deps).Serve(ctx, conn)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "IRC server host")
	cmd.Flags().IntVar(&port, "port", 0, "IRC server port")
	cmd.Flags().StringVar(&nick, "nick", "", "Nickname of the bot")
	cmd.Flags().StringArrayVar(&channels, "channel", nil, "Channel to join on connect, repeatable")
	cmd.Flags().BoolVar(&useTLS, "tls", true, "Connect over TLS")
	return cmd
}
