package cli

import (
	"time"

	"github.com/spf13/cobra"
)

type tokenOutput struct {
	AppID       string `json:"appid"`
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "查看当前 access_token 的有效期",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if refresh {
				if _, err := a.tokens.Refresh(cmd.Context()); err != nil {
					return err
				}
			} else if _, err := a.tokens.Token(cmd.Context()); err != nil {
				return err
			}

			current := a.tokens.Current()
			expiresAt := current.ExpiresAt()
			return printJSON(cmd.OutOrStdout(), tokenOutput{
				AppID:       a.cfg.AppID,
				AccessToken: maskToken(current.AccessToken),
				ExpiresAt:   expiresAt.Format(time.RFC3339),
				ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "忽略缓存，重新获取 access_token")
	return cmd
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***" + token[len(token)-4:]
}
