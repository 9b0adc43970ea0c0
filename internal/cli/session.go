package cli

import (
	"context"

	"github.com/spf13/cobra"

	"wechatkf-golang/refactor/internal/kfsession"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create OPENID ACCOUNT [TEXT]",
		Short: "创建会话",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.app.sessions.CreateSession(cmd.Context(), args[0], args[1], optionalArg(args, 2))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newCloseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "close OPENID ACCOUNT [TEXT]",
		Short: "关闭会话",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.app.sessions.CloseSession(cmd.Context(), args[0], args[1], optionalArg(args, 2))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get OPENID",
		Short: "获取客户的会话状态",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := opts.app.sessions.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}

type accountSessions struct {
	KfAccount   string                    `json:"kf_account"`
	SessionList []kfsession.SessionRecord `json:"sessionlist"`
	Error       string                    `json:"error,omitempty"`
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list ACCOUNT...",
		Short: "获取客服的会话列表，多个客服并发查询",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			futures := make([]*kfsession.Future[*kfsession.SessionList], len(args))
			for i, account := range args {
				account := account
				futures[i] = kfsession.Async(ctx, func(ctx context.Context) (*kfsession.SessionList, error) {
					return opts.app.sessions.GetSessionList(ctx, account)
				})
			}

			out := make([]accountSessions, len(args))
			failed := false
			for i, f := range futures {
				out[i].KfAccount = args[i]
				list, err := f.Wait()
				if err != nil {
					out[i].Error = err.Error()
					failed = true
					continue
				}
				out[i].SessionList = list.SessionList
				if out[i].SessionList == nil {
					out[i].SessionList = []kfsession.SessionRecord{}
				}
			}

			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if failed {
				return errAlreadyHandled
			}
			return nil
		},
	}
}

type waitCaseOutput struct {
	Count    int                       `json:"count"`
	WaitCase []kfsession.SessionRecord `json:"waitcase"`
}

func newWaitCaseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "waitcase",
		Short: "获取未接入会话列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.app.sessions.GetWaitCase(cmd.Context())
			if err != nil {
				return err
			}
			records := list.Records()
			if records == nil {
				records = []kfsession.SessionRecord{}
			}
			count := list.Count
			if count == 0 {
				count = len(records)
			}
			return printJSON(cmd.OutOrStdout(), waitCaseOutput{Count: count, WaitCase: records})
		},
	}
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
