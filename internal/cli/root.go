package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// errAlreadyHandled 表示错误详情已经输出过，只需要以非零状态退出。
var errAlreadyHandled = errors.New("already handled")

type rootOptions struct {
	configFile string
	debug      string

	app *app
}

// newRootCmd 构建 kfctl 的命令树，返回的 rootOptions 在命令执行后持有已初始化的依赖。
func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "kfctl [command] [flags]",
		Short: "公众号多客服会话控制工具",
		Long: `kfctl 调用公众号多客服的会话控制接口。

Examples:
  # 为客户创建与客服的会话
  kfctl create OPENID test1@test "我要接入"

  # 查询客户的会话状态
  kfctl get OPENID

  # 同时查询多个客服的会话列表
  kfctl list test1@test test2@test`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}
			a, err := newApp(cmd.Context(), opts.configFile, opts.debug)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "TOML 配置文件路径（默认读取 CONFIG_FILE）")
	cmd.PersistentFlags().StringVar(&opts.debug, "debug", "", "日志级别 off|low|high，覆盖 DEBUG")

	cmd.AddCommand(
		newCreateCmd(opts),
		newCloseCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newWaitCaseCmd(opts),
		newTokenCmd(opts),
	)
	return cmd, opts
}

// needsApp 判断命令是否需要加载配置；根命令和 help、completion 不需要。
func needsApp(cmd *cobra.Command) bool {
	if cmd == cmd.Root() {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

// Execute 运行命令并在失败时以状态码 1 退出，由 main 调用。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd, opts := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if opts.app != nil {
		opts.app.Close()
	}
	if err != nil && !errors.Is(err, errAlreadyHandled) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return err
}
