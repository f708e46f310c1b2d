package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	appcli "github.com/jinford/image-rag/internal/app/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}

	app := &cli.Command{
		Name:  "image-rag",
		Usage: "画像の説明文生成・ベクトル化・自然文検索を提供するバックエンド",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "サーバ関連コマンド",
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "HTTPサーバを起動",
						Flags: []cli.Flag{
							envFlag,
							&cli.IntFlag{
								Name:  "port",
								Usage: "HTTPポート（省略時は環境変数またはデフォルトの8080）",
							},
						},
						Action: appcli.ServerStartAction,
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "ローカルの画像ファイルを取り込む",
				ArgsUsage: "<file> [<file>...]",
				Flags: []cli.Flag{
					envFlag,
				},
				Action: appcli.IngestAction,
			},
			{
				Name:  "search",
				Usage: "自然文で画像を検索する",
				Flags: []cli.Flag{
					envFlag,
					&cli.StringFlag{
						Name:     "query",
						Usage:    "検索クエリ",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "最大件数（1〜50）",
					},
					&cli.FloatFlag{
						Name:  "threshold",
						Usage: "類似度の足切り（0〜1）",
					},
				},
				Action: appcli.SearchAction,
			},
			{
				Name:  "stats",
				Usage: "コレクション統計を表示",
				Flags: []cli.Flag{
					envFlag,
				},
				Action: appcli.StatsAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
