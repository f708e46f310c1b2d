package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/jinford/image-rag/internal/interface/rest"
)

// ServerStartAction はHTTPサーバを起動するコマンドのアクション
func ServerStartAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	port := int(cmd.Int("port"))
	if port == 0 {
		port = appCtx.Config.Server.Port
	}

	handler := rest.NewHandler(
		appCtx.Container.IngestService,
		appCtx.Container.SearchService,
		appCtx.Container.ImageRepo,
		rest.WithTempDir(appCtx.Config.Upload.TempDir),
		rest.WithHandlerLogger(appCtx.Logger()),
	)

	server := rest.NewServer(port, appCtx.Config.Server.AllowedOrigins, handler, appCtx.Logger())
	return server.Start(ctx)
}
