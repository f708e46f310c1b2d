package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// StatsAction はコレクション統計を表示するコマンドのアクション
func StatsAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	stats, err := appCtx.Container.SearchService.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("count:    %d\n", stats.Count)
	fmt.Printf("dim:      %d\n", stats.Dimension)
	fmt.Printf("metric:   %s\n", stats.DistanceMetric)
	fmt.Printf("status:   %s\n", stats.Status)

	return nil
}
