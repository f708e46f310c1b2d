package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/image-rag/internal/core/search"
)

// SearchAction は自然文で画像を検索するコマンドのアクション
func SearchAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	params := search.SearchParams{
		Query: cmd.String("query"),
		Limit: int(cmd.Int("limit")),
	}
	if cmd.IsSet("threshold") {
		threshold := cmd.Float("threshold")
		params.ScoreThreshold = &threshold
	}

	response, err := appCtx.Container.SearchService.Search(ctx, params)
	if err != nil {
		return err
	}

	if len(response.Results) == 0 {
		fmt.Printf("「%s」に一致する画像はありませんでした\n", response.Query)
		if len(response.Suggestions) > 0 {
			fmt.Println("候補語:")
			for _, suggestion := range response.Suggestions {
				fmt.Printf("  - %s\n", suggestion)
			}
		}
		return nil
	}

	for i, result := range response.Results {
		fmt.Printf("%2d. %s  score=%.3f  id=%s\n", i+1, result.Filename, result.Score, result.ID)
		fmt.Printf("    %s\n", result.Description)
	}

	return nil
}
