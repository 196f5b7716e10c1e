package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"EchoFM/cache"
	"EchoFM/config"
	"EchoFM/core/deezer"
	"EchoFM/core/search"

	"github.com/spf13/cobra"
)

var (
	searchKeyword string
	searchLimit   int
)

var deezerCmd = &cobra.Command{
	Use:   "deezer",
	Short: "Deezer曲库命令行工具",
	Long:  `一个简单的曲库命令行工具，可以搜索歌曲并查看试听地址`,
	Run: func(cmd *cobra.Command, args []string) {
		if searchKeyword == "" {
			fmt.Println("请输入要搜索的歌曲名称")
			os.Exit(1)
		}

		cfg := config.Load()
		client := deezer.NewClient(cfg)
		searcher := search.NewModel(client, cache.NewMemoryResultCache())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fmt.Printf("正在搜索: %s\n", searchKeyword)
		tracks, err := searcher.Predict(ctx, searchKeyword, searchLimit)
		if err != nil {
			log.Fatalf("搜索失败: %v", err)
		}
		if len(tracks) == 0 {
			fmt.Println("未找到相关歌曲")
			return
		}

		fmt.Printf("\n找到 %d 首歌曲:\n", len(tracks))
		for i, track := range tracks {
			fmt.Printf("%d. %s - %s [%s]\n", i+1, track.Title, track.Artist, track.Album)
		}

		var choice int
		fmt.Print("\n请选择要查看详情的歌曲编号: ")
		fmt.Scan(&choice)

		if choice < 1 || choice > len(tracks) {
			fmt.Println("无效的选择")
			return
		}

		selected := tracks[choice-1]
		detail, err := client.GetTrackMetadata(ctx, selected.ID)
		if err != nil {
			log.Fatalf("获取歌曲详情失败: %v", err)
		}

		fmt.Printf("\n歌曲: %s\n", detail.Title)
		fmt.Printf("艺术家: %s\n", detail.Artist)
		fmt.Printf("专辑: %s\n", detail.Album)
		if detail.Genre != "" {
			fmt.Printf("流派: %s\n", detail.Genre)
		}
		if detail.HasPreview() {
			fmt.Printf("试听地址: %s\n", detail.PreviewURL)
		} else {
			fmt.Println("该歌曲无试听音频")
		}
	},
}

func init() {
	rootCmd.AddCommand(deezerCmd)

	deezerCmd.Flags().StringVarP(&searchKeyword, "keyword", "k", "", "要搜索的歌曲名称")
	deezerCmd.Flags().IntVarP(&searchLimit, "limit", "l", 5, "返回结果数量")
}
