package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"EchoFM/config"
	"EchoFM/core/deezer"
	"EchoFM/core/embed"
	"EchoFM/core/vecdb"

	"github.com/spf13/cobra"
)

var indexBuildCount int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "向量索引管理工具",
}

var indexInitCmd = &cobra.Command{
	Use:   "init",
	Short: "创建向量集合与索引",
	Run: func(cmd *cobra.Command, args []string) {
		withIndex(func(ctx context.Context, idx *vecdb.Index, _ *config.Config) {
			if err := idx.EnsureCollection(ctx); err != nil {
				log.Fatalf("初始化集合失败: %v", err)
			}
			fmt.Println("向量集合已就绪")
		})
	},
}

var indexCountCmd = &cobra.Command{
	Use:   "count",
	Short: "查看索引中的歌曲数量",
	Run: func(cmd *cobra.Command, args []string) {
		withIndex(func(ctx context.Context, idx *vecdb.Index, _ *config.Config) {
			count, err := idx.Count(ctx)
			if err != nil {
				log.Fatalf("获取数量失败: %v", err)
			}
			fmt.Printf("索引中共有 %d 首歌曲\n", count)
		})
	},
}

var indexResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "清空并重建向量集合",
	Run: func(cmd *cobra.Command, args []string) {
		withIndex(func(ctx context.Context, idx *vecdb.Index, _ *config.Config) {
			if err := idx.Reset(ctx); err != nil {
				log.Fatalf("重建集合失败: %v", err)
			}
			fmt.Println("向量集合已清空并重建")
		})
	},
}

var indexAddCmd = &cobra.Command{
	Use:   "add",
	Short: "将榜单歌曲批量写入索引",
	Run: func(cmd *cobra.Command, args []string) {
		withIndex(func(ctx context.Context, idx *vecdb.Index, cfg *config.Config) {
			if err := idx.EnsureCollection(ctx); err != nil {
				log.Fatalf("初始化集合失败: %v", err)
			}

			client := deezer.NewClient(cfg)
			embedder := embed.NewEmbedder(embed.NewRemoteModel(cfg), cfg)

			tracks, err := client.GetTopTracks(ctx, indexBuildCount)
			if err != nil {
				log.Fatalf("获取榜单失败: %v", err)
			}

			added := 0
			for i, track := range tracks {
				fmt.Printf("[%d/%d] %s - %s ... ", i+1, len(tracks), track.Title, track.Artist)
				if !track.HasPreview() {
					fmt.Println("无试听，跳过")
					continue
				}
				if exists, err := idx.TrackExists(ctx, track.ID); err != nil {
					fmt.Printf("查重失败: %v\n", err)
					continue
				} else if exists {
					fmt.Println("已在索引，跳过")
					continue
				}

				path, err := client.DownloadPreview(ctx, track.PreviewURL)
				if err != nil {
					fmt.Printf("下载失败: %v\n", err)
					continue
				}
				vec, err := embedder.EmbedFile(ctx, path)
				os.Remove(path)
				if err != nil {
					fmt.Printf("嵌入失败: %v\n", err)
					continue
				}

				if err := idx.AddTrack(ctx, vecdb.Entry{Track: track, Embedding: vec}); err != nil {
					fmt.Printf("写入失败: %v\n", err)
					continue
				}
				fmt.Println("完成")
				added++
			}
			fmt.Printf("\n共写入 %d 首歌曲\n", added)
		})
	},
}

// withIndex 连接向量索引并执行操作，结束时释放连接
func withIndex(fn func(ctx context.Context, idx *vecdb.Index, cfg *config.Config)) {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	idx, err := vecdb.NewIndex(ctx, cfg)
	if err != nil {
		log.Fatalf("连接向量索引失败: %v", err)
	}
	defer idx.Close()

	fn(ctx, idx, cfg)
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexInitCmd, indexAddCmd, indexCountCmd, indexResetCmd)

	indexAddCmd.Flags().IntVarP(&indexBuildCount, "count", "c", 100, "抓取的榜单歌曲数量")
}
