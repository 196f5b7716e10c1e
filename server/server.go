package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"EchoFM/cache"
	"EchoFM/config"
	"EchoFM/core/deezer"
	"EchoFM/core/embed"
	"EchoFM/core/recognize"
	"EchoFM/core/recommend"
	"EchoFM/core/search"
	"EchoFM/core/summary"
	"EchoFM/core/vecdb"
	"EchoFM/core/voice"
	"EchoFM/logger"
)

// Start 初始化依赖并启动HTTP服务
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
	defer logger.Sync()

	// 搜索缓存：Redis可用时用Redis，否则退回进程内缓存
	var resultCache cache.ResultCache = cache.NewMemoryResultCache()
	if cfg.RedisEnabled {
		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Warn("[Start] Redis连接失败，使用进程内缓存", logger.ErrorField(err))
		} else {
			defer cache.CloseRedis()
			resultCache = cache.NewRedisResultCache(cache.RedisClient)
			logger.Info("[Start] 搜索缓存使用Redis")
		}
	}

	deezerClient := deezer.NewClient(cfg)
	embedder := embed.NewEmbedder(embed.NewRemoteModel(cfg), cfg)
	searcher := search.NewModel(deezerClient, resultCache)

	liveEngine := recommend.NewLiveEngine(deezerClient, embedder)

	// 向量索引是可选依赖，连不上时只用实时推荐
	var index *vecdb.Index
	var indexEngine recommend.Engine
	var autoEngine recommend.Engine = liveEngine
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if idx, err := vecdb.NewIndex(initCtx, cfg); err != nil {
		logger.Warn("[Start] 向量索引不可用，仅启用实时推荐", logger.ErrorField(err))
	} else if err := idx.EnsureCollection(initCtx); err != nil {
		logger.Warn("[Start] 初始化向量集合失败，仅启用实时推荐", logger.ErrorField(err))
		idx.Close()
	} else {
		index = idx
		defer index.Close()
		indexEngine = recommend.NewIndexEngine(deezerClient, embedder, index)
		autoEngine = recommend.NewFallbackEngine(indexEngine, liveEngine)
		logger.Info("[Start] 向量索引已就绪", logger.String("collection", cfg.MilvusCollection))
	}
	cancel()

	recognizer := recognize.NewService(deezerClient, searcher, embedder)
	voiceSvc := voice.NewService(cfg)
	summarySvc := summary.NewService(cfg)

	apiHandler := NewAPIHandler(searcher, liveEngine, indexEngine, autoEngine,
		recognizer, voiceSvc, summarySvc, index, deezerClient, embedder, cfg)

	router := mux.NewRouter()

	// CORS中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 搜索与推荐API端点
	router.HandleFunc("/api/search", apiHandler.HandleSearch).Methods(http.MethodPost)
	router.HandleFunc("/api/recommendations/{track_id}", apiHandler.HandleRecommend).Methods(http.MethodPost)

	// 歌曲识别API端点
	router.HandleFunc("/api/ai/identify", apiHandler.HandleIdentify).Methods(http.MethodPost)
	router.HandleFunc("/api/ai/identify/upload", apiHandler.HandleIdentifyUpload).Methods(http.MethodPost)
	router.HandleFunc("/api/ai/identify/voice", apiHandler.HandleIdentifyVoice).Methods(http.MethodPost)

	// 索引管理API端点
	router.HandleFunc("/api/admin/tracks", apiHandler.HandleIndexBuild).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/tracks/count", apiHandler.HandleIndexCount).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/tracks/{id}", apiHandler.HandleIndexDelete).Methods(http.MethodDelete)
	router.HandleFunc("/api/admin/reset", apiHandler.HandleIndexReset).Methods(http.MethodPost)

	router.HandleFunc("/health", apiHandler.HandleHealth).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // 实时推荐需要逐首下载音频
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("[Start] 服务启动", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Start] 服务启动失败", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("[Start] 收到退出信号，开始关闭服务")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("[Start] 服务强制关闭", logger.ErrorField(err))
	}
	logger.Info("[Start] 服务已停止")
}
