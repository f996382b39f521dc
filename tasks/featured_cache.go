package tasks

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/constant"
	"github.com/Xushengqwer/publication_service/service"
)

// FeaturedCacheTask 定时从数据库全量重建重要位稿件的 Redis 缓存。
// 变更路径上的即时重建失败时，这里是兜底。
type FeaturedCacheTask struct {
	importanceSvc service.ImportanceService
	cron          *cron.Cron
	logger        *core.ZapLogger
}

// NewFeaturedCacheTask 初始化并启动重要位缓存重建定时任务。
func NewFeaturedCacheTask(importanceSvc service.ImportanceService, logger *core.ZapLogger) *FeaturedCacheTask {
	task := &FeaturedCacheTask{
		importanceSvc: importanceSvc,
		cron:          cron.New(),
		logger:        logger,
	}
	task.startCronJob()
	return task
}

func (t *FeaturedCacheTask) startCronJob() {
	schedule := constant.FeaturedCacheCronSpec
	t.logger.Info("准备启动重要位缓存重建定时任务", zap.String("schedule", schedule))

	entryID, err := t.cron.AddFunc(schedule, func() {
		t.logger.Info("重要位缓存重建任务开始执行...")
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if err := t.importanceSvc.RebuildFeaturedCache(ctx); err != nil {
			t.logger.Error("重要位缓存重建失败，等待下一轮调度", zap.Error(err))
		}

		t.logger.Info("重要位缓存重建任务执行完毕", zap.Duration("duration", time.Since(startTime)))
	})
	if err != nil {
		t.logger.Fatal("添加重要位缓存重建 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
	}

	t.cron.Start()
	t.logger.Info("重要位缓存重建定时任务已启动", zap.Uint("cronEntryID", uint(entryID)))
}

// Stop 优雅地停止 cron 调度器。
func (t *FeaturedCacheTask) Stop() context.Context {
	t.logger.Info("正在停止重要位缓存重建定时任务...")
	stopCtx := t.cron.Stop()
	t.logger.Info("重要位缓存重建定时任务已停止调度，等待正在执行的任务完成...")
	return stopCtx
}
