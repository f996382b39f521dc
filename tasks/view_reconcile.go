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

// ViewReconcileTask 定时从统计系统拉取整表浏览量并覆盖写回 MySQL。
type ViewReconcileTask struct {
	viewSvc service.ViewCountService
	cron    *cron.Cron
	logger  *core.ZapLogger
}

// NewViewReconcileTask 初始化并启动浏览量对账定时任务。
func NewViewReconcileTask(viewSvc service.ViewCountService, logger *core.ZapLogger) *ViewReconcileTask {
	task := &ViewReconcileTask{
		viewSvc: viewSvc,
		cron:    cron.New(), // 默认分钟级精度
		logger:  logger,
	}
	task.startCronJob()
	return task
}

// startCronJob 配置并启动 cron 作业。
func (t *ViewReconcileTask) startCronJob() {
	schedule := constant.ViewReconcileCronSpec
	t.logger.Info("准备启动浏览量对账定时任务", zap.String("schedule", schedule))

	entryID, err := t.cron.AddFunc(schedule, func() {
		t.logger.Info("浏览量对账任务开始执行...")
		startTime := time.Now()
		// 单次执行的超时要覆盖整表拉取与批量写回
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		if err := t.viewSvc.Reconcile(ctx); err != nil {
			t.logger.Error("浏览量对账失败，等待下一轮调度", zap.Error(err))
		}

		t.logger.Info("浏览量对账任务执行完毕", zap.Duration("duration", time.Since(startTime)))
	})
	if err != nil {
		t.logger.Fatal("添加浏览量对账 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
	}

	t.cron.Start()
	t.logger.Info("浏览量对账定时任务已启动", zap.Uint("cronEntryID", uint(entryID)))
}

// Stop 优雅地停止 cron 调度器。
// 返回的 context 在正在运行的任务全部结束后关闭。
func (t *ViewReconcileTask) Stop() context.Context {
	t.logger.Info("正在停止浏览量对账定时任务...")
	stopCtx := t.cron.Stop()
	t.logger.Info("浏览量对账定时任务已停止调度，等待正在执行的任务完成...")
	return stopCtx
}
