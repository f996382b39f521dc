package mysql

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/config"
	"github.com/Xushengqwer/publication_service/models/entities"
)

// PostBatchRepository 定义了批量数据库操作接口，服务于浏览量对账任务。
type PostBatchRepository interface {
	// BatchOverwriteViews 并发地将统计服务的浏览量快照批量回写到 MySQL。
	// - 是全量覆盖而不是累加：views 列被直接置为统计服务给出的值。
	// - 允许部分批次失败（记录错误并聚合返回），下一轮对账会补齐。
	BatchOverwriteViews(ctx context.Context, viewCounts map[uint64]int64) error

	// GetPostsByIDs 根据 ID 列表批量检索稿件。
	// - 使用 "WHERE id IN (...)" 进行查询，缓存重建等场景使用。
	GetPostsByIDs(ctx context.Context, ids []uint64) ([]*entities.Post, error)
}

type postBatchRepository struct {
	db          *gorm.DB
	logger      *core.ZapLogger
	viewSyncCfg config.ViewSyncConfig
}

// NewPostBatchRepository 是 postBatchRepository 的构造函数。
func NewPostBatchRepository(db *gorm.DB, logger *core.ZapLogger, viewSyncCfg config.ViewSyncConfig) PostBatchRepository {
	return &postBatchRepository{db: db, logger: logger, viewSyncCfg: viewSyncCfg}
}

// updateItem 用于在并发处理通道中传递 ID 和对应的浏览量。
type updateItem struct {
	ID        uint64
	ViewCount int64
}

// BatchOverwriteViews 实现了浏览量批量回写的核心逻辑。
//
// 核心机制:
// 1. 数据分批: 根据配置 `viewSyncCfg.BatchSize` 将大量更新分割成小批次。
// 2. 并发处理: 根据配置 `viewSyncCfg.ConcurrencyLevel` 启动 worker goroutine 池处理这些批次。
// 3. 数据库更新: 每个 worker 对其批次内的数据，通过 `processBatch` 构建单条 CASE WHEN 更新语句。
func (r *postBatchRepository) BatchOverwriteViews(ctx context.Context, viewCounts map[uint64]int64) error {
	totalUpdates := len(viewCounts)
	if totalUpdates == 0 {
		r.logger.Info("BatchOverwriteViews: 没有需要回写的浏览量，任务提前结束。")
		return nil
	}

	// --- 1. 加载并验证配置 ---
	batchSize := r.viewSyncCfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500 // Fallback
		r.logger.Warn("BatchOverwriteViews: 配置 BatchSize 无效，使用默认值",
			zap.Int("defaultBatchSize", batchSize), zap.Int("configured", r.viewSyncCfg.BatchSize))
	}

	concurrencyLevel := r.viewSyncCfg.ConcurrencyLevel
	if concurrencyLevel <= 0 {
		concurrencyLevel = 1 // Fallback (顺序执行)
		r.logger.Warn("BatchOverwriteViews: 配置 ConcurrencyLevel 无效，使用默认值 1",
			zap.Int("defaultConcurrency", concurrencyLevel), zap.Int("configured", r.viewSyncCfg.ConcurrencyLevel))
	}

	// --- 2. 数据准备 ---
	itemsToUpdate := make([]updateItem, 0, totalUpdates)
	for id, count := range viewCounts {
		itemsToUpdate = append(itemsToUpdate, updateItem{ID: id, ViewCount: count})
	}

	totalBatches := (totalUpdates + batchSize - 1) / batchSize
	r.logger.Info("BatchOverwriteViews: 开始并发批量回写",
		zap.Int("总数", totalUpdates),
		zap.Int("批大小", batchSize),
		zap.Int("并发数", concurrencyLevel),
		zap.Int("批次数", totalBatches),
	)

	// --- 3. 设置并发工作池 ---
	var wg sync.WaitGroup
	jobs := make(chan []updateItem, concurrencyLevel)
	results := make(chan error, totalBatches)
	overallStartTime := time.Now()

	// --- 4. 启动 Worker Goroutines ---
	for i := 0; i < concurrencyLevel; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for batch := range jobs {
				select {
				case <-ctx.Done():
					r.logger.Warn("上下文取消，Worker 停止处理", zap.Int("workerID", workerID), zap.Error(ctx.Err()))
					results <- fmt.Errorf("worker %d: context cancelled: %w", workerID, ctx.Err())
					continue
				default:
				}

				results <- r.processBatch(ctx, batch, workerID)
			}
		}(i)
	}

	// --- 5. 启动分发任务 Goroutine ---
	go func() {
		defer close(jobs)

		for i := 0; i < totalUpdates; i += batchSize {
			end := i + batchSize
			if end > totalUpdates {
				end = totalUpdates
			}
			batchCopy := make([]updateItem, len(itemsToUpdate[i:end]))
			copy(batchCopy, itemsToUpdate[i:end])

			select {
			case <-ctx.Done():
				r.logger.Warn("上下文取消，停止分发更多批次任务。", zap.Error(ctx.Err()))
				return
			case jobs <- batchCopy:
			}
		}
	}()

	// --- 6. 收集结果 ---
	go func() {
		wg.Wait()
		close(results)
	}()

	var aggregatedErrors []error
	for err := range results {
		if err != nil {
			aggregatedErrors = append(aggregatedErrors, err)
		}
	}

	// --- 7. 最终日志记录与返回 ---
	totalDuration := time.Since(overallStartTime)
	failedCount := len(aggregatedErrors)
	r.logger.Info("完成所有批次的浏览量回写处理。",
		zap.Duration("总耗时", totalDuration),
		zap.Int("总批次数", totalBatches),
		zap.Int("失败批次数", failedCount),
	)

	if failedCount > 0 {
		var errorStrings []string
		for _, e := range aggregatedErrors {
			errorStrings = append(errorStrings, e.Error())
		}
		finalError := fmt.Errorf("并发批量回写过程中发生错误 (%d / %d 个批次失败): %s",
			failedCount, totalBatches, strings.Join(errorStrings, "; "))
		r.logger.Error("并发批量回写最终结果：失败", zap.Error(finalError))
		return finalError
	}

	return nil
}

// processBatch 负责处理单个批次的数据库更新。
func (r *postBatchRepository) processBatch(ctx context.Context, batch []updateItem, workerID int) error {
	currentBatchSize := len(batch)

	var (
		ids          []uint64
		sqlCase      strings.Builder
		updateParams []interface{}
	)
	sqlCase.WriteString("CASE id ")
	for _, item := range batch {
		ids = append(ids, item.ID)
		sqlCase.WriteString("WHEN ? THEN ? ")
		updateParams = append(updateParams, item.ID, item.ViewCount)
	}
	sqlCase.WriteString("END")

	dbOperationStart := time.Now()
	err := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id IN ?", ids).
		Update("views", gorm.Expr(sqlCase.String(), updateParams...)).Error
	dbDuration := time.Since(dbOperationStart)

	if err != nil {
		r.logger.Error("processBatch: 数据库回写批次失败",
			zap.Int("workerID", workerID),
			zap.Int("batchSize", currentBatchSize),
			zap.Duration("db耗时", dbDuration),
			zap.Error(err),
		)
		return fmt.Errorf("worker %d 处理批次 (大小 %d) 失败: %w", workerID, currentBatchSize, err)
	}

	return nil
}

// GetPostsByIDs 实现根据 ID 列表批量获取稿件。
func (r *postBatchRepository) GetPostsByIDs(ctx context.Context, ids []uint64) ([]*entities.Post, error) {
	var posts []*entities.Post

	if len(ids) == 0 {
		return posts, nil
	}

	// GORM 的 Find 会自动处理软删除，只返回存在的记录。
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		r.logger.Error("GetPostsByIDs: 查询稿件失败。", zap.Error(err))
		return nil, err
	}

	return posts, nil
}
