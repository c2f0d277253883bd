package tasks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/models/vo"
)

// Reconciler 由 service.RankingService 实现
type Reconciler interface {
	Reconcile(ctx context.Context, batchSize, concurrency int) (*vo.ReconcileReport, error)
}

// LedgerReconcileTask 定时用积分流水核对用户总分。
// 同一时间只运行一次，上一次未结束时跳过本轮。
type LedgerReconcileTask struct {
	reconciler  Reconciler
	batchSize   int
	concurrency int
	running     atomic.Bool
	cron        *cron.Cron
	logger      *core.ZapLogger
}

func NewLedgerReconcileTask(reconciler Reconciler, cfg config.TaskConfig, logger *core.ZapLogger) (*LedgerReconcileTask, error) {
	task := &LedgerReconcileTask{
		reconciler:  reconciler,
		batchSize:   cfg.ReconcileBatchSize,
		concurrency: cfg.ConcurrencyLevel,
		cron:        cron.New(),
		logger:      logger,
	}
	schedule := orDefault(cfg.ReconcileSchedule, constant.ReconcileCronSpec)
	entryID, err := task.cron.AddFunc(schedule, func() { task.RunOnce(context.Background()) })
	if err != nil {
		logger.Error("添加积分对账 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
		return nil, err
	}
	task.cron.Start()
	logger.Info("积分对账定时任务已启动", zap.String("schedule", schedule), zap.Uint("cronEntryID", uint(entryID)))
	return task, nil
}

// RunOnce 执行一轮对账，返回 nil 表示本轮被跳过或失败
func (t *LedgerReconcileTask) RunOnce(ctx context.Context) *vo.ReconcileReport {
	if !t.running.CompareAndSwap(false, true) {
		t.logger.Warn("上一轮积分对账仍在执行，跳过本轮")
		return nil
	}
	defer t.running.Store(false)

	t.logger.Info("积分对账任务开始执行...")
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	report, err := t.reconciler.Reconcile(ctx, t.batchSize, t.concurrency)
	if err != nil {
		t.logger.Error("积分对账任务失败", zap.Error(err))
		return nil
	}
	t.logger.Info("积分对账任务执行完毕",
		zap.Int("checked", report.UsersChecked),
		zap.Int("fixed", report.UsersFixed),
		zap.Duration("duration", time.Since(startTime)))
	return report
}

func (t *LedgerReconcileTask) Stop() context.Context {
	t.logger.Info("正在停止积分对账定时任务...")
	return t.cron.Stop()
}
