package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/repo/store"
)

func (s *rankingService) Reconcile(ctx context.Context, batchSize, concurrency int) (*vo.ReconcileReport, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	report := &vo.ReconcileReport{}
	var after int64
	for {
		page, err := s.rankingRepo.FindDrift(ctx, after, batchSize)
		if err != nil {
			return report, fmt.Errorf("扫描积分汇总失败 (after: %d): %w", after, err)
		}
		report.UsersChecked += page.Scanned

		var fixed atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, drift := range page.Drifted {
			drift := drift
			g.Go(func() error {
				if err := s.fixDrift(gctx, drift); err != nil {
					return fmt.Errorf("修复用户(ID: %d)积分失败: %w", drift.UserID, err)
				}
				fixed.Add(1)
				return nil
			})
		}
		err = g.Wait()
		report.UsersFixed += int(fixed.Load())
		if err != nil {
			return report, err
		}

		if page.Scanned < batchSize {
			break
		}
		after = page.LastUserID
	}

	if report.UsersFixed > 0 {
		s.logger.Warn("积分对账发现并修复了不一致的用户", zap.Int("checked", report.UsersChecked), zap.Int("fixed", report.UsersFixed))
	} else {
		s.logger.Info("积分对账完成", zap.Int("checked", report.UsersChecked))
	}
	return report, nil
}

// fixDrift 锁定用户后重新求和，扫描之后到达的新流水也会被计入
func (s *rankingService) fixDrift(ctx context.Context, drift store.UserDrift) error {
	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		ranking, err := s.rankingRepo.LockRanking(ctx, tx, drift.UserID)
		if err != nil {
			return err
		}
		sum, err := s.rankingRepo.SumTransactions(ctx, tx, drift.UserID)
		if err != nil {
			return err
		}
		if sum == ranking.TotalPoints {
			return nil
		}
		if err := s.rankingRepo.SetTotalPoints(ctx, tx, drift.UserID, sum); err != nil {
			return err
		}
		rank, err := s.rankingRepo.FindRankForPoints(ctx, tx, sum)
		if err != nil {
			return err
		}
		return s.rankingRepo.SetRanks(ctx, tx, drift.UserID, rank.RankID, max(ranking.HighestRankAchieved, rank.RankID))
	})
	if err != nil {
		return err
	}
	s.logger.Info("已按流水修正用户总分",
		zap.Int64("userID", drift.UserID),
		zap.Int("before", drift.TotalPoints),
		zap.Int("ledger", drift.LedgerSum))
	s.invalidateSnapshot(ctx, drift.UserID)
	return nil
}
