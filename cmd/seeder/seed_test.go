package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/internal/testlog"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/repo/store/storetest"
)

func TestSeederRun(t *testing.T) {
	db := storetest.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger := testlog.New(t)

	env := newSeedEnv(db, rdb, messaging.NopMessenger{}, appConfig.ConfessionConfig{}, logger)
	s := &Seeder{
		faker:      gofakeit.New(42),
		posts:      env.posts,
		comments:   env.comments,
		reactions:  env.reactions,
		reports:    env.reports,
		users:      env.users,
		moderation: env.moderation,
		ranking:    env.ranking,
		logger:     logger,
	}

	stats, err := s.Run(context.Background(), Plan{Posts: 15, Users: 6, AdminID: 1})
	require.NoError(t, err)
	assert.Equal(t, 15, stats.Posts)

	var approved int64
	require.NoError(t, db.Model(&entities.Post{}).Where("status = ?", enums.StatusApproved).Count(&approved).Error)
	assert.EqualValues(t, stats.Approved, approved)

	// 已发布的投稿编号连续
	var numbers []int64
	require.NoError(t, db.Model(&entities.Post{}).Where("post_number IS NOT NULL").Order("post_number").Pluck("post_number", &numbers).Error)
	for i, n := range numbers {
		assert.EqualValues(t, i+1, n)
	}

	// 每个投稿人至少有投稿积分
	var rankings int64
	require.NoError(t, db.Model(&entities.UserRanking{}).Count(&rankings).Error)
	assert.Positive(t, rankings)

	var profiles int64
	require.NoError(t, db.Model(&entities.User{}).Where("username <> ''").Count(&profiles).Error)
	assert.EqualValues(t, 6, profiles)
}
