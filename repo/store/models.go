package store

import "github.com/Xushengqwer/confession_service/models/entities"

// AllModels 需要自动迁移的全部表
func AllModels() []interface{} {
	return []interface{}{
		&entities.Post{},
		&entities.Comment{},
		&entities.Reaction{},
		&entities.Report{},
		&entities.AdminAction{},
		&entities.User{},
		&entities.PostSequence{},
		&entities.PointTransaction{},
		&entities.UserRanking{},
		&entities.RankDefinition{},
		&entities.UserAchievement{},
		&entities.AdminMessage{},
	}
}
