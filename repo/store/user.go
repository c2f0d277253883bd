package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/myErrors"
)

// UserRepository 用户封禁状态和管理员查询用的资料
type UserRepository interface {
	// SetBlocked 设置封禁状态，用户不存在时创建
	SetBlocked(ctx context.Context, userID int64, blocked bool) error

	// IsBlocked 未知用户视为未封禁
	IsBlocked(ctx context.Context, userID int64) (bool, error)

	// EnsureUser 用户不存在时创建，已存在则不修改
	EnsureUser(ctx context.Context, db *gorm.DB, user *entities.User) error

	// UpsertProfile 写入用户名和姓名，不修改封禁状态
	UpsertProfile(ctx context.Context, user *entities.User) error

	// GetUser 未找到返回 myErrors.ErrNotFound
	GetUser(ctx context.Context, userID int64) (*entities.User, error)

	// SearchUsers 按条件搜索，按用户 ID 升序
	SearchUsers(ctx context.Context, q UserQuery, limit int) ([]*entities.User, error)
}

// UserQuery 零值字段不参与过滤，多个字段之间为 AND
type UserQuery struct {
	UserID   int64
	Username string // 包含匹配，不区分大小写
	// Text 在用户名和姓名中做包含匹配
	Text string
}

type userRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewUserRepository 构造 UserRepository
func NewUserRepository(db *gorm.DB, logger *core.ZapLogger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	user := &entities.User{UserID: userID, Blocked: blocked}
	return Upsert(r.db.WithContext(ctx), user, []string{"user_id"}, []string{"blocked", "updated_at"})
}

func (r *userRepository) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Select("blocked").Where("user_id = ?", userID).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Blocked, nil
}

func (r *userRepository) EnsureUser(ctx context.Context, db *gorm.DB, user *entities.User) error {
	_, err := InsertIgnore(conn(ctx, r.db, db), user, "user_id")
	return err
}

func (r *userRepository) UpsertProfile(ctx context.Context, user *entities.User) error {
	return Upsert(r.db.WithContext(ctx), user, []string{"user_id"}, []string{"username", "first_name", "last_name", "updated_at"})
}

func (r *userRepository) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("User %d not found.", userID))
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SearchUsers(ctx context.Context, q UserQuery, limit int) ([]*entities.User, error) {
	tx := r.db.WithContext(ctx).Model(&entities.User{})
	if q.UserID != 0 {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Username != "" {
		tx = tx.Where("LOWER(username) LIKE ? ESCAPE '!'", containsPattern(q.Username))
	}
	if q.Text != "" {
		p := containsPattern(q.Text)
		tx = tx.Where("(LOWER(username) LIKE ? ESCAPE '!' OR LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!')", p, p, p)
	}
	var users []*entities.User
	err := tx.Order("user_id ASC").Limit(limit).Find(&users).Error
	return users, err
}
