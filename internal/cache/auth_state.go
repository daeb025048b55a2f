package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vrlab-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// LearnerAuthState 学员鉴权快照
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
// 该结构仅用于服务端 Redis 缓存
type LearnerAuthState struct {
	LearnerID          uint   `json:"learner_id"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Email              string `json:"email"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
	UpdatedAt          int64  `json:"updated_at"`
}

func learnerAuthStateKey(learnerID uint) string {
	return fmt.Sprintf("auth:learner:%d", learnerID)
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// BuildLearnerAuthState 从学员模型构建鉴权快照
func BuildLearnerAuthState(learner *models.VirtualUser) *LearnerAuthState {
	if learner == nil {
		return nil
	}
	state := &LearnerAuthState{
		LearnerID:    learner.ID,
		Status:       learner.Status,
		TokenVersion: learner.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
	if learner.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = learner.TokenInvalidBefore.Unix()
	}
	return state
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Email:        admin.Email,
		Status:       admin.Status,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

// GetLearnerAuthState 获取学员鉴权快照
func GetLearnerAuthState(ctx context.Context, learnerID uint) (*LearnerAuthState, bool, error) {
	if learnerID == 0 {
		return nil, false, nil
	}
	var state LearnerAuthState
	hit, err := GetJSON(ctx, learnerAuthStateKey(learnerID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetLearnerAuthState 写入学员鉴权快照
func SetLearnerAuthState(ctx context.Context, state *LearnerAuthState) error {
	if state == nil || state.LearnerID == 0 {
		return nil
	}
	return SetJSON(ctx, learnerAuthStateKey(state.LearnerID), state, authStateCacheTTL)
}

// DelLearnerAuthState 删除学员鉴权快照
func DelLearnerAuthState(ctx context.Context, learnerID uint) error {
	if learnerID == 0 {
		return nil
	}
	return Del(ctx, learnerAuthStateKey(learnerID))
}

// GetAdminAuthState 获取管理员鉴权快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	var state AdminAuthState
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}

// DelAdminAuthState 删除管理员鉴权快照
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, adminAuthStateKey(adminID))
}
