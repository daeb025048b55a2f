package service

import (
	"context"
	"strings"
	"time"

	"github.com/vrlab-next/internal/cache"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"
)

// VirtualUserService 虚拟学员业务服务
type VirtualUserService struct {
	repo    repository.VirtualUserRepository
	orgRepo repository.OrganizationRepository
}

// NewVirtualUserService 创建虚拟学员服务
func NewVirtualUserService(repo repository.VirtualUserRepository, orgRepo repository.OrganizationRepository) *VirtualUserService {
	return &VirtualUserService{repo: repo, orgRepo: orgRepo}
}

// VirtualUserInput 创建/更新学员输入
type VirtualUserInput struct {
	OrganizationID uint
	UserCode       string
	Email          string
	DisplayName    string
	Status         string
}

// List 分页查询学员
func (s *VirtualUserService) List(filter repository.VirtualUserListFilter) ([]models.VirtualUser, int64, error) {
	return s.repo.List(filter)
}

// Get 获取学员详情
func (s *VirtualUserService) Get(id uint) (*models.VirtualUser, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Create 创建学员，编码在机构内唯一
func (s *VirtualUserService) Create(input VirtualUserInput) (*models.VirtualUser, error) {
	org, err := s.orgRepo.GetByID(input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	userCode := strings.TrimSpace(input.UserCode)
	if existing, err := s.repo.GetByOrgAndCode(input.OrganizationID, userCode); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserCodeExists
	}

	user := models.VirtualUser{
		OrganizationID: input.OrganizationID,
		UserCode:       userCode,
		Email:          email,
		DisplayName:    strings.TrimSpace(input.DisplayName),
		Status:         resolveVirtualUserStatus(input.Status),
	}
	if err := s.repo.Create(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update 更新学员，禁用时递增令牌版本使已签发会话失效
func (s *VirtualUserService) Update(id uint, input VirtualUserInput) (*models.VirtualUser, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if input.OrganizationID != user.OrganizationID {
		org, err := s.orgRepo.GetByID(input.OrganizationID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, ErrNotFound
		}
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	userCode := strings.TrimSpace(input.UserCode)
	if existing, err := s.repo.GetByOrgAndCode(input.OrganizationID, userCode); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != id {
		return nil, ErrUserCodeExists
	}

	status := resolveVirtualUserStatus(input.Status)
	disabling := user.Status == constants.VirtualUserStatusActive && status == constants.VirtualUserStatusDisabled

	user.OrganizationID = input.OrganizationID
	user.UserCode = userCode
	user.Email = email
	user.DisplayName = strings.TrimSpace(input.DisplayName)
	user.Status = status
	if disabling {
		now := time.Now()
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.SetLearnerAuthState(context.Background(), cache.BuildLearnerAuthState(user))
	return user, nil
}

// Delete 删除学员
func (s *VirtualUserService) Delete(id uint) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelLearnerAuthState(context.Background(), id)
	return nil
}

func resolveVirtualUserStatus(status string) string {
	switch status {
	case constants.VirtualUserStatusActive, constants.VirtualUserStatusDisabled:
		return status
	default:
		return constants.VirtualUserStatusActive
	}
}
