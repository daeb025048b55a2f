package service

import (
	"strings"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"
)

// OrganizationService 机构业务服务
type OrganizationService struct {
	repo       repository.OrganizationRepository
	userRepo   repository.VirtualUserRepository
	deviceRepo repository.DeviceRepository
}

// NewOrganizationService 创建机构服务
func NewOrganizationService(repo repository.OrganizationRepository, userRepo repository.VirtualUserRepository, deviceRepo repository.DeviceRepository) *OrganizationService {
	return &OrganizationService{repo: repo, userRepo: userRepo, deviceRepo: deviceRepo}
}

// OrganizationInput 创建/更新机构输入
type OrganizationInput struct {
	Name         string
	ContactEmail string
	Status       string
}

// List 分页查询机构
func (s *OrganizationService) List(filter repository.OrganizationListFilter) ([]models.Organization, int64, error) {
	return s.repo.List(filter)
}

// Get 获取机构详情
func (s *OrganizationService) Get(id uint) (*models.Organization, error) {
	org, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}
	return org, nil
}

// Create 创建机构
func (s *OrganizationService) Create(input OrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if existing, err := s.repo.GetByName(name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrOrganizationExists
	}

	org := models.Organization{
		Name:         name,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Status:       resolveOrganizationStatus(input.Status),
	}
	if err := s.repo.Create(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

// Update 更新机构
func (s *OrganizationService) Update(id uint, input OrganizationInput) (*models.Organization, error) {
	org, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(input.Name)
	if existing, err := s.repo.GetByName(name); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != id {
		return nil, ErrOrganizationExists
	}

	org.Name = name
	org.ContactEmail = strings.TrimSpace(input.ContactEmail)
	org.Status = resolveOrganizationStatus(input.Status)

	if err := s.repo.Update(org); err != nil {
		return nil, err
	}
	return org, nil
}

// Delete 删除机构，存在学员或设备时拒绝
func (s *OrganizationService) Delete(id uint) error {
	org, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if org == nil {
		return ErrNotFound
	}

	userCount, err := s.userRepo.CountByOrganization(id)
	if err != nil {
		return err
	}
	if userCount > 0 {
		return ErrInUse
	}
	deviceCount, err := s.deviceRepo.CountByOrganization(id)
	if err != nil {
		return err
	}
	if deviceCount > 0 {
		return ErrInUse
	}
	return s.repo.Delete(id)
}

func resolveOrganizationStatus(status string) string {
	switch status {
	case constants.OrganizationStatusActive, constants.OrganizationStatusDisabled:
		return status
	default:
		return constants.OrganizationStatusActive
	}
}
