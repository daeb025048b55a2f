package service

import (
	"strings"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"
)

// DeviceService 设备业务服务
type DeviceService struct {
	repo    repository.DeviceRepository
	orgRepo repository.OrganizationRepository
}

// NewDeviceService 创建设备服务
func NewDeviceService(repo repository.DeviceRepository, orgRepo repository.OrganizationRepository) *DeviceService {
	return &DeviceService{repo: repo, orgRepo: orgRepo}
}

// DeviceInput 创建/更新设备输入
type DeviceInput struct {
	SerialNo        string
	Name            string
	Model           string
	FirmwareVersion string
	OrganizationID  *uint
	Status          string
}

// List 分页查询设备
func (s *DeviceService) List(filter repository.DeviceListFilter) ([]models.Device, int64, error) {
	return s.repo.List(filter)
}

// Get 获取设备详情
func (s *DeviceService) Get(id uint) (*models.Device, error) {
	device, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrNotFound
	}
	return device, nil
}

// Create 登记设备，序列号全局唯一
func (s *DeviceService) Create(input DeviceInput) (*models.Device, error) {
	serialNo := strings.TrimSpace(input.SerialNo)
	if existing, err := s.repo.GetBySerialNo(serialNo); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrSerialNoExists
	}

	if input.OrganizationID != nil {
		org, err := s.orgRepo.GetByID(*input.OrganizationID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, ErrNotFound
		}
	}

	device := models.Device{
		SerialNo:        serialNo,
		Name:            strings.TrimSpace(input.Name),
		Model:           strings.TrimSpace(input.Model),
		FirmwareVersion: strings.TrimSpace(input.FirmwareVersion),
		OrganizationID:  input.OrganizationID,
		Status:          resolveDeviceStatus(input.Status),
	}
	if err := s.repo.Create(&device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Update 更新设备
func (s *DeviceService) Update(id uint, input DeviceInput) (*models.Device, error) {
	device, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrNotFound
	}

	serialNo := strings.TrimSpace(input.SerialNo)
	if existing, err := s.repo.GetBySerialNo(serialNo); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != id {
		return nil, ErrSerialNoExists
	}

	if input.OrganizationID != nil {
		org, err := s.orgRepo.GetByID(*input.OrganizationID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, ErrNotFound
		}
	}

	device.SerialNo = serialNo
	device.Name = strings.TrimSpace(input.Name)
	device.Model = strings.TrimSpace(input.Model)
	device.FirmwareVersion = strings.TrimSpace(input.FirmwareVersion)
	device.OrganizationID = input.OrganizationID
	device.Status = resolveDeviceStatus(input.Status)

	if err := s.repo.Update(device); err != nil {
		return nil, err
	}
	return device, nil
}

// Delete 删除设备
func (s *DeviceService) Delete(id uint) error {
	device, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if device == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// Heartbeat 设备心跳，刷新在线时间并回到 active 状态
func (s *DeviceService) Heartbeat(serialNo, firmwareVersion string) (*models.Device, error) {
	device, err := s.repo.GetBySerialNo(strings.TrimSpace(serialNo))
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrNotFound
	}
	if device.Status == constants.DeviceStatusRetired {
		return nil, ErrDeviceRetired
	}
	now := time.Now()
	if err := s.repo.Touch(device.ID, now, strings.TrimSpace(firmwareVersion)); err != nil {
		return nil, err
	}
	device.LastSeenAt = &now
	device.Status = constants.DeviceStatusActive
	if fw := strings.TrimSpace(firmwareVersion); fw != "" {
		device.FirmwareVersion = fw
	}
	return device, nil
}

func resolveDeviceStatus(status string) string {
	switch status {
	case constants.DeviceStatusActive, constants.DeviceStatusOffline, constants.DeviceStatusRetired:
		return status
	default:
		return constants.DeviceStatusActive
	}
}
