package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDeviceServiceTest(t *testing.T) (*DeviceService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:device_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Organization{}, &models.Device{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewDeviceService(repository.NewDeviceRepository(db), repository.NewOrganizationRepository(db))
	return svc, db
}

func TestDeviceCreateRejectsDuplicateSerialNo(t *testing.T) {
	svc, _ := setupDeviceServiceTest(t)

	if _, err := svc.Create(DeviceInput{SerialNo: "VR-EAST-0001", Name: "一号头显", Model: "Quest 3"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(DeviceInput{SerialNo: " VR-EAST-0001 ", Name: "重复设备"}); !errors.Is(err, ErrSerialNoExists) {
		t.Fatalf("want ErrSerialNoExists got %v", err)
	}
}

func TestDeviceCreateUnknownOrganization(t *testing.T) {
	svc, _ := setupDeviceServiceTest(t)

	orgID := uint(404)
	if _, err := svc.Create(DeviceInput{SerialNo: "VR-EAST-0002", OrganizationID: &orgID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestDeviceHeartbeat(t *testing.T) {
	svc, db := setupDeviceServiceTest(t)

	created, err := svc.Create(DeviceInput{SerialNo: "VR-EAST-0003", Name: "三号头显", Model: "Pico 4E", Status: constants.DeviceStatusOffline})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != constants.DeviceStatusOffline {
		t.Fatalf("status want offline got %s", created.Status)
	}

	device, err := svc.Heartbeat("VR-EAST-0003", "2.1.0")
	if err != nil {
		t.Fatalf("heartbeat failed: %v", err)
	}
	if device.Status != constants.DeviceStatusActive {
		t.Fatalf("heartbeat should activate device, got %s", device.Status)
	}
	if device.LastSeenAt == nil {
		t.Fatal("last_seen_at not set")
	}
	if device.FirmwareVersion != "2.1.0" {
		t.Fatalf("firmware want 2.1.0 got %s", device.FirmwareVersion)
	}

	var stored models.Device
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("load device failed: %v", err)
	}
	if stored.LastSeenAt == nil || stored.Status != constants.DeviceStatusActive {
		t.Fatalf("persisted state wrong: status=%s last_seen_at=%v", stored.Status, stored.LastSeenAt)
	}
}

func TestDeviceHeartbeatKeepsFirmwareWhenEmpty(t *testing.T) {
	svc, _ := setupDeviceServiceTest(t)

	if _, err := svc.Create(DeviceInput{SerialNo: "VR-EAST-0004", FirmwareVersion: "1.9.3"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	device, err := svc.Heartbeat("VR-EAST-0004", "")
	if err != nil {
		t.Fatalf("heartbeat failed: %v", err)
	}
	if device.FirmwareVersion != "1.9.3" {
		t.Fatalf("firmware should be unchanged, got %s", device.FirmwareVersion)
	}
}

func TestDeviceHeartbeatRetired(t *testing.T) {
	svc, _ := setupDeviceServiceTest(t)

	if _, err := svc.Create(DeviceInput{SerialNo: "VR-EAST-0005", Status: constants.DeviceStatusRetired}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Heartbeat("VR-EAST-0005", ""); !errors.Is(err, ErrDeviceRetired) {
		t.Fatalf("want ErrDeviceRetired got %v", err)
	}
}

func TestDeviceHeartbeatUnknownSerial(t *testing.T) {
	svc, _ := setupDeviceServiceTest(t)

	if _, err := svc.Heartbeat("VR-NOPE-9999", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}
