package service

import (
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"
)

// EnrollmentService 学员选课业务服务
type EnrollmentService struct {
	repo       repository.EnrollmentRepository
	userRepo   repository.VirtualUserRepository
	courseRepo repository.CourseRepository
}

// NewEnrollmentService 创建选课服务
func NewEnrollmentService(repo repository.EnrollmentRepository, userRepo repository.VirtualUserRepository, courseRepo repository.CourseRepository) *EnrollmentService {
	return &EnrollmentService{repo: repo, userRepo: userRepo, courseRepo: courseRepo}
}

// AssignInput 分配课程输入
type AssignInput struct {
	VirtualUserID uint
	CourseID      uint
	AssignedBy    *uint
}

// List 分页查询选课记录
func (s *EnrollmentService) List(filter repository.EnrollmentListFilter) ([]models.Enrollment, int64, error) {
	return s.repo.List(filter)
}

// Get 获取选课记录详情
func (s *EnrollmentService) Get(id uint) (*models.Enrollment, error) {
	enrollment, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}
	return enrollment, nil
}

// ListByLearner 获取学员的全部课程分配（含课程和模块预载）
func (s *EnrollmentService) ListByLearner(virtualUserID uint) ([]models.Enrollment, error) {
	return s.repo.ListByLearner(virtualUserID)
}

// Assign 将课程分配给学员，仅允许已发布课程，学员课程对唯一
func (s *EnrollmentService) Assign(input AssignInput) (*models.Enrollment, error) {
	user, err := s.userRepo.GetByID(input.VirtualUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	course, err := s.courseRepo.GetByID(input.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	if course.Status != constants.CourseStatusPublished {
		return nil, ErrCourseNotPublished
	}

	existing, err := s.repo.GetByLearnerAndCourse(input.VirtualUserID, input.CourseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := models.Enrollment{
		VirtualUserID: input.VirtualUserID,
		CourseID:      input.CourseID,
		Status:        constants.EnrollmentStatusAssigned,
		Progress:      0,
		AssignedBy:    input.AssignedBy,
	}
	if err := s.repo.Create(&enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Revoke 撤销分配
func (s *EnrollmentService) Revoke(id uint) error {
	enrollment, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if enrollment == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// MarkStarted 首次训练时把分配置为进行中
func (s *EnrollmentService) MarkStarted(enrollment *models.Enrollment, at time.Time) error {
	if enrollment.Status != constants.EnrollmentStatusAssigned {
		return nil
	}
	enrollment.Status = constants.EnrollmentStatusInProgress
	enrollment.StartedAt = &at
	return s.repo.Update(enrollment)
}
