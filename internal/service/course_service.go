package service

import (
	"strings"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"
)

// CourseService 课程与课程模块业务服务
type CourseService struct {
	repo           repository.CourseRepository
	moduleRepo     repository.CourseModuleRepository
	enrollmentRepo repository.EnrollmentRepository
}

// NewCourseService 创建课程服务
func NewCourseService(repo repository.CourseRepository, moduleRepo repository.CourseModuleRepository, enrollmentRepo repository.EnrollmentRepository) *CourseService {
	return &CourseService{repo: repo, moduleRepo: moduleRepo, enrollmentRepo: enrollmentRepo}
}

// CourseInput 创建/更新课程输入
type CourseInput struct {
	Title           string
	Slug            string
	Description     string
	CoverURL        string
	DurationMinutes int
	PassingScore    string
	Status          string
	CreatedBy       *uint
}

// CourseModuleInput 创建/更新课程模块输入
type CourseModuleInput struct {
	Title           string
	SceneKey        string
	DurationMinutes int
}

// List 分页查询课程
func (s *CourseService) List(filter repository.CourseListFilter) ([]models.Course, int64, error) {
	return s.repo.List(filter)
}

// Get 获取课程详情
func (s *CourseService) Get(id uint) (*models.Course, error) {
	course, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	return course, nil
}

// GetBySlug 按 slug 获取课程
func (s *CourseService) GetBySlug(slug string) (*models.Course, error) {
	course, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	return course, nil
}

// Create 创建课程
func (s *CourseService) Create(input CourseInput) (*models.Course, error) {
	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if existing, err := s.repo.GetBySlug(slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrSlugExists
	}

	passingScore, err := parsePassingScore(input.PassingScore)
	if err != nil {
		return nil, err
	}

	course := models.Course{
		Title:           strings.TrimSpace(input.Title),
		Slug:            slug,
		Description:     input.Description,
		CoverURL:        strings.TrimSpace(input.CoverURL),
		DurationMinutes: input.DurationMinutes,
		PassingScore:    passingScore,
		Status:          resolveCourseStatus(input.Status),
		CreatedBy:       input.CreatedBy,
	}
	if err := s.repo.Create(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update 更新课程
func (s *CourseService) Update(id uint, input CourseInput) (*models.Course, error) {
	course, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}

	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if existing, err := s.repo.GetBySlug(slug); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != id {
		return nil, ErrSlugExists
	}

	passingScore, err := parsePassingScore(input.PassingScore)
	if err != nil {
		return nil, err
	}

	course.Title = strings.TrimSpace(input.Title)
	course.Slug = slug
	course.Description = input.Description
	course.CoverURL = strings.TrimSpace(input.CoverURL)
	course.DurationMinutes = input.DurationMinutes
	course.PassingScore = passingScore
	course.Status = resolveCourseStatus(input.Status)

	if err := s.repo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

// Delete 删除课程，存在分配记录时拒绝
func (s *CourseService) Delete(id uint) error {
	course, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if course == nil {
		return ErrNotFound
	}

	count, err := s.enrollmentRepo.CountByCourse(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}
	return s.repo.Delete(id)
}

// ListModules 获取课程模块列表（按顺序）
func (s *CourseService) ListModules(courseID uint) ([]models.CourseModule, error) {
	course, err := s.repo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	return s.moduleRepo.ListByCourse(courseID)
}

// CreateModule 创建课程模块，追加到末尾
func (s *CourseService) CreateModule(courseID uint, input CourseModuleInput) (*models.CourseModule, error) {
	course, err := s.repo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}

	count, err := s.moduleRepo.CountByCourse(courseID)
	if err != nil {
		return nil, err
	}

	module := models.CourseModule{
		CourseID:        courseID,
		Title:           strings.TrimSpace(input.Title),
		SceneKey:        strings.TrimSpace(input.SceneKey),
		Sequence:        int(count) + 1,
		DurationMinutes: input.DurationMinutes,
	}
	if err := s.moduleRepo.Create(&module); err != nil {
		return nil, err
	}
	return &module, nil
}

// UpdateModule 更新课程模块
func (s *CourseService) UpdateModule(id uint, input CourseModuleInput) (*models.CourseModule, error) {
	module, err := s.moduleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, ErrNotFound
	}

	module.Title = strings.TrimSpace(input.Title)
	module.SceneKey = strings.TrimSpace(input.SceneKey)
	module.DurationMinutes = input.DurationMinutes

	if err := s.moduleRepo.Update(module); err != nil {
		return nil, err
	}
	return module, nil
}

// DeleteModule 删除课程模块
func (s *CourseService) DeleteModule(id uint) error {
	module, err := s.moduleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if module == nil {
		return ErrNotFound
	}
	return s.moduleRepo.Delete(id)
}

// ResequenceModules 重排课程模块，orderedIDs 必须恰好覆盖课程全部模块
func (s *CourseService) ResequenceModules(courseID uint, orderedIDs []uint) error {
	course, err := s.repo.GetByID(courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return ErrNotFound
	}

	modules, err := s.moduleRepo.ListByCourse(courseID)
	if err != nil {
		return err
	}
	if len(modules) != len(orderedIDs) {
		return ErrModuleMismatch
	}
	owned := make(map[uint]struct{}, len(modules))
	for _, m := range modules {
		owned[m.ID] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := owned[id]; !ok {
			return ErrModuleMismatch
		}
		if _, dup := seen[id]; dup {
			return ErrModuleMismatch
		}
		seen[id] = struct{}{}
	}
	return s.moduleRepo.Resequence(courseID, orderedIDs)
}

func parsePassingScore(raw string) (models.Score, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "0"
	}
	return models.ParseScore(raw)
}

func resolveCourseStatus(status string) string {
	switch status {
	case constants.CourseStatusDraft, constants.CourseStatusPublished, constants.CourseStatusArchived:
		return status
	default:
		return constants.CourseStatusDraft
	}
}
