package portal

import "github.com/vrlab-next/internal/provider"

// Handler 学员端接口处理器入口
// 说明：该处理器仅用于学员门户 API。
type Handler struct {
	*provider.Container
}

// New 创建学员端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
