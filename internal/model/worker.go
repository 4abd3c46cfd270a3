package model

import "time"

// 员工角色
const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

// Worker 员工表，对应 workers
// 由身份子系统维护；排班模块只读取角色、时薪，并在写班次时对其加行锁
type Worker struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                  json:"id"`
	Name       string    `gorm:"type:varchar(100);not null"                json:"name"`
	Email      *string   `gorm:"type:varchar(200)"                         json:"email,omitempty"`
	Role       string    `gorm:"type:varchar(20);not null;default:'worker'" json:"role"`
	HourlyWage *float64  `gorm:"type:numeric(10,2)"                        json:"hourly_wage,omitempty"`
	IsActive   bool      `gorm:"not null;default:true"                     json:"is_active"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"updated_at"`
}

// TableName 指定表名
func (Worker) TableName() string { return "workers" }

// IsAdmin 是否管理员
func (w *Worker) IsAdmin() bool { return w.Role == RoleAdmin }
