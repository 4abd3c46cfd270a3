package model

// 工作地点类别（仅用于展示与分组）
const (
	CategoryWarehouse = "warehouse"
	CategoryEvent     = "event"
	CategoryClub      = "club"
	CategoryOffice    = "office"
	CategoryOther     = "other"
)

// Workplace 工作地点表，对应 workplaces
type Workplace struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"                 json:"id"`
	Name      string `gorm:"type:varchar(100);not null"               json:"name"`
	Category  string `gorm:"type:varchar(20);not null;default:'other'" json:"category"`
	Address   string `gorm:"type:varchar(200)"                        json:"address,omitempty"`
	Notes     string `gorm:"type:text"                                json:"notes,omitempty"`
	ManagerID *uint  `json:"manager_id,omitempty"`
	IsActive  bool   `gorm:"not null;default:true"                    json:"is_active"`
	SoftDeleteModel

	// 关联
	Manager *Worker `gorm:"foreignKey:ManagerID;references:ID" json:"manager,omitempty"`
}

// TableName 指定表名
func (Workplace) TableName() string { return "workplaces" }
