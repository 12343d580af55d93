package mysql

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lvtian/agrostock/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（生产环境应改用版本化迁移脚本）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ItemModel{},
		&BatchModel{},
		&StockLogModel{},
	)
}

// UserModel GORM账号模型
// infrastructure层的数据模型(带GORM tag),
// domain/user/entity.go是领域实体,Repository负责两者转换。
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:operator;comment:角色(admin/operator)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ItemModel GORM农资商品模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. 数量/阈值使用DECIMAL(14,3),农药按升/千克计量存在小数
// 3. SKU有唯一索引,防止重复
// 4. 与BatchModel是一对多关系(聚合整体读写)
type ItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"index:idx_search;size:200;not null;comment:商品名称"`
	Sku       string          `gorm:"uniqueIndex;size:64;not null;comment:SKU编码"`
	Category  string          `gorm:"index;size:50;comment:分类"`
	Unit      string          `gorm:"size:20;comment:计量单位"`
	Price     int64           `gorm:"not null;default:0;comment:售价(分)"`
	Quantity  decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0;comment:在库总量"`
	Threshold decimal.Decimal `gorm:"type:decimal(14,3);not null;default:10;comment:补货阈值"`
	Status    string          `gorm:"index;size:20;not null;comment:库存状态"`
	Supplier  string          `gorm:"size:100;comment:默认供应商"`
	Batches   []BatchModel    `gorm:"foreignKey:ItemID"` // 一对多关联
	CreatedAt time.Time       `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time       `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt  `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (ItemModel) TableName() string {
	return "inventory_items"
}

// BatchModel GORM批次模型
// 设计说明:
// 1. (item_id, batch_id)复合唯一索引:批次编号在商品内唯一
// 2. 批次随商品整体替换落库(先删后插),不做软删除
type BatchModel struct {
	ID                uint            `gorm:"primaryKey"`
	ItemID            uint            `gorm:"uniqueIndex:uk_item_batch;index;not null;comment:商品ID"`
	BatchID           string          `gorm:"uniqueIndex:uk_item_batch;size:64;not null;comment:批次编号"`
	LotNumber         string          `gorm:"size:64;comment:生产批号"`
	Quantity          decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0;comment:批次数量"`
	ManufacturingDate time.Time       `gorm:"comment:生产日期"`
	ExpiryDate        time.Time       `gorm:"index;comment:过期日期"`
	Supplier          string          `gorm:"size:100;comment:批次供应商"`
	LocationCode      string          `gorm:"size:30;comment:库位编码"`
	Notes             string          `gorm:"type:text;comment:备注"`
	CreatedAt         time.Time       `gorm:"comment:创建时间"`
	UpdatedAt         time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BatchModel) TableName() string {
	return "inventory_batches"
}

// StockLogModel GORM库存变更日志模型
// Append-Only,没有更新和删除路径
type StockLogModel struct {
	ID             uint            `gorm:"primaryKey"`
	ItemID         uint            `gorm:"index:idx_item_id;not null;comment:商品ID"`
	BatchID        string          `gorm:"size:64;comment:批次编号"`
	ChangeType     string          `gorm:"size:20;not null;comment:变更类型"`
	Delta          decimal.Decimal `gorm:"type:decimal(14,3);not null;comment:变更量"`
	BeforeQuantity decimal.Decimal `gorm:"type:decimal(14,3);not null;comment:变更前总量"`
	AfterQuantity  decimal.Decimal `gorm:"type:decimal(14,3);not null;comment:变更后总量"`
	Operator       string          `gorm:"size:50;comment:操作人"`
	Remark         string          `gorm:"size:255;comment:备注"`
	CreatedAt      time.Time       `gorm:"index:idx_created_at;comment:创建时间"`
}

// TableName 指定表名
func (StockLogModel) TableName() string {
	return "stock_logs"
}
