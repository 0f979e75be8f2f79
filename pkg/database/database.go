// Package database 数据库连接与迁移入口
package database

import (
	"database/sql"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bloxforge/pkg/logger"
)

var (
	// DB 全局 gorm 实例，仓库层统一从这里取连接
	DB *gorm.DB
	// SQLDB 底层连接，用于连接池参数设置
	SQLDB *sql.DB
)

// Connect 建立数据库连接，失败直接 panic：没有数据库服务无法工作
func Connect(dialector gorm.Dialector, gl gormlogger.Interface) {
	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gl,
	})
	if err != nil {
		logger.ErrorString("数据库", "连接", err.Error())
		panic(err)
	}

	SQLDB, err = DB.DB()
	if err != nil {
		logger.ErrorString("数据库", "获取底层连接", err.Error())
		panic(err)
	}
}

// AutoMigrate 迁移传入的数据表模型
func AutoMigrate(tables []interface{}) error {
	return DB.AutoMigrate(tables...)
}
