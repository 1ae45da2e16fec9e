package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	ulid "github.com/oklog/ulid/v2"

	"SIMAPRO-backend/internal/platform/config"
)

const driverName = "mysql"

// DSN は接続文字列を組み立てる。時刻は UTC で保存・読み出しする
func DSN(c config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = 3 * time.Second
	mc.ReadTimeout = 5 * time.Second
	mc.WriteTimeout = 5 * time.Second
	mc.MultiStatements = true // goose のマイグレーション用
	return mc.FormatDSN()
}

func Connect(c config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driverName, DSN(c))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// 接続プール（合算がMySQLの max_connections を超えないよう配分する）
	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// MySQL error numbers the services translate.
const (
	ErDupEntry     = 1062
	ErNoReferenced = 1452
	ErCheckFailed  = 3819
)

// ErrorNumber returns the MySQL error number of err, or 0.
func ErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// CodeExpr は id 列から業務コードを作る SQL 式。桁あふれ時は LPAD で切り詰めずそのまま連結する
func CodeExpr(prefix, idCol string, width int) string {
	return fmt.Sprintf("IF(%[2]s >= %[4]d, CONCAT('%[1]s', %[2]s), CONCAT('%[1]s', LPAD(%[2]s, %[3]d, '0')))",
		prefix, idCol, width, pow10(width))
}

func pow10(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

// TempCode は確定コードに置き換えるまでの一意な仮コード
func TempCode() string {
	return "TMP-" + ulid.Make().String()
}
