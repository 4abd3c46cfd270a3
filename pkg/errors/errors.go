package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// PostgreSQL SQLSTATE
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgExclusionViolation  = "23P01"
)

// IsExclusionViolation 违反 EXCLUDE 约束（员工班次时间重叠）
func IsExclusionViolation(err error) bool {
	return hasCode(err, pgExclusionViolation)
}

// IsForeignKeyViolation 引用的记录不存在
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pgForeignKeyViolation)
}

// IsUniqueViolation 唯一约束冲突
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgUniqueViolation)
}

// ConstraintName 返回触发错误的约束名，非 PG 错误返回空串
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
