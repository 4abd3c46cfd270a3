package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	exclusion := fmt.Errorf("写入班次: %w", &pgconn.PgError{Code: "23P01", ConstraintName: "ex_shifts_worker_overlap"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "shifts_workplace_id_fkey"}

	if !IsExclusionViolation(exclusion) {
		t.Error("包装后的 23P01 应识别为排他约束冲突")
	}
	if IsExclusionViolation(fk) {
		t.Error("23503 不应识别为排他约束冲突")
	}
	if !IsForeignKeyViolation(fk) {
		t.Error("23503 应识别为外键冲突")
	}
	if IsUniqueViolation(errors.New("普通错误")) {
		t.Error("非 PG 错误不应被识别")
	}
	if got := ConstraintName(exclusion); got != "ex_shifts_worker_overlap" {
		t.Errorf("约束名错误: %q", got)
	}
	if got := ConstraintName(ErrOptimisticLock); got != "" {
		t.Errorf("非 PG 错误约束名应为空，实际 %q", got)
	}
}
