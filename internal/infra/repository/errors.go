package repository

import (
	"errors"
	"strings"

	repo "perfumeshop/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL の unique_violation
const pgUniqueViolation = "23505"

// gorm/ドライバのエラーを repository のエラーに寄せる。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return repo.ErrDuplicate
	}
	//sqlite（テスト用DB）
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return repo.ErrDuplicate
	}
	return err
}
