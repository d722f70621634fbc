package router

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-survey/backend/internal/answers"
	"github.com/aura-survey/backend/internal/auth"
	"github.com/aura-survey/backend/internal/questions"
)

// PostgresStores returns repositories backed by a pgx pool.
func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Questions: questions.NewPostgresRepository(pool),
		Answers:   answers.NewPostgresRepository(pool),
		Users:     auth.NewPostgresRepository(pool),
	}
}

// SQLiteStores returns repositories backed by a SQLite handle.
func SQLiteStores(db *sql.DB) Stores {
	return Stores{
		Questions: questions.NewSQLiteRepository(db),
		Answers:   answers.NewSQLiteRepository(db),
		Users:     auth.NewSQLiteRepository(db),
	}
}
