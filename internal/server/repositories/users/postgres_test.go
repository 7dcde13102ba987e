package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const testUserID = "0b3f6a52-7c1e-4c52-9a53-2f0f8f0b8a11"

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	selectByEmail = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*is_email_verified,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	selectByID    = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*is_email_verified,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	insertUser    = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*is_email_verified\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+created_at\s*$`
	updatePass    = `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s*$`
)

func userRows(id, email string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "is_email_verified", "created_at"}).
		AddRow(id, email, "$2a$10$hash", false, time.Unix(1700000000, 0))
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmail).WithArgs("alice@example.com").WillReturnRows(userRows(testUserID, "alice@example.com"))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != testUserID || got.Email != "alice@example.com" || got.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmail).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmail).WithArgs("alice@example.com").WillReturnError(errors.New("db down"))

	_, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if !errors.Is(err, common.ErrStorage) {
		t.Fatalf("want common.ErrStorage, got %v", err)
	}
	if !regexp.MustCompile(`select user by email: db down`).MatchString(err.Error()) {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByID).WithArgs(testUserID).WillReturnRows(userRows(testUserID, "bob@example.com"))

	got, err := repo.GetByID(context.Background(), testUserID)
	if err != nil || got.Email != "bob@example.com" {
		t.Fatalf("GetByID: got (%+v, %v)", got, err)
	}
}

func TestGetByID_NotAUUID_SkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestSave_AssignsIDAndCreatedAt(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Unix(1700000000, 0)
	mock.ExpectQuery(insertUser).
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "hash", false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	got, err := repo.Save(context.Background(), &models.User{Email: "alice@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if got.ID == "" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestSave_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertUser).
		WithArgs(testUserID, "alice@example.com", "hash", false).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

	_, err := repo.Save(context.Background(), &models.User{ID: testUserID, Email: "alice@example.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrEmailAlreadyUsed) {
		t.Fatalf("want common.ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestSave_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertUser).WillReturnError(errors.New("connection reset"))

	_, err := repo.Save(context.Background(), &models.User{Email: "alice@example.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrStorage) || errors.Is(err, common.ErrEmailAlreadyUsed) {
		t.Fatalf("want plain storage error, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updatePass).WithArgs(testUserID, "newhash").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), testUserID, "newhash"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePassword_NoRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updatePass).WithArgs(testUserID, "newhash").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), testUserID, "newhash")
	if !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("want common.ErrUserNotFound, got %v", err)
	}
}

func TestUpdatePassword_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updatePass).WillReturnError(errors.New("db err"))

	err := repo.UpdatePassword(context.Background(), testUserID, "newhash")
	if !errors.Is(err, common.ErrStorage) {
		t.Fatalf("want common.ErrStorage, got %v", err)
	}
}
