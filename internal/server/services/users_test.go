package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/cryptox"
	"github.com/avelmore/deckvault/internal/server/config"
	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/avelmore/deckvault/internal/server/repositories/repomanager"
)

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, rt: &fakeRefreshRepo{}}
	s := newUserService(t, db, rm)

	pair, err := s.Register(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", pair)
	}
	if len(rm.rt.created) != 1 {
		t.Fatalf("expected one stored refresh token, got %d", len(rm.rt.created))
	}
}

func TestRegister_Duplicate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u:  &fakeUsersRepo{createErr: common.ErrorAlreadyExists},
		rt: &fakeRefreshRepo{},
	}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "alice", "hunter2")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	salt := []byte("salt")
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{
			ID:           "u1",
			UserName:     "alice",
			Salt:         salt,
			PasswordHash: cryptox.HashPassword([]byte("hunter2"), salt),
		}},
		rt: &fakeRefreshRepo{},
	}
	s := newUserService(t, db, rm)

	pair, err := s.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	userID, err := s.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("want user u1, got %q", userID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	salt := []byte("salt")
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{
			ID:           "u1",
			Salt:         salt,
			PasswordHash: cryptox.HashPassword([]byte("hunter2"), salt),
		}},
		rt: &fakeRefreshRepo{},
	}
	s := newUserService(t, db, rm)

	_, err := s.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u:  &fakeUsersRepo{getErr: common.ErrorNotFound},
		rt: &fakeRefreshRepo{},
	}
	s := newUserService(t, db, rm)

	_, err := s.Login(context.Background(), "nobody", "pw")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{
		rt: &fakeRefreshRepo{
			findOut: &models.RefreshToken{UserID: "u1", Token: "refresh-xyz", Expires: time.Now().Add(10 * time.Minute)},
		},
	}
	s := newUserService(t, db, rm)

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", pair)
	}
	if len(rm.rt.deleted) != 1 || rm.rt.deleted[0] != "refresh-xyz" {
		t.Fatalf("old token not rotated out: %v", rm.rt.deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		rt: &fakeRefreshRepo{
			findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(-1 * time.Minute)},
		},
	}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want ErrRefreshTokenExpired, got %v", err)
	}
}

func TestRefreshToken_Unknown(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{rt: &fakeRefreshRepo{findErr: common.ErrorNotFound}}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}
