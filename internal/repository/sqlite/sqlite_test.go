package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/inkwell/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Benefits:
// - Fast: no disk I/O
// - Isolated: each test gets its own database
// - Clean: automatically destroyed when the connection closes
//
// newTestDB is a "test helper" — the `t.Helper()` call tells Go's test
// framework to report errors at the CALLER's line number, not inside this
// function, which makes failure output much clearer.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:      "Test " + email,
		Email:     email,
		Role:      role,
		Onboarded: true,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestPost creates a published post by the given author.
func createTestPost(t *testing.T, db *DB, authorID, title string) *model.Post {
	t.Helper()
	post := &model.Post{
		AuthorID:  authorID,
		Title:     title,
		Content:   "content of " + title,
		Published: true,
	}
	if err := db.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}
