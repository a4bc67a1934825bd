//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
	mysqlrepo "github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_InsertUpdateAndQuery(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=rafiki",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "rafiki")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Unknown reviewer -> ErrNotFound
	if _, err := repo.GetReviewByName(ctx, "Nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	full := domain.Review{
		ReviewerName:    "Amina K",
		ReviewerCountry: pstr("Kenya"),
		ReviewTitle:     pstr("Wonderful stay"),
		PositiveText:    pstr("Quiet garden, great host"),
		NegativeText:    pstr("Wifi dropped once"),
		Score:           pfloat(9.0),
		StayDate:        pstr("March 2026"),
		RoomType:        pstr("Garden Cottage"),
		TravelerType:    pstr("Couple"),
	}
	if err := repo.InsertReview(ctx, full); err != nil {
		t.Fatalf("InsertReview: %v", err)
	}

	// Round-trip: every optional field survives the store.
	got, err := repo.GetReviewByName(ctx, "Amina K")
	if err != nil {
		t.Fatalf("GetReviewByName: %v", err)
	}
	if *got.ReviewerCountry != "Kenya" || *got.ReviewTitle != "Wonderful stay" ||
		*got.PositiveText != "Quiet garden, great host" || *got.NegativeText != "Wifi dropped once" ||
		*got.Score != 9.0 || *got.StayDate != "March 2026" ||
		*got.RoomType != "Garden Cottage" || *got.TravelerType != "Couple" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Same-name update overwrites content: last write wins.
	if err := repo.UpdateReview(ctx, domain.Review{
		ReviewerName: "Amina K",
		Score:        pfloat(3.0),
	}); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	got, err = repo.GetReviewByName(ctx, "Amina K")
	if err != nil {
		t.Fatalf("GetReviewByName after update: %v", err)
	}
	if got.Score == nil || *got.Score != 3.0 {
		t.Fatalf("expected score 3.0 after update, got %+v", got.Score)
	}
	if got.ReviewerCountry != nil {
		t.Fatalf("expected country overwritten to NULL, got %v", *got.ReviewerCountry)
	}

	if err := repo.InsertReview(ctx, domain.Review{ReviewerName: "John O"}); err != nil {
		t.Fatalf("InsertReview second: %v", err)
	}
	page, err := repo.ListReviews(ctx, domain.PageQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(page.Items))
	}

	// Role store
	if _, err := db.Exec(`INSERT INTO user_roles (user_id, role) VALUES ('u-1', 'admin')`); err != nil {
		t.Fatalf("seed role: %v", err)
	}
	ok, err := repo.HasRole(ctx, "u-1", "admin")
	if err != nil || !ok {
		t.Fatalf("HasRole(u-1, admin) = %v, %v", ok, err)
	}
	ok, err = repo.HasRole(ctx, "u-2", "admin")
	if err != nil || ok {
		t.Fatalf("HasRole(u-2, admin) = %v, %v", ok, err)
	}
}
