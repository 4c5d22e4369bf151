package handlers

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"ecocrm/app/database"
	"ecocrm/app/middleware"
	"ecocrm/app/platform/engagement"
)

func TestGetEngagementStats(t *testing.T) {
	app, db := newTestApp(t)
	app.Post("/api/token", Login)
	app.Get("/api/engagement/stats", middleware.AuthMiddleware, middleware.AdminMiddleware, GetEngagementStats)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	seedUser(t, db, "jane", database.RoleMember)

	mentor := seedMentor(t, db, "Dr. Green", "green@mentors.test")
	db.Model(&mentor).Update("contact_requests", 3)

	// A real login moves logins, last_login and the session feed.
	resp := doRequest(t, app, fiber.MethodPost, "/api/token", fiber.Map{
		"username": "boss",
		"password": testPassword,
	}, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login failed with %d", resp.StatusCode)
	}

	resp = doRequest(t, app, fiber.MethodGet, "/api/engagement/stats", nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats engagement.Stats
	decodeBody(t, resp, &stats)

	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.ActiveUsersThisMonth != 1 {
		t.Errorf("expected 1 active user, got %d", stats.ActiveUsersThisMonth)
	}
	if stats.TotalLogins != 1 {
		t.Errorf("expected 1 login, got %d", stats.TotalLogins)
	}
	if len(stats.TopMentorsByRequests) != 1 {
		t.Fatalf("expected 1 ranked mentor, got %d", len(stats.TopMentorsByRequests))
	}
	if stats.TopMentorsByRequests[0].Requests != 3 {
		t.Errorf("expected 3 requests, got %d", stats.TopMentorsByRequests[0].Requests)
	}
	if len(stats.RecentActivity) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(stats.RecentActivity))
	}
	if stats.RecentActivity[0].Type != "login" {
		t.Errorf("expected login activity, got %q", stats.RecentActivity[0].Type)
	}
}

func TestGetEngagementStatsEmpty(t *testing.T) {
	app, db := newTestApp(t)
	app.Get("/api/engagement/stats", middleware.AuthMiddleware, middleware.AdminMiddleware, GetEngagementStats)

	admin := seedUser(t, db, "boss", database.RoleAdmin)

	resp := doRequest(t, app, fiber.MethodGet, "/api/engagement/stats", nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats engagement.Stats
	decodeBody(t, resp, &stats)

	if stats.TotalLogins != 0 || stats.TotalRSVPs != 0 || stats.TotalMentorRequests != 0 {
		t.Error("expected zeroed sums on an empty database")
	}
	if stats.TopMentorsByRequests == nil || stats.RecentActivity == nil {
		t.Error("lists should be empty, not null")
	}
}

func TestGetUserEngagement(t *testing.T) {
	app, db := newTestApp(t)
	app.Get("/api/engagement/users", middleware.AuthMiddleware, middleware.AdminMiddleware, GetUserEngagement)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	busy := seedUser(t, db, "jane", database.RoleMember)
	now := time.Now().UTC()
	db.Model(&busy).Updates(map[string]any{"logins": 7, "last_login": now})

	resp := doRequest(t, app, fiber.MethodGet, "/api/engagement/users", nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rows []engagement.UserEngagement
	decodeBody(t, resp, &rows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Username != "jane" {
		t.Error("rows should be ordered most active first")
	}
	if rows[0].Logins != 7 {
		t.Errorf("expected 7 logins, got %d", rows[0].Logins)
	}
}
