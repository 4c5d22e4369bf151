package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"ecocrm/app/database"
	"ecocrm/app/middleware"
)

func TestGetCurrentUser(t *testing.T) {
	app, db := newTestApp(t)
	app.Get("/api/users/me", middleware.AuthMiddleware, GetCurrentUser)

	user := seedUser(t, db, "jane", database.RoleMember)

	resp := doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, bearer(t, user))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var me database.User
	decodeBody(t, resp, &me)
	if me.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, me.ID)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/api/users/me", middleware.AuthMiddleware, GetCurrentUser)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abcdef"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, tt.header)
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("expected 401, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	app, db := newTestApp(t)
	app.Get("/api/users/me", middleware.AuthMiddleware, GetCurrentUser)

	user := seedUser(t, db, "jane", database.RoleMember)
	token := bearer(t, user)

	if err := db.Delete(&user).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	resp := doRequest(t, app, fiber.MethodGet, "/api/users/me", nil, token)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for deleted account, got %d", resp.StatusCode)
	}
}

func TestUpdateCurrentUser(t *testing.T) {
	app, db := newTestApp(t)
	app.Put("/api/users/me", middleware.AuthMiddleware, UpdateCurrentUser)

	user := seedUser(t, db, "jane", database.RoleMember)

	resp := doRequest(t, app, fiber.MethodPut, "/api/users/me", fiber.Map{
		"full_name": "Jane Q. Doe",
		"bio":       "Sustainability lead",
		"interests": []string{"solar", "policy"},
	}, bearer(t, user))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fresh database.User
	if err := db.First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.FullName != "Jane Q. Doe" {
		t.Errorf("full name not updated, got %q", fresh.FullName)
	}
	if fresh.Bio == nil || *fresh.Bio != "Sustainability lead" {
		t.Error("bio not updated")
	}
	if len(fresh.Interests) != 2 {
		t.Errorf("expected 2 interests, got %d", len(fresh.Interests))
	}
}

func TestGetAllUsersRequiresAdmin(t *testing.T) {
	app, db := newTestApp(t)
	app.Get("/api/users", middleware.AuthMiddleware, middleware.AdminMiddleware, GetAllUsers)

	member := seedUser(t, db, "jane", database.RoleMember)
	admin := seedUser(t, db, "boss", database.RoleAdmin)

	resp := doRequest(t, app, fiber.MethodGet, "/api/users", nil, bearer(t, member))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for member, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, fiber.MethodGet, "/api/users", nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}

	var users []database.User
	decodeBody(t, resp, &users)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestPromoteUser(t *testing.T) {
	app, db := newTestApp(t)
	app.Post("/api/users/:user_id/promote", middleware.AuthMiddleware, middleware.AdminMiddleware, PromoteUser)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	member := seedUser(t, db, "jane", database.RoleMember)

	resp := doRequest(t, app, fiber.MethodPost, "/api/users/9999/promote", nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for unknown user, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, fiber.MethodPost, "/api/users/"+itoa(member.ID)+"/promote", nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fresh database.User
	if err := db.First(&fresh, "id = ?", member.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.Role != database.RoleAdmin {
		t.Errorf("expected admin role, got %q", fresh.Role)
	}
}
