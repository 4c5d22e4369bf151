package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"ecocrm/app/database"
	"ecocrm/app/middleware"
)

func TestNewsletterLifecycle(t *testing.T) {
	app, db := newTestApp(t)
	app.Get("/api/newsletters", GetNewsletters)
	app.Post("/api/newsletters", middleware.AuthMiddleware, middleware.AdminMiddleware, CreateNewsletter)
	app.Put("/api/newsletters/:newsletter_id", middleware.AuthMiddleware, middleware.AdminMiddleware, UpdateNewsletter)
	app.Delete("/api/newsletters/:newsletter_id", middleware.AuthMiddleware, middleware.AdminMiddleware, DeleteNewsletter)

	admin := seedUser(t, db, "boss", database.RoleAdmin)

	resp := doRequest(t, app, fiber.MethodPost, "/api/newsletters", fiber.Map{
		"title":   "Spring Update",
		"content": "What happened this spring.",
	}, bearer(t, admin))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var newsletter database.Newsletter
	decodeBody(t, resp, &newsletter)

	resp = doRequest(t, app, fiber.MethodPut, "/api/newsletters/"+itoa(newsletter.ID), fiber.Map{
		"title":   "Spring Update, revised",
		"content": "What actually happened this spring.",
	}, bearer(t, admin))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// The list stays public.
	resp = doRequest(t, app, fiber.MethodGet, "/api/newsletters", nil, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var newsletters []database.Newsletter
	decodeBody(t, resp, &newsletters)
	if len(newsletters) != 1 {
		t.Fatalf("expected 1 newsletter, got %d", len(newsletters))
	}
	if newsletters[0].Title != "Spring Update, revised" {
		t.Errorf("expected revised title, got %q", newsletters[0].Title)
	}

	resp = doRequest(t, app, fiber.MethodDelete, "/api/newsletters/"+itoa(newsletter.ID), nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&database.Newsletter{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no newsletters, got %d", count)
	}
}

func TestCreateNewsletterRequiresAdmin(t *testing.T) {
	app, db := newTestApp(t)
	app.Post("/api/newsletters", middleware.AuthMiddleware, middleware.AdminMiddleware, CreateNewsletter)

	member := seedUser(t, db, "jane", database.RoleMember)

	resp := doRequest(t, app, fiber.MethodPost, "/api/newsletters", fiber.Map{
		"title":   "Unauthorized",
		"content": "Should not be created.",
	}, bearer(t, member))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}
