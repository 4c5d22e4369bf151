package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"ecocrm/app/database"
	"ecocrm/app/middleware"
)

func TestCreateTask(t *testing.T) {
	app, db := newTestApp(t)
	app.Post("/api/tasks", middleware.AuthMiddleware, middleware.AdminMiddleware, CreateTask)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	member := seedUser(t, db, "jane", database.RoleMember)

	resp := doRequest(t, app, fiber.MethodPost, "/api/tasks", fiber.Map{
		"title":          "Prepare newsletter draft",
		"assigned_to_id": member.ID,
	}, bearer(t, admin))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var task database.Task
	decodeBody(t, resp, &task)
	if task.Status != database.TaskStatusPending {
		t.Errorf("new task should be pending, got %q", task.Status)
	}
	if task.AssignedToID != member.ID {
		t.Errorf("expected assignee %d, got %d", member.ID, task.AssignedToID)
	}
	if task.CreatedByID != admin.ID {
		t.Errorf("expected creator %d, got %d", admin.ID, task.CreatedByID)
	}
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	app, db := newTestApp(t)
	app.Post("/api/tasks", middleware.AuthMiddleware, middleware.AdminMiddleware, CreateTask)

	admin := seedUser(t, db, "boss", database.RoleAdmin)

	resp := doRequest(t, app, fiber.MethodPost, "/api/tasks", fiber.Map{
		"title":          "Orphan task",
		"assigned_to_id": 9999,
	}, bearer(t, admin))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetMyTasks(t *testing.T) {
	app, db := newTestApp(t)
	app.Get("/api/users/me/tasks", middleware.AuthMiddleware, GetMyTasks)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	member := seedUser(t, db, "jane", database.RoleMember)

	for _, task := range []database.Task{
		{Title: "Mine", AssignedToID: member.ID, CreatedByID: admin.ID},
		{Title: "Also mine", AssignedToID: member.ID, CreatedByID: admin.ID},
		{Title: "Not mine", AssignedToID: admin.ID, CreatedByID: admin.ID},
	} {
		if err := db.Create(&task).Error; err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	resp := doRequest(t, app, fiber.MethodGet, "/api/users/me/tasks", nil, bearer(t, member))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var tasks []database.Task
	decodeBody(t, resp, &tasks)
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(tasks))
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	app, db := newTestApp(t)
	app.Patch("/api/tasks/:task_id/status", middleware.AuthMiddleware, UpdateTaskStatus)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	member := seedUser(t, db, "jane", database.RoleMember)
	other := seedUser(t, db, "mark", database.RoleMember)

	task := database.Task{Title: "Prepare draft", AssignedToID: member.ID, CreatedByID: admin.ID}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	// A task assigned to someone else reads as missing.
	for _, caller := range []database.User{other, admin} {
		resp := doRequest(t, app, fiber.MethodPatch, "/api/tasks/"+itoa(task.ID)+"/status", fiber.Map{
			"status": "completed",
		}, bearer(t, caller))
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("expected 404 for non-assignee %s, got %d", caller.Username, resp.StatusCode)
		}
	}

	resp := doRequest(t, app, fiber.MethodPatch, "/api/tasks/"+itoa(task.ID)+"/status", fiber.Map{
		"status": "completed",
	}, bearer(t, member))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for assignee, got %d", resp.StatusCode)
	}

	var fresh database.Task
	if err := db.First(&fresh, "id = ?", task.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if fresh.Status != database.TaskStatusCompleted {
		t.Errorf("expected completed, got %q", fresh.Status)
	}
}

func TestUpdateTaskStatusRejectsUnknownStatus(t *testing.T) {
	app, db := newTestApp(t)
	app.Patch("/api/tasks/:task_id/status", middleware.AuthMiddleware, UpdateTaskStatus)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	task := database.Task{Title: "Prepare draft", AssignedToID: admin.ID, CreatedByID: admin.ID}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	resp := doRequest(t, app, fiber.MethodPatch, "/api/tasks/"+itoa(task.ID)+"/status", fiber.Map{
		"status": "archived",
	}, bearer(t, admin))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestTaskLifecycleForNewMember(t *testing.T) {
	app, db := newTestApp(t)
	app.Post("/api/users", Register)
	app.Post("/api/token", Login)
	app.Get("/api/users/me/tasks", middleware.AuthMiddleware, GetMyTasks)
	app.Post("/api/tasks", middleware.AuthMiddleware, middleware.AdminMiddleware, CreateTask)
	app.Patch("/api/tasks/:task_id/status", middleware.AuthMiddleware, UpdateTaskStatus)

	admin := seedUser(t, db, "boss", database.RoleAdmin)

	resp := doRequest(t, app, fiber.MethodPost, "/api/users", fiber.Map{
		"email":     "newbie@example.com",
		"username":  "newbie",
		"password":  testPassword,
		"full_name": "New Member",
	}, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 on register, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, fiber.MethodPost, "/api/token", fiber.Map{
		"username": "newbie@example.com",
		"password": testPassword,
	}, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on login, got %d", resp.StatusCode)
	}
	var token AuthToken
	decodeBody(t, resp, &token)
	authorization := "Bearer " + token.AccessToken

	resp = doRequest(t, app, fiber.MethodGet, "/api/users/me/tasks", nil, authorization)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tasks []database.Task
	decodeBody(t, resp, &tasks)
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks for a fresh member, got %d", len(tasks))
	}

	resp = doRequest(t, app, fiber.MethodPost, "/api/tasks", fiber.Map{
		"title":          "Welcome call",
		"assigned_to_id": token.UserID,
	}, bearer(t, admin))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 on assign, got %d", resp.StatusCode)
	}
	var task database.Task
	decodeBody(t, resp, &task)

	resp = doRequest(t, app, fiber.MethodPatch, "/api/tasks/"+itoa(task.ID)+"/status", fiber.Map{
		"status": database.TaskStatusCompleted,
	}, authorization)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on status update, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, fiber.MethodGet, "/api/users/me/tasks", nil, authorization)
	decodeBody(t, resp, &tasks)
	if len(tasks) != 1 || tasks[0].Status != database.TaskStatusCompleted {
		t.Errorf("expected one completed task, got %+v", tasks)
	}
}

func TestDeleteTask(t *testing.T) {
	app, db := newTestApp(t)
	app.Delete("/api/tasks/:task_id", middleware.AuthMiddleware, middleware.AdminMiddleware, DeleteTask)

	admin := seedUser(t, db, "boss", database.RoleAdmin)
	task := database.Task{Title: "Prepare draft", AssignedToID: admin.ID, CreatedByID: admin.ID}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	resp := doRequest(t, app, fiber.MethodDelete, "/api/tasks/"+itoa(task.ID), nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, app, fiber.MethodDelete, "/api/tasks/"+itoa(task.ID), nil, bearer(t, admin))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for missing task, got %d", resp.StatusCode)
	}
}
