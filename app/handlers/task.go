package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ecocrm/app/config"
	"ecocrm/app/database"
)

type TaskInput struct {
	Title        string     `json:"title" validate:"required"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	AssignedToID int        `json:"assigned_to_id" validate:"required"`
}

// CreateTask assigns a new task to a user. Admin only.
func CreateTask(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	var input TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var assignee database.User
	result := db.First(&assignee, "id = ?", input.AssignedToID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Assigned user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	task := database.Task{
		Title:        input.Title,
		Description:  input.Description,
		DueDate:      input.DueDate,
		Status:       database.TaskStatusPending,
		AssignedToID: assignee.ID,
		CreatedByID:  user.ID,
	}
	result = db.Create(&task)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	task.AssignedTo = &assignee
	task.CreatedBy = &user

	return c.Status(fiber.StatusCreated).JSON(task)
}

func GetAllTasks(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var tasks []database.Task
	result := db.Preload("AssignedTo").Preload("CreatedBy").Order("created_at DESC").Find(&tasks)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(tasks)
}

// GetMyTasks lists the tasks assigned to the current user.
func GetMyTasks(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	var tasks []database.Task
	result := db.Preload("CreatedBy").Where("assigned_to_id = ?", user.ID).Order("created_at DESC").Find(&tasks)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(tasks)
}

func UpdateTask(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var input TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var task database.Task
	result := db.First(&task, "id = ?", c.Params("task_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if input.AssignedToID != task.AssignedToID {
		var count int64
		result := db.Model(&database.User{}).Where("id = ?", input.AssignedToID).Count(&count)
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
		if count == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Assigned user not found"})
		}
	}

	task.Title = input.Title
	task.Description = input.Description
	task.DueDate = input.DueDate
	task.AssignedToID = input.AssignedToID

	result = db.Save(&task)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(task)
}

// UpdateTaskStatus moves a task between pending and completed. Only the
// assignee can do this; anyone else is told the task does not exist.
func UpdateTaskStatus(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	type StatusInput struct {
		Status string `json:"status" validate:"required,oneof=pending completed"`
	}

	var input StatusInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var task database.Task
	result := db.First(&task, "id = ?", c.Params("task_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if task.AssignedToID != user.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
	}

	task.Status = input.Status

	result = db.Save(&task)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(task)
}

func DeleteTask(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var task database.Task
	result := db.First(&task, "id = ?", c.Params("task_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	result = db.Delete(&task)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
