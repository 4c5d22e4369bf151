package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"ecocrm/app/config"
	"ecocrm/app/database"
	"ecocrm/app/handlers"
	"ecocrm/app/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	app := fiber.New()

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(healthcheck.New())
	app.Use(middleware.RobotsMiddleware)
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/token", handlers.Login)
	api.Post("/users", handlers.Register)

	user := api.Group("/users", middleware.AuthMiddleware)
	user.Get("/me", handlers.GetCurrentUser)
	user.Put("/me", handlers.UpdateCurrentUser)
	user.Get("/me/events", handlers.GetMyEvents)
	user.Get("/me/tasks", handlers.GetMyTasks)
	user.Get("/engagement", middleware.AdminMiddleware, handlers.GetUserEngagement)
	user.Get("/", middleware.AdminMiddleware, handlers.GetAllUsers)
	user.Post("/:user_id/promote", middleware.AdminMiddleware, handlers.PromoteUser)

	contact := api.Group("/contacts")
	contact.Get("/", handlers.GetContacts)
	contact.Post("/", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.CreateContact)
	contact.Put("/:contact_id", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.UpdateContact)
	contact.Delete("/:contact_id", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.DeleteContact)

	api.Get("/tags", handlers.GetTags)

	mentor := api.Group("/mentors", middleware.AuthMiddleware, middleware.AdminMiddleware)
	mentor.Get("/", handlers.GetMentors)
	mentor.Get("/:mentor_id", handlers.GetMentor)
	mentor.Post("/", handlers.CreateMentor)
	mentor.Put("/:mentor_id", handlers.UpdateMentor)
	mentor.Delete("/:mentor_id", handlers.DeleteMentor)

	// The /opportunities prefix predates the mentor rename and is kept
	// for older clients.
	api.Get("/public/mentors", handlers.GetMentors)
	api.Get("/public/mentors/:mentor_id", handlers.GetMentor)
	api.Get("/opportunities", handlers.GetOpportunities)
	api.Get("/opportunities/:mentor_id", handlers.GetMentor)

	api.Post("/mentor-contact", handlers.CreateMentorContact)
	api.Get("/mentor-contacts", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.GetMentorContacts)

	event := api.Group("/events")
	event.Get("/", handlers.GetEvents)
	event.Post("/:event_id/rsvp/public", handlers.PublicRSVPEvent)
	event.Post("/:event_id/rsvp", middleware.AuthMiddleware, handlers.RSVPEvent)

	event.Post("/", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.CreateEvent)
	event.Put("/:event_id", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.UpdateEvent)
	event.Delete("/:event_id", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.DeleteEvent)
	event.Get("/:event_id/rsvps", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.GetEventRSVPs)

	task := api.Group("/tasks", middleware.AuthMiddleware)
	task.Patch("/:task_id/status", handlers.UpdateTaskStatus)

	task.Get("/", middleware.AdminMiddleware, handlers.GetAllTasks)
	task.Post("/", middleware.AdminMiddleware, handlers.CreateTask)
	task.Put("/:task_id", middleware.AdminMiddleware, handlers.UpdateTask)
	task.Delete("/:task_id", middleware.AdminMiddleware, handlers.DeleteTask)

	newsletter := api.Group("/newsletters")
	newsletter.Get("/", handlers.GetNewsletters)
	newsletter.Post("/upload", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.UploadNewsletterImage)
	newsletter.Get("/:newsletter_id", handlers.GetNewsletter)

	newsletter.Post("/", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.CreateNewsletter)
	newsletter.Put("/:newsletter_id", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.UpdateNewsletter)
	newsletter.Delete("/:newsletter_id", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.DeleteNewsletter)

	engagement := api.Group("/engagement", middleware.AuthMiddleware, middleware.AdminMiddleware)
	engagement.Get("/stats", handlers.GetEngagementStats)
	engagement.Get("/users", handlers.GetUserEngagement)

	diag := api.Group("/diag")
	diag.Get("/ip", handlers.GetIP)
	diag.Get("/headers", handlers.GetHeaders)
	diag.Post("/mail", middleware.AuthMiddleware, middleware.AdminMiddleware, handlers.SendTestMail)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}
