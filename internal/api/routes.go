package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/auth/callback", handler.SignInCallback)

	api := app.Group("/api")

	api.Post("/auth/link", handler.RequestSignInLink)
	api.Post("/auth/logout", handler.Logout)
	api.Get("/auth/me", handler.AuthRequired, handler.Me)

	medications := api.Group("/medications", handler.OwnerRequired)
	medications.Get("/", handler.ListMedications)
	medications.Post("/", handler.CreateMedication)
	medications.Get("/schedule", handler.MedicationSchedule)
	medications.Post("/schedule/reload", handler.ReloadSchedule)
	medications.Put("/:id", handler.UpdateMedication)
	medications.Delete("/:id", handler.DeleteMedication)
	medications.Post("/:id/intake", handler.RecordIntake)

	notices := api.Group("/notices", handler.OwnerRequired)
	notices.Get("/", handler.ListNotices)
	notices.Get("/stream", handler.NoticeStream)

	moods := api.Group("/moods", handler.AuthRequired)
	moods.Get("/", handler.ListMoods)
	moods.Post("/", handler.RecordMood)
	moods.Get("/current", handler.CurrentMood)

	sleep := api.Group("/sleep", handler.AuthRequired)
	sleep.Get("/", handler.ListSleep)
	sleep.Post("/", handler.SaveSleep)
	sleep.Delete("/:id", handler.DeleteSleep)

	calendar := api.Group("/calendar", handler.AuthRequired)
	calendar.Get("/", handler.ListCalendar)
	calendar.Post("/", handler.CreateCalendarEvent)
	calendar.Get("/upcoming", handler.UpcomingCalendar)
	calendar.Put("/:id", handler.UpdateCalendarEvent)
	calendar.Delete("/:id", handler.DeleteCalendarEvent)

	todos := api.Group("/todos", handler.AuthRequired)
	todos.Get("/", handler.ListTodos)
	todos.Post("/", handler.CreateTodo)
	todos.Put("/:id", handler.UpdateTodo)
	todos.Delete("/:id", handler.DeleteTodo)
	todos.Post("/:id/toggle", handler.ToggleTodo)

	couples := api.Group("/couples", handler.AuthRequired)
	couples.Post("/", handler.CreateCouple)
	couples.Post("/active", handler.SetActiveCouple)
	couples.Post("/:id/join", handler.JoinCouple)
	couples.Get("/:id/members", handler.CoupleMembers)
	couples.Get("/:id/moods", handler.CoupleMoods)
	couples.Get("/:id/moods/stream", handler.CoupleMoodStream)
	couples.Get("/:id/activities", handler.ListActivities)
	couples.Post("/:id/activities", handler.CreateActivity)
	couples.Put("/:id/activities/:activityID", handler.UpdateActivity)
	couples.Delete("/:id/activities/:activityID", handler.DeleteActivity)
}
