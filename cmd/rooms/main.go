package main

import (
	"context"

	"roomsvc/internal/rooms/events"
	"roomsvc/internal/rooms/handler"
	"roomsvc/internal/rooms/notifier"
	"roomsvc/internal/rooms/repository"
	"roomsvc/internal/rooms/service"
	"roomsvc/internal/rooms/validator"
	"roomsvc/pkg/app"
	"roomsvc/pkg/client"
	"roomsvc/pkg/config"
)

const ServiceName = "rooms"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Rooms service")

	api, publisher := initServices(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(api)
	serverApp.Run()
}

func initServices(cfg *config.Config) (*handler.API, *events.Publisher) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := repository.EnsureIndexes(ctx, cfg); err != nil {
		cfg.Log.Fatal("Failed to ensure indexes", "error", err)
	}

	roomValidator := validator.NewRoomValidator(cfg.Log)
	roomRepo := repository.NewMongoRoomRepository(cfg)

	userClient := client.NewUserBookingsClient(cfg.UserServiceURL)
	bookingNotifier := notifier.NewUserNotifier(userClient, cfg.NotifyTimeout, cfg.Log)

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.BookingEventsTopic, ServiceName, cfg.NotifyTimeout, cfg.Log)

	roomService := service.NewRoomService(roomRepo, roomValidator, cfg)
	bookingService := service.NewBookingService(roomRepo, bookingNotifier, publisher, roomValidator, cfg)
	accessService := service.NewAccessService(roomRepo, cfg)

	api := handler.NewAPI(
		handler.NewRoomHandler(roomService, cfg.Log),
		handler.NewBookingHandler(bookingService, accessService, cfg.Log),
	)

	cfg.Log.Info("Room service initialized", "database", cfg.MongoDatabaseName)
	return api, publisher
}
