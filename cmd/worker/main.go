// worker sends task notification emails and publishes daily task reminders.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("❌ RABBITMQ_URL is required by the worker")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("❌ DATABASE_URL is required by the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer rabbitMQ.Close()

	// the reminder ticker publishes on its own channel
	pubCh, err := rabbitMQ.Conn.Channel()
	if err != nil {
		log.Fatalf("❌ failed to open publish channel: %v", err)
	}
	defer pubCh.Close()

	sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	if cfg.MailHost == "" {
		log.Println("⚠️ MAIL_HOST not set, notification emails will be dead-lettered")
	}

	reminders := worker.NewTaskReminderWorker(
		database.NewTaskRepository(db),
		queue.NewProducer(pubCh),
		cfg.Location(),
		cfg.Reminder(),
	)
	go reminders.Start(ctx)

	consumer := queue.NewWorker(rabbitMQ.Ch, sender)
	if err := consumer.Start(ctx, queue.QueueName); err != nil {
		log.Fatalf("❌ worker: %v", err)
	}
	log.Println("🛑 worker stopped")
}
