package produce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-filestore-service/entity"
)

const (
	FileExchange        = "filestore.exchange"
	FileAuditQueue      = "filestore.audit"
	FileAuditBindingKey = "file.#"
)

type FileEventService struct {
	channel *amqp.Channel
}

type FileEventMessage struct {
	EventID      string  `json:"event_id"`
	Event        string  `json:"event"`
	Name         string  `json:"name"`
	OriginalName *string `json:"original_name,omitempty"`
	ContentType  *string `json:"content_type,omitempty"`
	Size         int64   `json:"size"`
	Timestamp    int64   `json:"timestamp"`
}

func InitFileEventService(channel *amqp.Channel) *FileEventService {
	service := &FileEventService{
		channel: channel,
	}

	// Declare exchange
	err := channel.ExchangeDeclare(
		FileExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare File exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		FileAuditQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare File audit queue: " + err.Error())
	}

	err = channel.QueueBind(
		FileAuditQueue,
		FileAuditBindingKey,
		FileExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind File audit queue: " + err.Error())
	}

	return service
}

func NewFileEventMessage(event entity.FileEvent, record entity.FileRecord) FileEventMessage {
	return FileEventMessage{
		EventID:      uuid.NewString(),
		Event:        string(event),
		Name:         record.Name,
		OriginalName: record.OriginalName,
		ContentType:  record.ContentType,
		Size:         record.Size,
		Timestamp:    time.Now().Unix(),
	}
}

// PublishFileEvent routes the event by its name, e.g. file.stored.
func (s *FileEventService) PublishFileEvent(ctx context.Context, event entity.FileEvent, record entity.FileRecord) error {
	message := NewFileEventMessage(event, record)

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		FileExchange,
		string(event),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    message.EventID,
			Timestamp:    time.Now(),
		},
	)
}
