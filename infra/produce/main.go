package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	FileEventService *FileEventService
}

func InitProduce(channel *amqp.Channel) *Produce {
	fileEventService := InitFileEventService(channel)
	if fileEventService == nil {
		panic("Failed to initialize FileEvent service")
	}

	return &Produce{
		FileEventService: fileEventService,
	}
}
