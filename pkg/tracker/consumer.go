package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/fleetwatch/fleetwatch/pkg/redis_client"
	"github.com/rs/zerolog/log"
)

const positionQueueName = "position-reports"

const numConsumers = 5
const batchSize = 100

// PositionReport is the queue payload produced by device ingest. One report
// maps onto one RecordPosition call.
type PositionReport struct {
	VehicleRef string `json:"vehicle_ref"`

	Position fdm.VehiclePosition `json:"position"`
}

func StartConsumers(service *Service) {
	log.Info().Msg("Starting position report consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(positionQueueName)
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(numConsumers*batchSize, 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < numConsumers; i++ {
		go startPositionConsumer(queue, i, service)
	}
}

func startPositionConsumer(queue rmq.Queue, id int, service *Service) {
	log.Info().Msgf("Starting position report consumer %d", id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("position-reports-%d", id), batchSize, 2*time.Second, NewBatchConsumer(id, service)); err != nil {
		panic(err)
	}
}

type BatchConsumer struct {
	id      int
	service *Service
}

func NewBatchConsumer(id int, service *Service) *BatchConsumer {
	return &BatchConsumer{id: id, service: service}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var report *PositionReport
		if err := json.Unmarshal([]byte(payload), &report); err != nil {
			log.Error().Err(err).Msg("Failed to decode position report")
			continue
		}

		// A bad report must not poison the batch, each one runs to completion
		// on its own
		_, err := consumer.service.RecordPosition(context.Background(), report.VehicleRef, &report.Position)
		if err != nil {
			log.Error().Err(err).Str("vehicle", report.VehicleRef).Msg("Failed to record vehicle position")
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack position report batch")
		}
	}
}
